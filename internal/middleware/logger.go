package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"propertydesk/internal/pkg/logger"
	"propertydesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const headerRequestID = "X-Request-ID"

// RequestID propagates the caller's request id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestID(c)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(headerRequestID, id)
		c.Next()
	}
}

// ErrorLogger logs every request and recovers from panics. Handler errors
// attached with c.Error and 5xx responses are logged at error level.
func ErrorLogger(log logrus.FieldLogger) gin.HandlerFunc {
	log = logger.OrDiscard(log)
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				requestFields(log, c, start).
					WithError(err).
					WithField("stack", string(debug.Stack())).
					Error("panic while handling request")
				response.Abort(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error")
				return
			}

			entry := requestFields(log, c, start)
			switch {
			case len(c.Errors) > 0:
				for _, err := range c.Errors {
					e := entry.WithError(err.Err)
					if err.Meta != nil {
						e = e.WithField("meta", err.Meta)
					}
					e.Error("request error")
				}
			case c.Writer.Status() >= http.StatusInternalServerError:
				entry.Error("request failed")
			default:
				entry.Debug("request")
			}
		}()

		c.Next()
	}
}

func requestFields(log logrus.FieldLogger, c *gin.Context, start time.Time) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"status":     c.Writer.Status(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"query":      c.Request.URL.RawQuery,
		"client_ip":  c.ClientIP(),
		"user_id":    c.GetInt64(ctxUserID),
		"role":       c.GetString(ctxRole),
		"request_id": requestID(c),
		"latency":    time.Since(start).String(),
	})
}

func requestID(c *gin.Context) string {
	if v := c.GetString("request_id"); v != "" {
		return v
	}
	requestID := c.GetHeader(headerRequestID)
	if requestID == "" {
		requestID = c.GetHeader("X-Request-Id")
	}
	return requestID
}
