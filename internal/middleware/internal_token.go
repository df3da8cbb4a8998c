package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"propertydesk/internal/pkg/logger"
	"propertydesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// InternalToken protects job endpoints hit by schedulers using a static
// bearer token. An empty allowedIPs list accepts any client address.
func InternalToken(token string, allowedIPs []string, log logrus.FieldLogger) gin.HandlerFunc {
	log = logger.OrDiscard(log)
	allowed := make(map[string]bool, len(allowedIPs))
	for _, ip := range allowedIPs {
		allowed[strings.TrimSpace(ip)] = true
	}

	return func(c *gin.Context) {
		if token == "" {
			logAuthFailure(log, c, http.StatusForbidden, "token_not_configured")
			response.Abort(c, http.StatusForbidden, "AUTH_INVALID", "Internal endpoints are disabled")
			return
		}

		if len(allowed) > 0 && !allowed[c.ClientIP()] {
			logAuthFailure(log, c, http.StatusForbidden, "ip_not_allowed")
			response.Abort(c, http.StatusForbidden, "AUTH_INVALID", "IP not allowed")
			return
		}

		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logAuthFailure(log, c, http.StatusUnauthorized, "invalid_auth_format")
			response.Abort(c, http.StatusUnauthorized, "AUTH_MISSING", "Authorization header must be 'Bearer <token>'")
			return
		}

		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(parts[1])), []byte(token)) != 1 {
			logAuthFailure(log, c, http.StatusForbidden, "invalid_token")
			response.Abort(c, http.StatusForbidden, "AUTH_INVALID", "Invalid internal token")
			return
		}

		c.Next()
	}
}

func logAuthFailure(log logrus.FieldLogger, c *gin.Context, status int, reason string) {
	log.WithFields(logrus.Fields{
		"status":     status,
		"request_id": requestID(c),
		"reason":     reason,
		"path":       c.FullPath(),
	}).Warn("internal auth failed")
}
