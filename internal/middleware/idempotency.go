package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"propertydesk/internal/pkg/idempotency"
	"propertydesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	headerIdempotencyKey   = "Idempotency-Key"
	headerIdempotentReplay = "Idempotent-Replay"
)

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response when a request repeats an
// Idempotency-Key already used by the same user on the same route. Requests
// without the header pass through. Only 2xx responses are remembered; a
// failed attempt releases the key so the client may retry.
func Idempotency(store idempotency.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(headerIdempotencyKey)
		if key == "" || store == nil {
			c.Next()
			return
		}
		scoped := fmt.Sprintf("%d:%s:%s:%s", UserID(c), c.Request.Method, c.FullPath(), key)
		ctx := c.Request.Context()

		stored, err := store.Begin(ctx, scoped)
		switch {
		case errors.Is(err, idempotency.ErrInFlight):
			response.Abort(c, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "A request with this Idempotency-Key is still being processed")
			return
		case err != nil:
			// store unavailable: process normally rather than refuse payments
			_ = c.Error(err)
			c.Next()
			return
		case stored != nil:
			c.Header(headerIdempotentReplay, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		status := cw.Status()
		if status >= 200 && status < 300 {
			if err := store.Complete(ctx, scoped, idempotency.Response{
				Status:      status,
				ContentType: cw.Header().Get("Content-Type"),
				Body:        cw.buf.Bytes(),
			}); err != nil {
				_ = c.Error(err)
			}
			return
		}
		if err := store.Abandon(ctx, scoped); err != nil {
			_ = c.Error(err)
		}
	}
}
