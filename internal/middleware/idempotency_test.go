package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"propertydesk/internal/pkg/idempotency"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	calls := 0
	router := gin.New()
	router.POST("/payments", Idempotency(idempotency.NewMemoryStore(time.Minute)), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	send := func(key string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/payments", nil)
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		router.ServeHTTP(w, req)
		return w
	}

	first := send("abc")
	second := send("abc")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replay"))
	assert.Equal(t, 1, calls)

	send("")
	send("")
	assert.Equal(t, 3, calls)
}

func TestIdempotency_FailedAttemptCanRetry(t *testing.T) {
	fail := true
	router := gin.New()
	router.POST("/payments", Idempotency(idempotency.NewMemoryStore(time.Minute)), func(c *gin.Context) {
		if fail {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/payments", nil)
	req.Header.Set("Idempotency-Key", "k")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	fail = false
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/payments", nil)
	req.Header.Set("Idempotency-Key", "k")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}
