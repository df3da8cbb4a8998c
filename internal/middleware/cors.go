package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS allows the local front-end dev servers plus the configured origins.
// Preflight requests are answered before JWT and role middleware run.
func CORS(extraOrigins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = append(append([]string{}, devOrigins...), extraOrigins...)
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Content-Type", "Content-Length", "Authorization", "Accept", "Origin", "X-Requested-With", "Idempotency-Key", headerRequestID}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{headerRequestID, headerIdempotentReplay}
	corsConfig.MaxAge = 10 * time.Minute
	return cors.New(corsConfig)
}
