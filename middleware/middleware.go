package middleware

import (
	"log/slog"
	"net/http"
	"order-service/pkg/ctxmanage"
	"order-service/pkg/logkey"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Logger assigns a trace id to every request, stores it on the request
// context and logs the request once it finishes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := uuid.NewString()
		ctx := ctxmanage.WithTraceId(c.Request.Context(), traceId)
		c.Request = c.Request.WithContext(ctx)

		startTime := time.Now()
		slog.Info("started", slog.String(logkey.TraceID, traceId),
			slog.String("Method", c.Request.Method), slog.Any("URL Path", c.Request.URL.Path))

		c.Next()

		slog.Info("completed", slog.String(logkey.TraceID, traceId),
			slog.String("Method", c.Request.Method), slog.Any("URL Path", c.Request.URL.Path),
			slog.Int("Status Code", c.Writer.Status()), slog.Int64("duration μs", time.Since(startTime).Microseconds()))
	}
}

// RequireUserID rejects requests that don't carry the user-id header set by
// the gateway after authentication.
func RequireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("user-id")
		if userID == "" {
			traceId := ctxmanage.GetTraceIdOfRequest(c)
			slog.Error("user id missing in headers", slog.String(logkey.TraceID, traceId))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "User ID is required in headers",
			})
			return
		}
		c.Next()
	}
}
