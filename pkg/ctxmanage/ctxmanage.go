package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type key string

const TraceIdKey key = "1"

// WithTraceId returns a context carrying the given trace id.
func WithTraceId(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, TraceIdKey, traceId)
}

// GetTraceIdOfRequest fetches the trace id set by the logging middleware.
// If the middleware didn't run we still hand back a fresh id so log lines
// are never blank.
func GetTraceIdOfRequest(c *gin.Context) string {
	ctx := c.Request.Context()
	traceId, ok := ctx.Value(TraceIdKey).(string)
	if !ok {
		traceId = uuid.NewString()
	}
	return traceId
}
