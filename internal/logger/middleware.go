package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDKey = "request_id"

// Middleware attaches a request-scoped logger carrying the request ID and
// writes one access line per request.
func Middleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		reqLogger := log.With(zap.String("request_id", requestID))
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), reqLogger))

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		// the handler chain may have enriched the logger (tenant, user)
		FromContext(c.Request.Context()).Info("http request", fields...)
	}
}

// Enrich adds fields to the request logger for the rest of the chain.
func Enrich(c *gin.Context, fields ...zap.Field) {
	l := FromContext(c.Request.Context()).With(fields...)
	c.Request = c.Request.WithContext(WithContext(c.Request.Context(), l))
}
