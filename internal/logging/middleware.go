package logging

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// NewRequestLoggerMiddleware attaches a request scoped logger to the request context
// and logs every completed request.
func NewRequestLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)

		userAgent := c.Request.UserAgent()
		if userAgent == "" {
			userAgent = "<missing>"
		}

		requestLogger := logger.With(
			slog.String("requestID", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("userAgent", userAgent),
		)
		c.Request = c.Request.WithContext(AddToContext(c.Request.Context(), requestLogger))

		start := time.Now()
		c.Next()

		requestLogger.Info(
			"Request completed",
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
