package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// Recovery turns panics into 500 responses, logging them and reporting to Sentry.
// Reporting is a no-op when Sentry was never initialised.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		requestID, _ := c.Get(RequestIDKey)
		log.Error("panic recovered",
			slog.Any("panic", recovered),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Any("request_id", requestID))

		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		if id, ok := requestID.(string); ok {
			hub.Scope().SetTag("request_id", id)
		}
		hub.Recover(recovered)
		hub.Flush(2 * time.Second)

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
	})
}
