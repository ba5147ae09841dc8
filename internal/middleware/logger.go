package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const loggerKey = "logger"

// RequestLogger logs one line per request and exposes a request-scoped entry to handlers.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		entry := logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		c.Set(loggerKey, entry)

		c.Next()

		fields := logrus.Fields{
			"status":    c.Writer.Status(),
			"latencyMs": time.Since(start).Milliseconds(),
			"clientIP":  c.ClientIP(),
		}
		if userID, ok := CurrentUserID(c); ok {
			fields["userID"] = userID
		}
		entry = entry.WithFields(fields)

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}

// LoggerFrom returns the request-scoped entry, or a fresh one when the
// middleware is not installed.
func LoggerFrom(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(loggerKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
