package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/kilter-intake/pkg/middleware/requestid"
)

// Audit records an admin action after the request completes, including refused ones.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	auditLogger := logger.Named("audit")
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		sessionID := ""
		if claims := AdminClaimsFromContext(c); claims != nil {
			sessionID = claims.SessionID
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("session_id", sessionID),
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
			zap.String("request_id", requestid.Value(c)),
		}
		if c.Writer.Status() >= 400 {
			auditLogger.Warn("admin action rejected", fields...)
			return
		}
		auditLogger.Info("admin action", fields...)
	}
}
