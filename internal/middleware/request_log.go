package middleware

import (
	"time"

	"mandirdaan/internal/common"
	"mandirdaan/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger writes one structured line per request. Identity fields are
// present once a handler has passed the gate.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			common.SetLogger(c, log.With(zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID))))
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			}
			if tenantID, ok := common.GetTenantIDFromContext(req.Context()); ok {
				fields = append(fields, zap.String("tenant_id", tenantID.String()))
			}
			if userID, ok := common.GetUserIDFromContext(req.Context()); ok {
				fields = append(fields, zap.String("user_id", userID.String()))
			}

			switch status := c.Response().Status; {
			case status >= 500:
				log.Error("request failed", err, fields...)
			case status >= 400:
				log.Warn("request rejected", fields...)
			default:
				log.Info("request", fields...)
			}
			return nil
		}
	}
}
