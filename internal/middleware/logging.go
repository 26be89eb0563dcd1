package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Logging writes one structured entry for each HTTP request.
func Logging(logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			fields := []zap.Field{
				zap.String("request_id", RequestIDFromContext(c)),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", latency),
			}
			if uid, _ := c.Get(ContextKeyUserID).(string); uid != "" {
				fields = append(fields, zap.String("user_id", uid))
			}

			cause, _ := c.Get(ContextKeyError).(error)
			switch {
			case err != nil:
				logger.Error("request failed", append(fields, zap.Error(err))...)
			case cause != nil:
				logger.Error("request failed", append(fields, zap.Error(cause))...)
			case c.Response().Status >= 500:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}

			return err
		}
	}
}
