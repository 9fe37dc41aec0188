package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type LoggingMiddleware struct {
	logger *logrus.Logger
}

func NewLoggingMiddleware(logger *logrus.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// RequestLogging logs each request once it has been served. Only the route
// pattern is logged so confirmation tokens in the path never reach the logs.
func (m *LoggingMiddleware) RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if m.logger != nil {
				status := c.Response().Status
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
				m.logger.WithFields(logrus.Fields{
					"method":     c.Request().Method,
					"route":      c.Path(),
					"status":     status,
					"latency_ms": time.Since(start).Milliseconds(),
					"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
					"ip":         c.RealIP(),
				}).Debug("request served")
			}
			return err
		}
	}
}
