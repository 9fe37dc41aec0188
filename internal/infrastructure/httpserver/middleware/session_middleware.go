package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/seldo/newww/internal/core/ports"
	"github.com/seldo/newww/internal/infrastructure/httpserver/helpers"
)

type SessionMiddleware struct {
	sessions ports.SessionService
	logger   *logrus.Logger
}

func NewSessionMiddleware(sessions ports.SessionService, logger *logrus.Logger) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, logger: logger}
}

// RequireSession validates the bearer session token and stores its claims on the context
func (m *SessionMiddleware) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := helpers.GetBearerTokenFromContext(c)
			if err != nil {
				return err
			}

			claims, err := m.sessions.Validate(c.Request().Context(), tokenString)
			if err != nil {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path, "error": err.Error()}).Warn("session validation failed")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			helpers.SetSessionClaims(c, claims)
			helpers.SetAccountID(c, claims.AccountID)
			helpers.SetAccountName(c, claims.Name)

			if m.logger != nil {
				m.logger.WithFields(logrus.Fields{"account_id": claims.AccountID, "name": claims.Name}).Debug("session validated")
			}
			return next(c)
		}
	}
}
