package helpers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/seldo/newww/internal/core/domain/session"
)

func GetAccountIDFromContext(c echo.Context) (uuid.UUID, error) {
	id, ok := GetAccountIDRaw(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid session context")
	}
	return id, nil
}

func GetAccountNameFromContext(c echo.Context) (string, error) {
	name, ok := GetAccountNameRaw(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid session context")
	}
	return name, nil
}

func GetSessionClaimsFromContext(c echo.Context) (*session.Claims, error) {
	claims, ok := GetSessionClaimsRaw(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid session context")
	}
	return claims, nil
}

func GetBearerTokenFromContext(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "empty token")
	}
	return token, nil
}
