package helpers

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/seldo/newww/internal/core/domain/session"
)

type ctxKey string

const (
	keyAccountID     ctxKey = "account_id"
	keyAccountName   ctxKey = "account_name"
	keySessionClaims ctxKey = "session_claims"
)

func SetAccountID(c echo.Context, id uuid.UUID) { c.Set(string(keyAccountID), id) }
func GetAccountIDRaw(c echo.Context) (uuid.UUID, bool) {
	v := c.Get(string(keyAccountID))
	id, ok := v.(uuid.UUID)
	return id, ok
}

func SetAccountName(c echo.Context, name string) { c.Set(string(keyAccountName), name) }
func GetAccountNameRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyAccountName))
	s, ok := v.(string)
	return s, ok && s != ""
}

func SetSessionClaims(c echo.Context, claims *session.Claims) {
	c.Set(string(keySessionClaims), claims)
}
func GetSessionClaimsRaw(c echo.Context) (*session.Claims, bool) {
	v := c.Get(string(keySessionClaims))
	claims, ok := v.(*session.Claims)
	return claims, ok && claims != nil
}
