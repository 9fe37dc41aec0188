package ports

import (
	"context"

	"github.com/seldo/newww/internal/core/domain/account"
	"github.com/seldo/newww/internal/core/domain/session"
)

// SessionService issues and validates login sessions for new accounts.
type SessionService interface {
	Issue(ctx context.Context, a *account.Account) (*session.Tokens, error)
	Validate(ctx context.Context, token string) (*session.Claims, error)
}
