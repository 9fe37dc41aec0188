package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/seldo/newww/internal/core/domain/account"
)

// AccountRepository is the authoritative user store.
type AccountRepository interface {
	// FindByName returns nil, nil when no account uses name.
	FindByName(ctx context.Context, name string) (*account.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	// Create persists a new account. A name collision is reported as
	// account.ErrDuplicateUsername.
	Create(ctx context.Context, a *account.Account) error
	// UpdateVerificationStatus returns account.ErrAccountNotFound when id does not exist.
	UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status account.VerificationStatus) error
}
