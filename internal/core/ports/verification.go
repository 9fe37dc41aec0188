package ports

import (
	"context"
	"time"

	"github.com/seldo/newww/internal/core/domain/account"
	"github.com/seldo/newww/internal/core/domain/verification"
)

// TokenCodec issues confirmation tokens and derives their storage keys.
type TokenCodec interface {
	IssueToken() (verification.Token, error)
	LookupKey(token verification.Token) verification.Key
}

// VerificationStore holds pending verifications with a per-entry TTL.
// Implementations never return an entry past its TTL, but may lose entries
// earlier (no false positives, possible false negatives).
type VerificationStore interface {
	// Set stores record under key, replacing any existing entry.
	Set(ctx context.Context, key verification.Key, record *verification.PendingVerification, ttl time.Duration) error
	// TakeAndDelete atomically returns and removes the record. It returns
	// nil, nil when the key is absent or expired. At most one caller ever
	// receives a given record.
	TakeAndDelete(ctx context.Context, key verification.Key) (*verification.PendingVerification, error)
}

// SignupResult is the outcome of a signup that created an account. It is
// returned alongside ErrStoreUnavailable or a NotificationError when the
// account exists but later steps failed.
type SignupResult struct {
	Account *account.Account
	Token   verification.Token
}

// SignupCoordinator drives account creation and token issuance.
type SignupCoordinator interface {
	Signup(ctx context.Context, req *account.SignupRequest) (*SignupResult, error)
	ResendVerification(ctx context.Context, name string) (*SignupResult, error)
}

// ConfirmationConsumer consumes confirmation tokens.
type ConfirmationConsumer interface {
	Confirm(ctx context.Context, token verification.Token) (*account.Account, error)
}
