package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seldo/newww/internal/core/domain/account"
	"github.com/seldo/newww/internal/core/domain/notification"
	"github.com/seldo/newww/internal/core/domain/session"
	"github.com/seldo/newww/internal/core/domain/verification"
	"github.com/seldo/newww/internal/core/ports"
)

// AccountRepositoryMock is a lightweight mock for AccountRepository
type AccountRepositoryMock struct {
	FindByNameFn               func(ctx context.Context, name string) (*account.Account, error)
	GetByIDFn                  func(ctx context.Context, id uuid.UUID) (*account.Account, error)
	CreateFn                   func(ctx context.Context, a *account.Account) error
	UpdateVerificationStatusFn func(ctx context.Context, id uuid.UUID, status account.VerificationStatus) error
}

func (m *AccountRepositoryMock) FindByName(ctx context.Context, name string) (*account.Account, error) {
	if m.FindByNameFn != nil {
		return m.FindByNameFn(ctx, name)
	}
	return nil, nil
}
func (m *AccountRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, account.ErrAccountNotFound
}
func (m *AccountRepositoryMock) Create(ctx context.Context, a *account.Account) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}
func (m *AccountRepositoryMock) UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status account.VerificationStatus) error {
	if m.UpdateVerificationStatusFn != nil {
		return m.UpdateVerificationStatusFn(ctx, id, status)
	}
	return nil
}

var _ ports.AccountRepository = (*AccountRepositoryMock)(nil)

// VerificationStoreMock is a lightweight mock for VerificationStore
type VerificationStoreMock struct {
	SetFn           func(ctx context.Context, key verification.Key, record *verification.PendingVerification, ttl time.Duration) error
	TakeAndDeleteFn func(ctx context.Context, key verification.Key) (*verification.PendingVerification, error)
}

func (m *VerificationStoreMock) Set(ctx context.Context, key verification.Key, record *verification.PendingVerification, ttl time.Duration) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, key, record, ttl)
	}
	return nil
}
func (m *VerificationStoreMock) TakeAndDelete(ctx context.Context, key verification.Key) (*verification.PendingVerification, error) {
	if m.TakeAndDeleteFn != nil {
		return m.TakeAndDeleteFn(ctx, key)
	}
	return nil, nil
}

var _ ports.VerificationStore = (*VerificationStoreMock)(nil)

// NotificationGatewayMock records every message it is asked to send
type NotificationGatewayMock struct {
	SendFn func(ctx context.Context, msg *notification.Message) error
	Sent   []*notification.Message
	mu     sync.Mutex
}

func (m *NotificationGatewayMock) Send(ctx context.Context, msg *notification.Message) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()
	if m.SendFn != nil {
		return m.SendFn(ctx, msg)
	}
	return nil
}

var _ ports.NotificationGateway = (*NotificationGatewayMock)(nil)

// SignupCoordinatorMock is a lightweight mock for SignupCoordinator
type SignupCoordinatorMock struct {
	SignupFn             func(ctx context.Context, req *account.SignupRequest) (*ports.SignupResult, error)
	ResendVerificationFn func(ctx context.Context, name string) (*ports.SignupResult, error)
}

func (m *SignupCoordinatorMock) Signup(ctx context.Context, req *account.SignupRequest) (*ports.SignupResult, error) {
	if m.SignupFn != nil {
		return m.SignupFn(ctx, req)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *SignupCoordinatorMock) ResendVerification(ctx context.Context, name string) (*ports.SignupResult, error) {
	if m.ResendVerificationFn != nil {
		return m.ResendVerificationFn(ctx, name)
	}
	return nil, fmt.Errorf("not implemented")
}

var _ ports.SignupCoordinator = (*SignupCoordinatorMock)(nil)

// ConfirmationConsumerMock is a lightweight mock for ConfirmationConsumer
type ConfirmationConsumerMock struct {
	ConfirmFn func(ctx context.Context, token verification.Token) (*account.Account, error)
}

func (m *ConfirmationConsumerMock) Confirm(ctx context.Context, token verification.Token) (*account.Account, error) {
	if m.ConfirmFn != nil {
		return m.ConfirmFn(ctx, token)
	}
	return nil, account.ErrTokenInvalidOrExpired
}

var _ ports.ConfirmationConsumer = (*ConfirmationConsumerMock)(nil)

// SessionServiceMock is a lightweight mock for SessionService
type SessionServiceMock struct {
	IssueFn    func(ctx context.Context, a *account.Account) (*session.Tokens, error)
	ValidateFn func(ctx context.Context, token string) (*session.Claims, error)
}

func (m *SessionServiceMock) Issue(ctx context.Context, a *account.Account) (*session.Tokens, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, a)
	}
	return &session.Tokens{AccessToken: "session-token", ExpiresIn: 3600}, nil
}
func (m *SessionServiceMock) Validate(ctx context.Context, token string) (*session.Claims, error) {
	if m.ValidateFn != nil {
		return m.ValidateFn(ctx, token)
	}
	return nil, fmt.Errorf("invalid token")
}

var _ ports.SessionService = (*SessionServiceMock)(nil)

// RateLimiterServiceMock is a lightweight mock for RateLimiterService
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, clientKey string) (bool, int, int, time.Time, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, clientKey string) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, clientKey)
	}
	return true, 0, 0, time.Now(), nil
}

var _ ports.RateLimiterService = (*RateLimiterServiceMock)(nil)

// RateLimitRepositoryMock is a lightweight mock for RateLimitRepository
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, clientKey, window, keyPrefix, ttl)
	}
	return 1, time.Now().Truncate(window), nil
}

var _ ports.RateLimitRepository = (*RateLimitRepositoryMock)(nil)
