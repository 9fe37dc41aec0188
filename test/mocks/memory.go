package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seldo/newww/internal/core/domain/account"
	"github.com/seldo/newww/internal/core/domain/verification"
	"github.com/seldo/newww/internal/core/ports"
)

// MemoryAccountRepository is an in-memory AccountRepository enforcing unique names
type MemoryAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*account.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[string]*account.Account)}
}

var _ ports.AccountRepository = (*MemoryAccountRepository)(nil)

func (r *MemoryAccountRepository) FindByName(ctx context.Context, name string) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[name]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (r *MemoryAccountRepository) Create(ctx context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.Name]; ok {
		return account.ErrDuplicateUsername
	}
	cp := *a
	r.accounts[a.Name] = &cp
	return nil
}

func (r *MemoryAccountRepository) UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status account.VerificationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == id {
			a.VerificationStatus = status
			a.UpdatedAt = time.Now()
			return nil
		}
	}
	return account.ErrAccountNotFound
}

// SetEmail changes the stored address of name, as a profile edit would.
func (r *MemoryAccountRepository) SetEmail(name, email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[name]; ok {
		a.Email = email
	}
}

// Delete removes name.
func (r *MemoryAccountRepository) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, name)
}

type memoryEntry struct {
	record    verification.PendingVerification
	expiresAt time.Time
}

// MemoryVerificationStore is an in-memory VerificationStore with a settable clock
type MemoryVerificationStore struct {
	mu      sync.Mutex
	entries map[verification.Key]memoryEntry
	now     func() time.Time
}

func NewMemoryVerificationStore() *MemoryVerificationStore {
	return &MemoryVerificationStore{entries: make(map[verification.Key]memoryEntry), now: time.Now}
}

var _ ports.VerificationStore = (*MemoryVerificationStore)(nil)

// SetClock replaces the time source used for expiry.
func (s *MemoryVerificationStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryVerificationStore) Set(ctx context.Context, key verification.Key, record *verification.PendingVerification, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{record: *record, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryVerificationStore) TakeAndDelete(ctx context.Context, key verification.Key) (*verification.PendingVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	delete(s.entries, key)
	if !s.now().Before(e.expiresAt) {
		return nil, nil
	}
	record := e.record
	return &record, nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryVerificationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
