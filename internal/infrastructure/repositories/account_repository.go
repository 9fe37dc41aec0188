package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/seldo/newww/internal/core/domain/account"
	"github.com/seldo/newww/internal/core/ports"
	"github.com/seldo/newww/internal/infrastructure/db"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

const accountColumns = `id, name, email, password_hash, verification_status, newsletter_opt_in, created_at, updated_at`

// AccountRepository implements ports.AccountRepository on Postgres.
type AccountRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewAccountRepository(database *db.Database, logger *logrus.Logger) *AccountRepository {
	return &AccountRepository{db: database, logger: logger}
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

// Create inserts a new account. The unique index on name turns a lost
// signup race into account.ErrDuplicateUsername.
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.DB.ExecContext(ctx, query,
		a.ID, a.Name, a.Email, a.PasswordHash, a.VerificationStatus,
		a.NewsletterOptIn, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"name": a.Name}).Debug("db: account name already taken")
			}
			return account.ErrDuplicateUsername
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": a.ID, "name": a.Name}).WithError(err).Error("db: failed to create account")
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"account_id": a.ID, "name": a.Name}).Info("db: account created")
	}
	return nil
}

// FindByName returns nil, nil when name is not registered.
func (r *AccountRepository) FindByName(ctx context.Context, name string) (*account.Account, error) {
	var a account.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE name = $1`

	err := r.db.DB.GetContext(ctx, &a, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"name": name}).WithError(err).Error("db: failed to get account by name")
		}
		return nil, fmt.Errorf("failed to get account by name: %w", err)
	}
	return &a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var a account.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	err := r.db.DB.GetContext(ctx, &a, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrAccountNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": id}).WithError(err).Error("db: failed to get account by ID")
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}
	return &a, nil
}

// UpdateVerificationStatus sets the status of account id. Verified accounts
// cannot be moved back to unverified.
func (r *AccountRepository) UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status account.VerificationStatus) error {
	if status != account.StatusVerified {
		return fmt.Errorf("unsupported verification status transition to %q", status)
	}

	query := `
		UPDATE accounts
		SET verification_status = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id, status)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": id}).WithError(err).Error("db: failed to update verification status")
		}
		return fmt.Errorf("failed to update verification status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": id}).Debug("db: update affected 0 rows - account not found")
		}
		return account.ErrAccountNotFound
	}
	return nil
}
