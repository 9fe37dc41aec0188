package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/seldo/newww/internal/core/domain/account"
	"github.com/seldo/newww/internal/core/domain/verification"
	"github.com/seldo/newww/internal/core/ports"
)

type ConfirmationService struct {
	accounts ports.AccountRepository
	store    ports.VerificationStore
	codec    ports.TokenCodec
	logger   *logrus.Logger
}

func NewConfirmationService(accounts ports.AccountRepository, store ports.VerificationStore, codec ports.TokenCodec, logger *logrus.Logger) *ConfirmationService {
	return &ConfirmationService{accounts: accounts, store: store, codec: codec, logger: logger}
}

var _ ports.ConfirmationConsumer = (*ConfirmationService)(nil)

// Confirm consumes token and marks its account verified.
//
// Unknown, expired and already used tokens all yield ErrTokenInvalidOrExpired.
// Once TakeAndDelete has returned the record the token is spent, whatever
// happens afterwards.
func (s *ConfirmationService) Confirm(ctx context.Context, token verification.Token) (*account.Account, error) {
	if token == "" {
		return nil, account.ErrTokenInvalidOrExpired
	}
	key := s.codec.LookupKey(token)

	record, err := s.store.TakeAndDelete(ctx, key)
	if err != nil {
		if !errors.Is(err, account.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", account.ErrStoreUnavailable, err)
		}
		return nil, err
	}
	if record == nil {
		if s.logger != nil {
			s.logger.WithField("lookup_key", key).Debug("confirmation token not found")
		}
		return nil, account.ErrTokenInvalidOrExpired
	}

	fields := logrus.Fields{"lookup_key": key, "name": record.AccountName}

	acct, err := s.accounts.FindByName(ctx, record.AccountName)
	if err != nil {
		// the token is already spent; the lookup key lets support re-issue one
		if s.logger != nil {
			s.logger.WithFields(fields).WithError(err).Error("account lookup failed after confirmation token was consumed")
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if acct == nil {
		if s.logger != nil {
			s.logger.WithFields(fields).Warn("confirmation token refers to a missing account")
		}
		return nil, account.ErrAccountNotFound
	}

	if acct.Email != record.Email {
		if s.logger != nil {
			s.logger.WithFields(fields).Warn("email changed since confirmation token was issued")
		}
		return nil, account.ErrTokenInvalidOrExpired
	}

	if acct.IsVerified() {
		if s.logger != nil {
			s.logger.WithFields(fields).Debug("account already verified")
		}
		return acct, nil
	}

	if err := s.accounts.UpdateVerificationStatus(ctx, acct.ID, account.StatusVerified); err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to verify account: %w", err)
	}
	acct.VerificationStatus = account.StatusVerified

	if s.logger != nil {
		s.logger.WithFields(fields).Info("email address confirmed")
	}
	return acct, nil
}
