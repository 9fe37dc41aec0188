package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/seldo/newww/internal/core/domain/account"
	"github.com/seldo/newww/internal/core/domain/notification"
	"github.com/seldo/newww/internal/core/domain/verification"
	"github.com/seldo/newww/internal/core/ports"
)

// SignupConfig groups the tunables of the signup flow.
type SignupConfig struct {
	TokenTTL    time.Duration
	BaseURL     string
	CompanyName string
	BcryptCost  int
}

type SignupService struct {
	accounts  ports.AccountRepository
	store     ports.VerificationStore
	codec     ports.TokenCodec
	notifier  ports.NotificationGateway
	validator *RequestValidator
	cfg       SignupConfig
	now       func() time.Time
	logger    *logrus.Logger
}

func NewSignupService(accounts ports.AccountRepository, store ports.VerificationStore, codec ports.TokenCodec, notifier ports.NotificationGateway, validator *RequestValidator, cfg SignupConfig, logger *logrus.Logger) *SignupService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = verification.DefaultTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if validator == nil {
		validator = NewRequestValidator()
	}
	return &SignupService{
		accounts:  accounts,
		store:     store,
		codec:     codec,
		notifier:  notifier,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
	}
}

var _ ports.SignupCoordinator = (*SignupService)(nil)

// Signup validates req, creates an unverified account and sends its confirmation email.
//
// Once the account exists, failures of later steps are returned together with
// a non-nil result: ErrStoreUnavailable when the token could not be persisted
// and a *account.NotificationError when the email could not be sent.
func (s *SignupService) Signup(ctx context.Context, req *account.SignupRequest) (*ports.SignupResult, error) {
	if verr := s.validator.ValidateSignup(req); verr != nil {
		return nil, verr
	}

	existing, err := s.accounts.FindByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if existing != nil {
		return nil, account.ErrDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	acct := &account.Account{
		ID:                 uuid.New(),
		Name:               req.Name,
		Email:              req.Email,
		PasswordHash:       string(hash),
		VerificationStatus: account.StatusUnverified,
		NewsletterOptIn:    bool(req.Newsletter),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, account.ErrDuplicateUsername) {
			return nil, err
		}
		if s.logger != nil {
			s.logger.WithField("name", req.Name).WithError(err).Warn("failed to create account")
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"account_id": acct.ID, "name": acct.Name}).Info("created new user")
	}

	return s.issueAndNotify(ctx, acct)
}

// ResendVerification replaces the pending token of an unverified account and mails it again.
func (s *SignupService) ResendVerification(ctx context.Context, name string) (*ports.SignupResult, error) {
	acct, err := s.accounts.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if acct == nil {
		return nil, account.ErrAccountNotFound
	}
	if acct.IsVerified() {
		return nil, account.ErrAlreadyVerified
	}
	return s.issueAndNotify(ctx, acct)
}

func (s *SignupService) issueAndNotify(ctx context.Context, acct *account.Account) (*ports.SignupResult, error) {
	result := &ports.SignupResult{Account: acct}

	token, err := s.codec.IssueToken()
	if err != nil {
		return result, err
	}
	key := s.codec.LookupKey(token)

	record := &verification.PendingVerification{
		AccountName: acct.Name,
		Email:       acct.Email,
		IssuedAt:    s.now(),
	}
	if err := s.store.Set(ctx, key, record, s.cfg.TokenTTL); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"name": acct.Name, "lookup_key": key}).WithError(err).Error("unable to store verification token")
		}
		if !errors.Is(err, account.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", account.ErrStoreUnavailable, err)
		}
		return result, err
	}
	result.Token = token

	msg := &notification.Message{
		Kind:          notification.KindConfirmEmail,
		To:            acct.Email,
		RecipientName: acct.Name,
		Subject:       s.confirmationSubject(),
		Link:          s.ConfirmationLink(token),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"name": acct.Name, "email": acct.Email}).WithError(err).Error("unable to send confirmation email")
		}
		return result, &account.NotificationError{Email: acct.Email, Err: err}
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"name": acct.Name, "email": acct.Email}).Info("emailed new user")
	}
	return result, nil
}

// ConfirmationLink builds the URL mailed to the account owner.
func (s *SignupService) ConfirmationLink(token verification.Token) string {
	return fmt.Sprintf("%s/confirm-email/%s", s.cfg.BaseURL, token)
}

func (s *SignupService) confirmationSubject() string {
	if s.cfg.CompanyName == "" {
		return "Please verify your email address"
	}
	return fmt.Sprintf("%s: Please verify your email address", s.cfg.CompanyName)
}
