package services_test

import (
	"golang.org/x/crypto/bcrypt"

	impl "github.com/seldo/newww/internal/application/services"
	tmocks "github.com/seldo/newww/test/mocks"
)

const testBaseURL = "https://www.example.com"

type fixture struct {
	accounts *tmocks.MemoryAccountRepository
	store    *tmocks.MemoryVerificationStore
	notifier *tmocks.NotificationGatewayMock
	codec    *impl.TokenCodec
	signup   *impl.SignupService
	confirm  *impl.ConfirmationService
}

func newFixture() *fixture {
	f := &fixture{
		accounts: tmocks.NewMemoryAccountRepository(),
		store:    tmocks.NewMemoryVerificationStore(),
		notifier: &tmocks.NotificationGatewayMock{},
		codec:    impl.NewTokenCodec(),
	}
	f.signup = impl.NewSignupService(f.accounts, f.store, f.codec, f.notifier, nil, impl.SignupConfig{
		BaseURL:     testBaseURL,
		CompanyName: "npm",
		BcryptCost:  bcrypt.MinCost,
	}, nil)
	f.confirm = impl.NewConfirmationService(f.accounts, f.store, f.codec, nil)
	return f
}
