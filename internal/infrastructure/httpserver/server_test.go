package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/seldo/newww/internal/application/services"
	"github.com/seldo/newww/internal/core/domain/account"
	"github.com/seldo/newww/internal/core/domain/notification"
	"github.com/seldo/newww/internal/core/domain/session"
	"github.com/seldo/newww/internal/core/domain/verification"
	"github.com/seldo/newww/internal/core/ports"
	"github.com/seldo/newww/internal/infrastructure/httpserver"
	tmocks "github.com/seldo/newww/test/mocks"
)

type healthCheckerMock struct {
	name string
	err  error
}

func (h *healthCheckerMock) Name() string                    { return h.name }
func (h *healthCheckerMock) Check(ctx context.Context) error { return h.err }

func newTestServer(deps httpserver.ServerDeps) *httpserver.Server {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	if deps.Validator == nil {
		deps.Validator = services.NewRequestValidator()
	}
	return httpserver.NewServer(&httpserver.ServerConfig{Host: "127.0.0.1", Port: "0"}, logger, deps)
}

func do(srv *httpserver.Server, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

const aliceJSON = `{"name":"alice","email":"a@example.com","password":"p","verify":"p"}`

func aliceAccount() *account.Account {
	return &account.Account{ID: uuid.New(), Name: "alice", Email: "a@example.com", VerificationStatus: account.StatusUnverified}
}

func TestSignup_Created(t *testing.T) {
	signup := &tmocks.SignupCoordinatorMock{SignupFn: func(ctx context.Context, req *account.SignupRequest) (*ports.SignupResult, error) {
		assert.Equal(t, "alice", req.Name)
		assert.Equal(t, "p", req.Verify)
		return &ports.SignupResult{Account: aliceAccount(), Token: "secret-token"}, nil
	}}
	srv := newTestServer(httpserver.ServerDeps{Signup: signup, Sessions: &tmocks.SessionServiceMock{}})

	rec := do(srv, http.MethodPost, "/api/v1/signup", aliceJSON, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-token")
	assert.NotContains(t, rec.Body.String(), "password_hash")

	var body struct {
		Account account.Account `json:"account"`
		Session *session.Tokens `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.Account.Name)
	assert.Equal(t, account.StatusUnverified, body.Account.VerificationStatus)
	require.NotNil(t, body.Session)
	assert.Equal(t, "session-token", body.Session.AccessToken)
}

func TestSignup_ValidationErrorsListed(t *testing.T) {
	signup := &tmocks.SignupCoordinatorMock{SignupFn: func(ctx context.Context, req *account.SignupRequest) (*ports.SignupResult, error) {
		verr := &account.ValidationError{}
		verr.Add("verify", services.MsgPasswordMismatch)
		verr.Add("email", "email must be a valid email address")
		return nil, verr
	}}
	srv := newTestServer(httpserver.ServerDeps{Signup: signup})

	rec := do(srv, http.MethodPost, "/api/v1/signup", aliceJSON, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var verr account.ValidationError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	assert.True(t, verr.Has("verify", services.MsgPasswordMismatch))
	assert.Len(t, verr.Fields, 2)
}

func TestSignup_Duplicate(t *testing.T) {
	signup := &tmocks.SignupCoordinatorMock{SignupFn: func(ctx context.Context, req *account.SignupRequest) (*ports.SignupResult, error) {
		return nil, account.ErrDuplicateUsername
	}}
	srv := newTestServer(httpserver.ServerDeps{Signup: signup})

	rec := do(srv, http.MethodPost, "/api/v1/signup", aliceJSON, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "username already exists")
}

func TestSignup_StoreUnavailable(t *testing.T) {
	signup := &tmocks.SignupCoordinatorMock{SignupFn: func(ctx context.Context, req *account.SignupRequest) (*ports.SignupResult, error) {
		return &ports.SignupResult{Account: aliceAccount()}, account.ErrStoreUnavailable
	}}
	srv := newTestServer(httpserver.ServerDeps{Signup: signup, Sessions: &tmocks.SessionServiceMock{}})

	rec := do(srv, http.MethodPost, "/api/v1/signup", aliceJSON, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Account *account.Account `json:"account"`
		Session *session.Tokens  `json:"session"`
		Message string           `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Account)
	require.NotNil(t, body.Session, "the owner needs a session to reach resend")
	assert.Contains(t, body.Message, "resend-verification")
}

func TestSignup_StoreUnavailableBeforeAccountExists(t *testing.T) {
	signup := &tmocks.SignupCoordinatorMock{SignupFn: func(ctx context.Context, req *account.SignupRequest) (*ports.SignupResult, error) {
		return nil, account.ErrStoreUnavailable
	}}
	srv := newTestServer(httpserver.ServerDeps{Signup: signup, Sessions: &tmocks.SessionServiceMock{}})

	rec := do(srv, http.MethodPost, "/api/v1/signup", aliceJSON, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "session")
}

func TestSignup_EmailFailed(t *testing.T) {
	signup := &tmocks.SignupCoordinatorMock{SignupFn: func(ctx context.Context, req *account.SignupRequest) (*ports.SignupResult, error) {
		return &ports.SignupResult{Account: aliceAccount(), Token: "secret-token"},
			&account.NotificationError{Email: "a@example.com", Err: errors.New("smtp down")}
	}}
	srv := newTestServer(httpserver.ServerDeps{Signup: signup, Sessions: &tmocks.SessionServiceMock{}})

	rec := do(srv, http.MethodPost, "/api/v1/signup", aliceJSON, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unable to send email to a@example.com. Please try again later.")
	assert.NotContains(t, rec.Body.String(), "smtp down")
}

func TestSignup_MalformedBody(t *testing.T) {
	srv := newTestServer(httpserver.ServerDeps{Signup: &tmocks.SignupCoordinatorMock{}})

	rec := do(srv, http.MethodPost, "/api/v1/signup", `{"name":`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func confirmMock(err error) *tmocks.ConfirmationConsumerMock {
	return &tmocks.ConfirmationConsumerMock{ConfirmFn: func(ctx context.Context, token verification.Token) (*account.Account, error) {
		if err != nil {
			return nil, err
		}
		a := aliceAccount()
		a.VerificationStatus = account.StatusVerified
		return a, nil
	}}
}

func TestConfirmEmailPage(t *testing.T) {
	srv := newTestServer(httpserver.ServerDeps{Confirmation: confirmMock(nil)})
	rec := do(srv, http.MethodGet, "/confirm-email/tok", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email Confirmed")

	srv = newTestServer(httpserver.ServerDeps{Confirmation: confirmMock(account.ErrTokenInvalidOrExpired)})
	rec = do(srv, http.MethodGet, "/confirm-email/tok", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "confirmation link is invalid or has expired")
}

func TestConfirmEmailAPI_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{nil, http.StatusOK},
		{account.ErrTokenInvalidOrExpired, http.StatusBadRequest},
		{account.ErrAccountNotFound, http.StatusNotFound},
		{account.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		srv := newTestServer(httpserver.ServerDeps{Confirmation: confirmMock(tc.err)})

		rec := do(srv, http.MethodGet, "/api/v1/confirm-email?token=tok", "", nil)
		assert.Equal(t, tc.code, rec.Code, "GET %v", tc.err)

		rec = do(srv, http.MethodPost, "/api/v1/confirm-email", `{"token":"tok"}`, nil)
		assert.Equal(t, tc.code, rec.Code, "POST %v", tc.err)
	}
}

func TestConfirmEmailAPI_MissingToken(t *testing.T) {
	srv := newTestServer(httpserver.ServerDeps{Confirmation: confirmMock(nil)})

	rec := do(srv, http.MethodGet, "/api/v1/confirm-email", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(srv, http.MethodPost, "/api/v1/confirm-email", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func sessionFor(name string) *tmocks.SessionServiceMock {
	return &tmocks.SessionServiceMock{ValidateFn: func(ctx context.Context, token string) (*session.Claims, error) {
		if token != "good" {
			return nil, errors.New("invalid token")
		}
		return &session.Claims{AccountID: uuid.New(), Name: name}, nil
	}}
}

func TestResendVerification(t *testing.T) {
	var resentFor string
	signup := &tmocks.SignupCoordinatorMock{ResendVerificationFn: func(ctx context.Context, name string) (*ports.SignupResult, error) {
		resentFor = name
		return &ports.SignupResult{Account: aliceAccount(), Token: "t"}, nil
	}}
	srv := newTestServer(httpserver.ServerDeps{Signup: signup, Sessions: sessionFor("alice")})

	rec := do(srv, http.MethodPost, "/api/v1/resend-verification", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(srv, http.MethodPost, "/api/v1/resend-verification", "", map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(srv, http.MethodPost, "/api/v1/resend-verification", "", map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", resentFor)
}

func TestResendVerification_AlreadyVerified(t *testing.T) {
	signup := &tmocks.SignupCoordinatorMock{ResendVerificationFn: func(ctx context.Context, name string) (*ports.SignupResult, error) {
		return nil, account.ErrAlreadyVerified
	}}
	srv := newTestServer(httpserver.ServerDeps{Signup: signup, Sessions: sessionFor("alice")})

	rec := do(srv, http.MethodPost, "/api/v1/resend-verification", "", map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRateLimit(t *testing.T) {
	reset := time.Date(2024, 3, 1, 12, 1, 0, 0, time.UTC)
	limiter := &tmocks.RateLimiterServiceMock{AllowFn: func(ctx context.Context, clientKey string) (bool, int, int, time.Time, error) {
		return false, 0, 30, reset, nil
	}}
	srv := newTestServer(httpserver.ServerDeps{Signup: &tmocks.SignupCoordinatorMock{}, RateLimiterService: limiter})

	rec := do(srv, http.MethodPost, "/api/v1/signup", aliceJSON, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// health is never limited
	rec = do(srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_FailOpen(t *testing.T) {
	limiter := &tmocks.RateLimiterServiceMock{AllowFn: func(ctx context.Context, clientKey string) (bool, int, int, time.Time, error) {
		return true, 0, 30, time.Now(), errors.New("redis down")
	}}
	srv := newTestServer(httpserver.ServerDeps{Confirmation: confirmMock(nil), RateLimiterService: limiter})

	rec := do(srv, http.MethodGet, "/api/v1/confirm-email?token=tok", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(httpserver.ServerDeps{HealthCheckers: []ports.HealthChecker{
		&healthCheckerMock{name: "database"},
		&healthCheckerMock{name: "redis"},
	}})
	rec := do(srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	srv = newTestServer(httpserver.ServerDeps{HealthCheckers: []ports.HealthChecker{
		&healthCheckerMock{name: "redis", err: errors.New("down")},
	}})
	rec = do(srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(httpserver.ServerDeps{Confirmation: confirmMock(account.ErrTokenInvalidOrExpired)})
	_ = do(srv, http.MethodGet, "/api/v1/confirm-email?token=tok", "", nil)

	rec := do(srv, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `email_confirmations_total{outcome="invalid"}`)
}

// TestSignupAndConfirm_EndToEnd drives the real services through HTTP with in-memory stores.
func TestSignupAndConfirm_EndToEnd(t *testing.T) {
	accounts := tmocks.NewMemoryAccountRepository()
	store := tmocks.NewMemoryVerificationStore()
	notifier := &tmocks.NotificationGatewayMock{}
	codec := services.NewTokenCodec()
	validator := services.NewRequestValidator()

	signup := services.NewSignupService(accounts, store, codec, notifier, validator, services.SignupConfig{
		BaseURL:    "https://www.example.com",
		BcryptCost: bcrypt.MinCost,
	}, nil)
	srv := newTestServer(httpserver.ServerDeps{
		Signup:       signup,
		Confirmation: services.NewConfirmationService(accounts, store, codec, nil),
		Sessions:     services.NewSessionService("test-secret", time.Hour),
		Validator:    validator,
	})

	rec := do(srv, http.MethodPost, "/api/v1/signup", `{"name":"alice","email":"a@example.com","password":"p","verify":"q"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), services.MsgPasswordMismatch)
	assert.Empty(t, notifier.Sent)

	rec = do(srv, http.MethodPost, "/api/v1/signup", aliceJSON, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, notifier.Sent, 1)

	msg := notifier.Sent[0]
	assert.Equal(t, notification.KindConfirmEmail, msg.Kind)
	path := strings.TrimPrefix(msg.Link, "https://www.example.com")
	require.True(t, strings.HasPrefix(path, "/confirm-email/"))

	rec = do(srv, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, _ := accounts.FindByName(context.Background(), "alice")
	require.NotNil(t, stored)
	assert.True(t, stored.IsVerified())

	rec = do(srv, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(srv, http.MethodPost, "/api/v1/signup", aliceJSON, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

type liveStack struct {
	srv      *httpserver.Server
	accounts *tmocks.MemoryAccountRepository
	notifier *tmocks.NotificationGatewayMock
}

func newLiveStack(store ports.VerificationStore) *liveStack {
	accounts := tmocks.NewMemoryAccountRepository()
	notifier := &tmocks.NotificationGatewayMock{}
	codec := services.NewTokenCodec()
	validator := services.NewRequestValidator()
	signup := services.NewSignupService(accounts, store, codec, notifier, validator, services.SignupConfig{
		BaseURL:    "https://www.example.com",
		BcryptCost: bcrypt.MinCost,
	}, nil)
	srv := newTestServer(httpserver.ServerDeps{
		Signup:       signup,
		Confirmation: services.NewConfirmationService(accounts, store, codec, nil),
		Sessions:     services.NewSessionService("test-secret", time.Hour),
		Validator:    validator,
	})
	return &liveStack{srv: srv, accounts: accounts, notifier: notifier}
}

func TestSignup_StoreOutageRecoveredThroughResend(t *testing.T) {
	memory := tmocks.NewMemoryVerificationStore()
	failures := 1
	store := &tmocks.VerificationStoreMock{
		SetFn: func(ctx context.Context, key verification.Key, record *verification.PendingVerification, ttl time.Duration) error {
			if failures > 0 {
				failures--
				return errors.New("connection refused")
			}
			return memory.Set(ctx, key, record, ttl)
		},
		TakeAndDeleteFn: memory.TakeAndDelete,
	}
	live := newLiveStack(store)

	rec := do(live.srv, http.MethodPost, "/api/v1/signup", aliceJSON, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, live.notifier.Sent)

	var body struct {
		Session *session.Tokens `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Session)

	rec = do(live.srv, http.MethodPost, "/api/v1/signup", aliceJSON, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(live.srv, http.MethodPost, "/api/v1/resend-verification", "",
		map[string]string{"Authorization": "Bearer " + body.Session.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, live.notifier.Sent, 1)

	path := strings.TrimPrefix(live.notifier.Sent[0].Link, "https://www.example.com")
	rec = do(live.srv, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, _ := live.accounts.FindByName(context.Background(), "alice")
	require.NotNil(t, stored)
	assert.True(t, stored.IsVerified())
}

func postForm(srv *httpserver.Server, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func TestSignup_FormEncodedNewsletterCheckbox(t *testing.T) {
	live := newLiveStack(tmocks.NewMemoryVerificationStore())

	rec := postForm(live.srv, "/api/v1/signup", url.Values{
		"name": {"alice"}, "email": {"a@example.com"}, "password": {"p"}, "verify": {"p"}, "npmweekly": {"on"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	stored, _ := live.accounts.FindByName(context.Background(), "alice")
	require.NotNil(t, stored)
	assert.True(t, stored.NewsletterOptIn)

	rec = postForm(live.srv, "/api/v1/signup", url.Values{
		"name": {"bob"}, "email": {"b@example.com"}, "password": {"p"}, "verify": {"p"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	stored, _ = live.accounts.FindByName(context.Background(), "bob")
	require.NotNil(t, stored)
	assert.False(t, stored.NewsletterOptIn)
}

func TestSignup_FormEncodedErrorsAllReported(t *testing.T) {
	live := newLiveStack(tmocks.NewMemoryVerificationStore())

	rec := postForm(live.srv, "/api/v1/signup", url.Values{
		"name": {"Alice"}, "email": {"not-an-email"}, "password": {"p"}, "verify": {"q"}, "npmweekly": {"on"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var verr account.ValidationError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	assert.True(t, verr.Has("verify", services.MsgPasswordMismatch))
	assert.True(t, verr.Has("name", services.MsgUsernameLowercase))
	assert.GreaterOrEqual(t, len(verr.Fields), 3)
}
