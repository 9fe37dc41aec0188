package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/seldo/newww/internal/core/domain/account"
	"github.com/seldo/newww/internal/core/domain/session"
	"github.com/seldo/newww/internal/core/ports"
	"github.com/seldo/newww/internal/infrastructure/httpserver/helpers"
)

const (
	msgStoreUnavailable    = "service temporarily unavailable, please try again later"
	msgConfirmationPending = "account created, but the confirmation email could not be prepared. Please request a new one later via /api/v1/resend-verification."
)

type signupResponse struct {
	Account *account.Account `json:"account"`
	Session *session.Tokens  `json:"session,omitempty"`
	Message string           `json:"message"`
}

func emailFailureMessage(email string) string {
	return fmt.Sprintf("Unable to send email to %s. Please try again later.", email)
}

func (s *Server) signupHandler(c echo.Context) error {
	var req account.SignupRequest
	if err := c.Bind(&req); err != nil {
		signupAttempts.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := s.signup.Signup(c.Request().Context(), &req)

	var verr *account.ValidationError
	var nerr *account.NotificationError
	switch {
	case err == nil:
		signupAttempts.WithLabelValues("created").Inc()
		return c.JSON(http.StatusCreated, s.newSignupResponse(c, result, "account created, check your email to confirm your address"))
	case errors.As(err, &verr):
		signupAttempts.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, verr)
	case errors.Is(err, account.ErrDuplicateUsername):
		signupAttempts.WithLabelValues("duplicate").Inc()
		dup := &account.ValidationError{}
		dup.Add("name", account.ErrDuplicateUsername.Error())
		return c.JSON(http.StatusConflict, dup)
	case errors.As(err, &nerr) && result != nil:
		signupAttempts.WithLabelValues("email_failed").Inc()
		return c.JSON(http.StatusAccepted, s.newSignupResponse(c, result, emailFailureMessage(nerr.Email)))
	case errors.Is(err, account.ErrStoreUnavailable) && result != nil && result.Account != nil:
		// the account exists; the session is what lets the owner reach resend
		signupAttempts.WithLabelValues("store_unavailable").Inc()
		return c.JSON(http.StatusServiceUnavailable, s.newSignupResponse(c, result, msgConfirmationPending))
	case errors.Is(err, account.ErrStoreUnavailable):
		signupAttempts.WithLabelValues("store_unavailable").Inc()
		return echo.NewHTTPError(http.StatusServiceUnavailable, msgStoreUnavailable)
	default:
		signupAttempts.WithLabelValues("error").Inc()
		if s.logger != nil {
			s.logger.WithField("name", req.Name).WithError(err).Error("signup failed")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create account")
	}
}

// newSignupResponse attaches a session for the new account. A session that
// cannot be issued is logged and left out; the account already exists.
func (s *Server) newSignupResponse(c echo.Context, result *ports.SignupResult, message string) *signupResponse {
	resp := &signupResponse{Account: result.Account, Message: message}
	if s.sessions == nil {
		return resp
	}
	tokens, err := s.sessions.Issue(c.Request().Context(), result.Account)
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("account_id", result.Account.ID).WithError(err).Error("failed to issue session")
		}
		return resp
	}
	resp.Session = tokens
	return resp
}

func (s *Server) resendVerification(c echo.Context) error {
	name, err := helpers.GetAccountNameFromContext(c)
	if err != nil {
		return err
	}

	_, err = s.signup.ResendVerification(c.Request().Context(), name)

	var nerr *account.NotificationError
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{
			"message": "verification email sent successfully",
		})
	case errors.Is(err, account.ErrAccountNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, account.ErrAlreadyVerified):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &nerr):
		return echo.NewHTTPError(http.StatusBadGateway, emailFailureMessage(nerr.Email))
	case errors.Is(err, account.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, msgStoreUnavailable)
	default:
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"name": name}).WithError(err).Error("resend verification failed")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resend verification email")
	}
}
