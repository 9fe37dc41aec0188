package httpserver

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seldo/newww/internal/core/domain/account"
	"github.com/seldo/newww/internal/core/domain/verification"
)

const confirmedPage = `<!DOCTYPE html>
<html>
<head><title>Email Confirmed</title></head>
<body>
    <h1>Email Confirmed</h1>
    <p>Thanks! Your email address has been confirmed.</p>
    <a href="/">Continue</a>
</body>
</html>
`

var confirmFailedPage = template.Must(template.New("confirm_failed").Parse(`<!DOCTYPE html>
<html>
<head><title>Confirmation Failed</title></head>
<body>
    <h1>Confirmation Failed</h1>
    <p>{{.}}</p>
</body>
</html>
`))

// confirm consumes token and maps the outcome to a status code and a public message
func (s *Server) confirm(c echo.Context, token string) (int, *account.Account, string) {
	acct, err := s.confirmation.Confirm(c.Request().Context(), verification.Token(token))
	switch {
	case err == nil:
		emailConfirmations.WithLabelValues("verified").Inc()
		return http.StatusOK, acct, "email verified successfully"
	case errors.Is(err, account.ErrTokenInvalidOrExpired):
		emailConfirmations.WithLabelValues("invalid").Inc()
		return http.StatusBadRequest, nil, account.ErrTokenInvalidOrExpired.Error()
	case errors.Is(err, account.ErrAccountNotFound):
		emailConfirmations.WithLabelValues("account_not_found").Inc()
		return http.StatusNotFound, nil, account.ErrAccountNotFound.Error()
	case errors.Is(err, account.ErrStoreUnavailable):
		emailConfirmations.WithLabelValues("store_unavailable").Inc()
		return http.StatusServiceUnavailable, nil, msgStoreUnavailable
	default:
		emailConfirmations.WithLabelValues("error").Inc()
		if s.logger != nil {
			s.logger.WithError(err).Error("email confirmation failed")
		}
		return http.StatusInternalServerError, nil, "failed to confirm email"
	}
}

// confirmEmailPage serves the link from the confirmation email
func (s *Server) confirmEmailPage(c echo.Context) error {
	code, _, message := s.confirm(c, c.Param("token"))
	if code == http.StatusOK {
		return c.HTML(code, confirmedPage)
	}
	var buf bytes.Buffer
	if err := confirmFailedPage.Execute(&buf, message); err != nil {
		return echo.NewHTTPError(code, message)
	}
	return c.HTML(code, buf.String())
}

// confirmEmail is the JSON variant. GET reads ?token=, POST reads the body.
func (s *Server) confirmEmail(c echo.Context) error {
	var token string
	if c.Request().Method == http.MethodGet {
		token = c.QueryParam("token")
	} else {
		var req account.ConfirmEmailRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		token = req.Token
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing confirmation token")
	}

	code, acct, message := s.confirm(c, token)
	if code != http.StatusOK {
		return echo.NewHTTPError(code, message)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  message,
		"verified": true,
		"name":     acct.Name,
	})
}
