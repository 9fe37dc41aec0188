package account

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID                 uuid.UUID          `json:"id" db:"id"`
	Name               string             `json:"name" db:"name"`
	Email              string             `json:"email" db:"email"`
	PasswordHash       string             `json:"-" db:"password_hash"`
	VerificationStatus VerificationStatus `json:"verification_status" db:"verification_status"`
	NewsletterOptIn    bool               `json:"newsletter_opt_in" db:"newsletter_opt_in"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`
}

// IsVerified reports whether the account has confirmed its email address.
func (a *Account) IsVerified() bool {
	return a.VerificationStatus == StatusVerified
}

type VerificationStatus string

const (
	StatusUnverified VerificationStatus = "unverified"
	StatusVerified   VerificationStatus = "verified"
)

func (s VerificationStatus) String() string {
	return string(s)
}

func (s VerificationStatus) IsValid() bool {
	switch s {
	case StatusUnverified, StatusVerified:
		return true
	default:
		return false
	}
}

// SignupRequest represents the signup form payload
type SignupRequest struct {
	Name       string `json:"name" form:"name" validate:"required"`
	Email      string `json:"email" form:"email" validate:"required,email"`
	Password   string `json:"password" form:"password" validate:"required"`
	Verify     string `json:"verify" form:"verify" validate:"required"`
	Newsletter OptIn  `json:"npmweekly" form:"npmweekly"`
}

// ConfirmEmailRequest represents the request to confirm an email address
type ConfirmEmailRequest struct {
	Token string `json:"token" form:"token" validate:"required"`
}

// OptIn is a checkbox value. Browsers post "on", API clients may send a JSON
// bool; empty, "false", "off", "no" and "0" mean not opted in.
type OptIn bool

func parseOptIn(v string) OptIn {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "off", "no", "0":
		return false
	default:
		return true
	}
}

// UnmarshalParam implements echo.BindUnmarshaler for form and query binding.
func (o *OptIn) UnmarshalParam(param string) error {
	*o = parseOptIn(param)
	return nil
}

func (o *OptIn) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*o = false
	case bool:
		*o = OptIn(t)
	case string:
		*o = parseOptIn(t)
	default:
		return fmt.Errorf("npmweekly: unsupported value %s", string(b))
	}
	return nil
}
