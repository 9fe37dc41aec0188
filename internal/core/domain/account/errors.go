package account

import (
	"errors"
	"strings"
)

var (
	ErrDuplicateUsername     = errors.New("username already exists")
	ErrStoreUnavailable      = errors.New("verification store unavailable")
	ErrNotificationFailure   = errors.New("confirmation email could not be sent")
	ErrTokenInvalidOrExpired = errors.New("confirmation link is invalid or has expired")
	ErrAccountNotFound       = errors.New("account not found")
	ErrAlreadyVerified       = errors.New("email already verified")
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in a signup request.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a violation.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether a violation for field with the given message was recorded.
func (e *ValidationError) Has(field, message string) bool {
	for _, f := range e.Fields {
		if f.Field == field && f.Message == message {
			return true
		}
	}
	return false
}

// Empty reports whether no violation was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// NotificationError is returned when the account and its pending token exist
// but the confirmation email was not delivered.
type NotificationError struct {
	Email string
	Err   error
}

func (e *NotificationError) Error() string {
	return "unable to send email to " + e.Email + ": " + e.Err.Error()
}

func (e *NotificationError) Unwrap() []error {
	return []error{ErrNotificationFailure, e.Err}
}
