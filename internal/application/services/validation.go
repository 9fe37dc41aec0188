package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/seldo/newww/internal/core/domain/account"
)

const maxUsernameLength = 214

const (
	MsgPasswordMismatch    = "passwords don't match"
	MsgUsernameLowercase   = "username must be lowercase"
	MsgUsernameURLSafe     = "username may not contain non-url-safe chars"
	MsgUsernameLeadingDot  = `username may not start with "."`
	MsgUsernameTooLong     = "username may not be longer than 214 characters"
	msgFieldRequiredFormat = "%s is required"
	msgFieldEmailFormat    = "%s must be a valid email address"
)

// characters left untouched by URI component encoding
var urlSafeUsername = regexp.MustCompile(`^[A-Za-z0-9\-_.!~*'()]*$`)

// RequestValidator evaluates validate struct tags and reports every failure at once.
// It also satisfies echo.Validator.
type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Validate returns nil or an *account.ValidationError.
func (rv *RequestValidator) Validate(i interface{}) error {
	verr := &account.ValidationError{}
	rv.collect(i, verr)
	if verr.Empty() {
		return nil
	}
	return verr
}

func (rv *RequestValidator) collect(i interface{}, verr *account.ValidationError) {
	err := rv.v.Struct(i)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf(msgFieldRequiredFormat, fe.Field())
	case "email":
		return fmt.Sprintf(msgFieldEmailFormat, fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// ValidateSignup checks a signup request. Every rule runs; the returned
// error lists all violations.
func (rv *RequestValidator) ValidateSignup(req *account.SignupRequest) *account.ValidationError {
	verr := &account.ValidationError{}
	rv.collect(req, verr)

	if req.Password != req.Verify {
		verr.Add("verify", MsgPasswordMismatch)
	}
	if msg := usernameProblem(req.Name); msg != "" {
		verr.Add("name", msg)
	}

	if verr.Empty() {
		return nil
	}
	return verr
}

// usernameProblem applies the registry's username rules and returns the
// first violated rule, or "" when name is acceptable.
func usernameProblem(name string) string {
	switch {
	case name != strings.ToLower(name):
		return MsgUsernameLowercase
	case !urlSafeUsername.MatchString(name):
		return MsgUsernameURLSafe
	case strings.HasPrefix(name, "."):
		return MsgUsernameLeadingDot
	case len(name) > maxUsernameLength:
		return MsgUsernameTooLong
	}
	return ""
}
