// Package forms validates the sign-in and registration forms before they
// are sent to the auth service.
package forms

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Field names reported in FieldErrors.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

// SignInForm is the raw input of the sign-in screen.
type SignInForm struct {
	Email    string `form:"email" validate:"required,gymemail,nonblank"`
	Password string `form:"password" validate:"required,min=8"`
}

// SignInPayload is the auth service sign-in body.
type SignInPayload struct {
	Email    string `json:"Email"`
	Password string `json:"Password"`
}

// Payload trims the email and builds the request body.
func (f SignInForm) Payload() SignInPayload {
	return SignInPayload{
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}
}

// RegistrationForm is the raw input of the registration screen.
type RegistrationForm struct {
	FirstName       string `form:"firstName" validate:"required,min=2,nonblank"`
	LastName        string `form:"lastName" validate:"required,min=2,nonblank"`
	Email           string `form:"email" validate:"required,gymemail,nonblank"`
	Password        string `form:"password" validate:"required,min=8,strongpw"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

// RegistrationPayload is the auth service registration body.
type RegistrationPayload struct {
	FirstName       string `json:"FirstName"`
	LastName        string `json:"LastName"`
	Email           string `json:"Email"`
	Password        string `json:"Password"`
	ConfirmPassword string `json:"ConfirmPassword"`
}

// Payload trims names and email and builds the request body.
func (f RegistrationForm) Payload() RegistrationPayload {
	return RegistrationPayload{
		FirstName:       strings.TrimSpace(f.FirstName),
		LastName:        strings.TrimSpace(f.LastName),
		Email:           strings.TrimSpace(f.Email),
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
	}
}

// FieldError is the message shown under one input.
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors lists field messages in form order. It implements error so
// flows can return it directly.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}

// Get returns the message for field, or "".
func (fe FieldErrors) Get(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var messages = map[string]map[string]string{
	FieldFirstName: {
		"required": "First name is required",
		"min":      "First name must be at least 2 characters",
		"nonblank": "First name cannot be empty",
	},
	FieldLastName: {
		"required": "Last name is required",
		"min":      "Last name must be at least 2 characters",
		"nonblank": "Last name cannot be empty",
	},
	FieldEmail: {
		"required": "Email is required",
		"gymemail": "Invalid email format",
		"nonblank": "Email cannot be empty",
	},
	FieldPassword: {
		"required": "Password is required",
		"min":      "Min 8 characters",
		"strongpw": "Need one uppercase, one lowercase and one digit",
	},
	FieldConfirmPassword: {
		"required": "Please confirm your password",
		"eqfield":  "Passwords do not match",
	},
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("form"); name != "" {
				return name
			}
			return fld.Name
		})
		_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("gymemail", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})
		_ = v.RegisterValidation("strongpw", func(fl validator.FieldLevel) bool {
			return strongPassword(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks form (a SignInForm or RegistrationForm, by value or
// pointer) and returns one message per failing field, or nil.
func Validate(form any) FieldErrors {
	err := instance().Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{{Field: "", Message: err.Error()}}
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		msg := messages[field][fe.Tag()]
		if msg == "" {
			msg = field + " is invalid"
		}
		out = append(out, FieldError{Field: field, Message: msg})
	}
	return out
}

func strongPassword(pw string) bool {
	if len([]rune(pw)) < 8 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
