package gym

import (
	"errors"
	"fmt"

	"github.com/five82/coregym/internal/fetch"
	"github.com/five82/coregym/internal/forms"
)

// User-facing messages.
const (
	MsgInvalidCredentials = "Invalid email or password."
	MsgNetwork            = "Network error. Please check your connection or try again later."
	MsgUnexpectedSignIn   = "Unexpected sign-in response."
	MsgEmailRegistered    = "This email is already registered."
	MsgEmailInUse         = "Email is already in use."
	MsgRegisterFailed     = "Registration failed. Please try again."
	MsgBookFailed         = "Could not book the workout. Please try again."
	MsgNotSignedIn        = "You must be signed in to book a workout."

	MsgSignedIn   = "Signed in successfully!"
	MsgRegistered = "Registration successful!"
	MsgBooked     = "Booked!"
)

// ErrNotSignedIn is wrapped by the Failure Book returns without a session.
var ErrNotSignedIn = errors.New("not signed in")

// Failure is a submission error translated for display. Field is the form
// field FieldMessage belongs under and may be empty; Toast is the summary
// line.
type Failure struct {
	Field        string
	FieldMessage string
	Toast        string
	Err          error
}

func (f *Failure) Error() string {
	return f.Toast
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure extracts a Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func signInFailure(err error) *Failure {
	if code, ok := fetch.StatusCode(err); ok {
		switch {
		case code == 400 || code == 401:
			return &Failure{
				Field:        forms.FieldPassword,
				FieldMessage: MsgInvalidCredentials,
				Toast:        MsgInvalidCredentials,
				Err:          err,
			}
		case code >= 500:
			return &Failure{Toast: fmt.Sprintf("Server error (%d). Please try again later.", code), Err: err}
		default:
			return &Failure{Toast: fmt.Sprintf("Request failed (%d). Please try again later.", code), Err: err}
		}
	}
	var decodeErr *fetch.DecodeError
	switch {
	case fetch.IsTransport(err):
		return &Failure{Toast: MsgNetwork, Err: err}
	case errors.As(err, &decodeErr):
		return &Failure{Toast: MsgUnexpectedSignIn, Err: err}
	}
	return &Failure{Toast: err.Error(), Err: err}
}

func registerFailure(err error) *Failure {
	if code, ok := fetch.StatusCode(err); ok && code == 409 {
		return &Failure{
			Field:        forms.FieldEmail,
			FieldMessage: MsgEmailRegistered,
			Toast:        MsgEmailInUse,
			Err:          err,
		}
	}
	if fetch.IsTransport(err) {
		return &Failure{Toast: MsgNetwork, Err: err}
	}
	msg := err.Error()
	if msg == "" {
		msg = MsgRegisterFailed
	}
	return &Failure{Toast: msg, Err: err}
}

func bookFailure(err error) *Failure {
	return &Failure{Toast: MsgBookFailed, Err: err}
}
