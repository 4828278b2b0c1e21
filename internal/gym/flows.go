package gym

import (
	"context"
	"fmt"
	"strings"

	"github.com/five82/coregym/internal/fetch"
	"github.com/five82/coregym/internal/forms"
	"github.com/five82/coregym/internal/session"
)

// detachable is the part of fetch.Client the flows need to tell a
// cancelled attempt from an empty response.
type detachable interface {
	Detached() bool
}

func abandoned(ctx context.Context, c detachable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.Detached() {
		return context.Canceled
	}
	return nil
}

// SignIn validates form, posts it and records the confirmed email in
// store. Validation problems come back as forms.FieldErrors, service
// problems as *Failure, and cancellation as the context error.
func SignIn(ctx context.Context, client *fetch.Client[SignInResult], store session.Store, form forms.SignInForm) (string, error) {
	if errs := forms.Validate(form); errs != nil {
		return "", errs
	}

	res, err := client.Post(ctx, form.Payload())
	if err != nil {
		return "", signInFailure(err)
	}
	if res == nil {
		if err := abandoned(ctx, client); err != nil {
			return "", err
		}
		return "", &Failure{Toast: MsgUnexpectedSignIn}
	}

	email := strings.TrimSpace(res.Email)
	if email == "" {
		return "", &Failure{Toast: MsgUnexpectedSignIn}
	}
	if err := store.Set(session.KeyLoggedInEmail, email); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return email, nil
}

// Register validates form and creates the account. It does not sign the
// user in.
func Register(ctx context.Context, client *fetch.Client[RegisterResult], form forms.RegistrationForm) (*RegisterResult, error) {
	if errs := forms.Validate(form); errs != nil {
		return nil, errs
	}

	res, err := client.Post(ctx, form.Payload())
	if err != nil {
		return nil, registerFailure(err)
	}
	if res == nil {
		if err := abandoned(ctx, client); err != nil {
			return nil, err
		}
		res = &RegisterResult{}
	}
	return res, nil
}

// Book reserves workoutID for the signed-in member.
func Book(ctx context.Context, client *fetch.Client[any], store session.Store, workoutID string) error {
	email, ok := session.SignedInEmail(store)
	if !ok {
		return &Failure{Toast: MsgNotSignedIn, Err: ErrNotSignedIn}
	}
	workoutID = strings.TrimSpace(workoutID)
	if workoutID == "" {
		return fmt.Errorf("workout id is required")
	}

	_, err := client.Post(ctx, BookingRequest{UserEmail: email, WorkoutIdentifier: workoutID})
	if err != nil {
		return bookFailure(err)
	}
	return abandoned(ctx, client)
}

// SignOut forgets the signed-in member.
func SignOut(store session.Store) error {
	if err := store.Remove(session.KeyLoggedInEmail); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
