// Package gym talks to the CoreGymClub auth, workout and booking services.
//
// Services hands out fetch clients bound to the configured URLs. The flow
// functions (SignIn, Register, Book, SignOut) drive those clients for one
// user action each and translate service errors into a *Failure that the
// terminal UI and the CLI print as is:
//
//	svc := gym.NewServices(gym.EndpointsFrom(cfg), transport, logger)
//	email, err := gym.SignIn(ctx, svc.SignIn(), store, forms.SignInForm{
//		Email:    "ada@example.com",
//		Password: "Engine42x",
//	})
//	if f, ok := gym.AsFailure(err); ok {
//		fmt.Println(f.Toast)
//	}
//
// The signed-in email is the only session state; it lives in a
// session.Store under session.KeyLoggedInEmail and is what Book sends as
// userEmail.
package gym
