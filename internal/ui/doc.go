// Package ui provides the terminal user interface for the CoreGym client.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds every screen's state and is
// updated by value; work that blocks (HTTP calls, reading the log file) runs
// in tea.Cmds that report back through messages.
//
// # Package Structure
//
//   - app.go: Model, screen switching, sign-in and registration submission, Run
//   - form.go: the shared form component behind Sign in and Register
//   - workouts.go: the workouts table, booking and auto-refresh
//   - activity.go: tail of the client's own log file
//   - navbar.go, help.go: chrome and the help overlay
//   - theme.go, keys.go, layout.go: styling, key bindings and sizes
//
// # Screen Lifetime
//
// Every switch cancels the previous screen's context and increments a
// generation counter. Results tagged with an older generation are dropped,
// and the workouts client is detached so a late response cannot update a
// screen that is no longer shown.
//
// # Screens
//
//   - Sign in: email and password, ctrl+r switches to Register
//   - Register: five fields validated before anything is sent
//   - Workouts: upcoming classes with a Book action per row
//   - Activity: recent log records, refreshed every second
//
// # Usage Example
//
//	err := ui.Run(ui.Options{
//	    Context:  ctx,
//	    Services: services,
//	    Session:  store,
//	    Logger:   logger,
//	    LogFile:  cfg.LogFile,
//	})
package ui
