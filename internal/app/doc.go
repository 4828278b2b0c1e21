// Package app is the composition root of the CoreGym client.
//
// # Overview
//
// Bootstrap loads everything a command needs and returns it as an Env:
//
//  1. config.Load: TOML file plus COREGYM_* overrides
//  2. prefs.Load: theme and last screen
//  3. logging.New: JSON log file for the run
//  4. session.Open: the signed-in email from the previous run
//  5. buildTransport: net/http or resty, wrapped in the dump transport
//     when debug is on
//  6. gym.NewServices: request clients bound to the configured URLs
//
// Run hands the Env to the terminal UI and blocks until it exits. The
// non-interactive subcommands use ListWorkouts, WatchWorkouts, Book,
// SignOut and WhoAmI, which write plain text to an io.Writer.
//
// # Polling
//
// StartPoller refetches a client on a fixed interval from a background
// goroutine. Consecutive failures double the wait up to 30 seconds (or the
// interval itself when that is longer); a success resets it. The poller
// stops when its context ends and closes the returned channel.
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	done := app.StartPoller(ctx, env.Services.Workouts(), time.Minute, env.Logger, nil)
//	<-done
//
// # Errors
//
// Bootstrap fails on an invalid config file, an unusable log path or a
// corrupt session file. Service errors from the commands are returned as
// produced by package gym so the caller can print the user-facing message.
package app
