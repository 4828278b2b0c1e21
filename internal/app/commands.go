package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/coregym/internal/fetch"
	"github.com/five82/coregym/internal/gym"
	"github.com/five82/coregym/internal/session"
)

// ListWorkouts fetches the workout listing once and prints it to w.
func ListWorkouts(ctx context.Context, env *Env, w io.Writer) error {
	client := env.Services.Workouts()
	defer client.Detach()

	if _, err := client.RefetchWait(ctx); err != nil {
		return fmt.Errorf("load workouts: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return renderWorkouts(w, client.Snapshot())
}

// WatchWorkouts reprints the listing every interval until ctx ends.
func WatchWorkouts(ctx context.Context, env *Env, interval time.Duration, w io.Writer) error {
	if interval <= 0 {
		interval = env.Config.RefreshInterval
	}
	client := env.Services.Workouts()
	defer client.Detach()

	var renderErr error
	done := StartPoller(ctx, client, interval, env.Logger, func(st fetch.State[[]gym.Workout]) {
		if renderErr != nil {
			return
		}
		fmt.Fprintf(w, "\n%s\n", time.Now().Format("15:04:05"))
		if st.Error != "" {
			fmt.Fprintf(w, "Failed to load workouts: %s\n", st.Error)
			return
		}
		renderErr = renderWorkouts(w, st)
	})
	<-done
	return renderErr
}

func renderWorkouts(w io.Writer, st fetch.State[[]gym.Workout]) error {
	var workouts []gym.Workout
	if st.Data != nil {
		workouts = *st.Data
	}
	if len(workouts) == 0 {
		_, err := fmt.Fprintln(w, "No workouts found.")
		return err
	}

	rows := make([][]string, 0, len(workouts))
	for _, wo := range workouts {
		rows = append(rows, []string{wo.ID, wo.Title, wo.Location, wo.FormatStart(), wo.Instructor})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Title", "Location", "Start time", "Instructor").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// Book reserves a workout for the signed-in member.
func Book(ctx context.Context, env *Env, workoutID string, w io.Writer) error {
	client := env.Services.Booking()
	defer client.Detach()

	if err := gym.Book(ctx, client, env.Session, workoutID); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		env.Logger.Warn().Err(err).Str("workout", workoutID).Msg("booking failed")
		return err
	}
	env.Logger.Info().Str("workout", workoutID).Msg("workout booked")
	_, err := fmt.Fprintf(w, "%s %s\n", gym.MsgBooked, workoutID)
	return err
}

// SignOut clears the stored session.
func SignOut(env *Env, w io.Writer) error {
	email, signedIn := session.SignedInEmail(env.Session)
	if err := gym.SignOut(env.Session); err != nil {
		return err
	}
	if !signedIn {
		_, err := fmt.Fprintln(w, "Not signed in.")
		return err
	}
	env.Logger.Info().Str("email", email).Msg("signed out")
	_, err := fmt.Fprintf(w, "Signed out %s.\n", email)
	return err
}

// WhoAmI prints the signed-in email.
func WhoAmI(env *Env, w io.Writer) error {
	email, ok := session.SignedInEmail(env.Session)
	if !ok {
		_, err := fmt.Fprintln(w, "Not signed in.")
		return err
	}
	_, err := fmt.Fprintln(w, email)
	return err
}
