package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/coregym/internal/app"
	"github.com/five82/coregym/internal/gym"
)

var (
	configPath string
	prefsPath  string
	refresh    time.Duration
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		if f, ok := gym.AsFailure(err); ok {
			err = f
		}
		fmt.Fprintf(os.Stderr, "coregym: %v\n", err)
		return 1
	}
	return 0
}

func options() app.Options {
	return app.Options{ConfigPath: configPath, PrefsPath: prefsPath, RefreshEvery: refresh}
}

// withEnv bootstraps the application for a one-shot subcommand.
func withEnv(fn func(cmd *cobra.Command, env *app.Env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := app.Bootstrap(options())
		if err != nil {
			return err
		}
		defer env.Close()
		return fn(cmd, env, args)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coregym",
		Short:         "Terminal client for Core Gym Club",
		Long:          "Sign in, browse upcoming workouts and book classes at Core Gym Club.",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), options())
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/coregym/config.toml)")
	root.PersistentFlags().StringVar(&prefsPath, "prefs", "", "preferences file (default ~/.config/coregym/prefs.toml)")
	root.PersistentFlags().DurationVar(&refresh, "refresh", 0, "workout refresh interval, e.g. 30s (0 keeps the configured value)")

	workoutsCmd := &cobra.Command{
		Use:   "workouts",
		Short: "List upcoming workouts",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			if watch {
				return app.WatchWorkouts(cmd.Context(), env, refresh, cmd.OutOrStdout())
			}
			return app.ListWorkouts(cmd.Context(), env, cmd.OutOrStdout())
		}),
	}
	workoutsCmd.Flags().BoolP("watch", "w", false, "keep refreshing until interrupted")

	bookCmd := &cobra.Command{
		Use:   "book <workout-id>",
		Short: "Book a workout for the signed-in member",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			return app.Book(cmd.Context(), env, args[0], cmd.OutOrStdout())
		}),
	}

	signOutCmd := &cobra.Command{
		Use:   "signout",
		Short: "Forget the signed-in member",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			return app.SignOut(env, cmd.OutOrStdout())
		}),
	}

	whoAmICmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in email",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			return app.WhoAmI(env, cmd.OutOrStdout())
		}),
	}

	root.AddCommand(workoutsCmd, bookCmd, signOutCmd, whoAmICmd)
	return root
}
