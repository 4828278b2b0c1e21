package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/coregym/internal/config"
	"github.com/five82/coregym/internal/gym"
	"github.com/five82/coregym/internal/logging"
	"github.com/five82/coregym/internal/prefs"
	"github.com/five82/coregym/internal/session"
	"github.com/five82/coregym/internal/ui"
)

// Version is reported in the User-Agent header.
var Version = "0.1.0"

// Options configure the CoreGym application.
type Options struct {
	ConfigPath   string
	PrefsPath    string        // empty uses default ~/.config/coregym/prefs.toml
	RefreshEvery time.Duration // zero keeps the configured refresh_interval
}

// Env is everything a command needs once configuration has been loaded.
type Env struct {
	Config   config.Config
	Prefs    prefs.Prefs
	Session  session.Store
	Logger   zerolog.Logger
	Services *gym.Services

	logCloser io.Closer
}

// Bootstrap loads configuration, preferences and the session file, opens
// the log and builds the service clients.
func Bootstrap(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.RefreshEvery > 0 {
		cfg.RefreshInterval = opts.RefreshEvery
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return nil, fmt.Errorf("load prefs: %w", err)
	}

	logger, closer, err := logging.New(logging.Options{
		Path:    cfg.LogFile,
		Level:   cfg.LogLevel,
		Service: "coregym",
	})
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	store, err := session.Open(cfg.SessionFile)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("open session: %w", err)
	}

	transport := buildTransport(cfg, logger)
	services := gym.NewServices(gym.EndpointsFrom(cfg), transport, logger).
		WithUserAgent("coregym/" + Version)

	logger.Info().
		Str("transport", cfg.Transport).
		Dur("refresh_interval", cfg.RefreshInterval).
		Str("session_file", store.Path()).
		Msg("coregym started")

	return &Env{
		Config:    cfg,
		Prefs:     userPrefs,
		Session:   store,
		Logger:    logger,
		Services:  services,
		logCloser: closer,
	}, nil
}

// Close releases the log file.
func (e *Env) Close() error {
	if e == nil || e.logCloser == nil {
		return nil
	}
	return e.logCloser.Close()
}

// Run boots the CoreGym TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Bootstrap(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	uiOpts := ui.Options{
		Context:      ctx,
		Services:     env.Services,
		Session:      env.Session,
		Logger:       env.Logger,
		LogFile:      env.Config.LogFile,
		RefreshEvery: env.Config.RefreshInterval,
		ThemeName:    env.Prefs.Theme,
		StartScreen:  env.Prefs.LastScreen,
		PrefsPath:    opts.PrefsPath,
	}
	if err := ui.Run(uiOpts); err != nil {
		env.Logger.Error().Err(err).Msg("ui exited with error")
		return err
	}
	env.Logger.Info().Msg("coregym stopped")
	return nil
}
