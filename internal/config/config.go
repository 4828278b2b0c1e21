package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
)

// Transport names accepted by the transport setting.
const (
	TransportHTTP  = "http"
	TransportResty = "resty"
)

// Config holds the endpoints and runtime knobs of the client.
type Config struct {
	SignInURL       string
	RegisterURL     string
	WorkoutsURL     string
	BookingsURL     string
	RequestTimeout  time.Duration
	RefreshInterval time.Duration // zero disables automatic workout refresh
	Transport       string
	LogFile         string
	LogLevel        string
	Debug           bool
	SessionFile     string
}

const (
	defaultConfigPath     = "~/.config/coregym/config.toml"
	defaultLogFile        = "~/.local/state/coregym/coregym.log"
	defaultSessionFile    = "~/.local/state/coregym/session.toml"
	defaultRequestTimeout = 15 * time.Second
	defaultLogLevel       = "info"

	defaultSignInURL   = "https://authservice8-fvgjaehwh5f8d9dq.swedencentral-01.azurewebsites.net/api/Auth/signin"
	defaultRegisterURL = "https://authservice8-fvgjaehwh5f8d9dq.swedencentral-01.azurewebsites.net/api/Auth/register"
	defaultWorkoutsURL = "https://workout-mvp-1-dsgecddqbdgfcqcz.swedencentral-01.azurewebsites.net/api/workout"
	defaultBookingsURL = "https://bookingservice-api-e0e6hed3dca6egak.swedencentral-01.azurewebsites.net/api/Bookings"

	envPrefix = "COREGYM"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SignInURL:      defaultSignInURL,
		RegisterURL:    defaultRegisterURL,
		WorkoutsURL:    defaultWorkoutsURL,
		BookingsURL:    defaultBookingsURL,
		RequestTimeout: defaultRequestTimeout,
		Transport:      TransportHTTP,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
		SessionFile:    mustExpand(defaultSessionFile),
	}
}

type fileConfig struct {
	SignInURL       string `toml:"signin_url"`
	RegisterURL     string `toml:"register_url"`
	WorkoutsURL     string `toml:"workouts_url"`
	BookingsURL     string `toml:"bookings_url"`
	RequestTimeout  string `toml:"request_timeout"`
	RefreshInterval string `toml:"refresh_interval"`
	Transport       string `toml:"transport"`
	LogFile         string `toml:"log_file"`
	LogLevel        string `toml:"log_level"`
	Debug           bool   `toml:"debug"`
	SessionFile     string `toml:"session_file"`
}

// envConfig mirrors fileConfig; unset variables leave the file value alone.
type envConfig struct {
	SignInURL       string `envconfig:"SIGNIN_URL"`
	RegisterURL     string `envconfig:"REGISTER_URL"`
	WorkoutsURL     string `envconfig:"WORKOUTS_URL"`
	BookingsURL     string `envconfig:"BOOKINGS_URL"`
	RequestTimeout  string `envconfig:"REQUEST_TIMEOUT"`
	RefreshInterval string `envconfig:"REFRESH_INTERVAL"`
	Transport       string `envconfig:"TRANSPORT"`
	LogFile         string `envconfig:"LOG_FILE"`
	LogLevel        string `envconfig:"LOG_LEVEL"`
	Debug           string `envconfig:"DEBUG"`
	SessionFile     string `envconfig:"SESSION_FILE"`
}

// Load reads the TOML config at path (default ~/.config/coregym/config.toml),
// falls back to defaults when the file is missing, then applies COREGYM_*
// environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw fileConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	var env envConfig
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := env.apply(&raw); err != nil {
		return Config{}, err
	}

	return raw.resolve()
}

func (e envConfig) apply(raw *fileConfig) error {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&raw.SignInURL, e.SignInURL)
	set(&raw.RegisterURL, e.RegisterURL)
	set(&raw.WorkoutsURL, e.WorkoutsURL)
	set(&raw.BookingsURL, e.BookingsURL)
	set(&raw.RequestTimeout, e.RequestTimeout)
	set(&raw.RefreshInterval, e.RefreshInterval)
	set(&raw.Transport, e.Transport)
	set(&raw.LogFile, e.LogFile)
	set(&raw.LogLevel, e.LogLevel)
	set(&raw.SessionFile, e.SessionFile)
	if v := strings.TrimSpace(e.Debug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s_DEBUG: %w", envPrefix, err)
		}
		raw.Debug = debug
	}
	return nil
}

func (raw fileConfig) resolve() (Config, error) {
	cfg := Default()

	pick := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	pick(&cfg.SignInURL, raw.SignInURL)
	pick(&cfg.RegisterURL, raw.RegisterURL)
	pick(&cfg.WorkoutsURL, raw.WorkoutsURL)
	pick(&cfg.BookingsURL, raw.BookingsURL)
	pick(&cfg.LogLevel, raw.LogLevel)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Debug = raw.Debug

	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.SessionFile); v != "" {
		cfg.SessionFile = mustExpand(v)
	}

	if v := strings.ToLower(strings.TrimSpace(raw.Transport)); v != "" {
		if v != TransportHTTP && v != TransportResty {
			return Config{}, fmt.Errorf("unsupported transport %q (want %q or %q)", raw.Transport, TransportHTTP, TransportResty)
		}
		cfg.Transport = v
	}

	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("parse request_timeout %q: must be a positive duration", v)
		}
		cfg.RequestTimeout = d
	}
	if v := strings.TrimSpace(raw.RefreshInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("parse refresh_interval %q: must be a non-negative duration", v)
		}
		cfg.RefreshInterval = d
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
