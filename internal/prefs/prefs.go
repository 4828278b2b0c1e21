// Package prefs handles CoreGym user preferences persistence.
// Preferences are stored in ~/.config/coregym/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Screen names stored in last_screen.
const (
	ScreenSignIn   = "signin"
	ScreenRegister = "register"
	ScreenWorkouts = "workouts"
	ScreenActivity = "activity"
)

var screens = []string{ScreenSignIn, ScreenRegister, ScreenWorkouts, ScreenActivity}

// Prefs holds user preferences for the terminal client.
type Prefs struct {
	Theme      string `toml:"theme"`
	LastScreen string `toml:"last_screen,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/coregym/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the preferences used when no file exists.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme}
}

// NormalizeScreen returns the canonical screen name, or "" when name is not
// a known screen.
func NormalizeScreen(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range screens {
		if s == name {
			return s
		}
	}
	return ""
}

// StartScreen picks the screen to open on launch. Activity is restored
// whatever the session says; every other screen follows the session so a
// signed-out member never lands on Workouts.
func (p Prefs) StartScreen(signedIn bool) string {
	if NormalizeScreen(p.LastScreen) == ScreenActivity {
		return ScreenActivity
	}
	if signedIn {
		return ScreenWorkouts
	}
	return ScreenSignIn
}

func (p Prefs) normalized() Prefs {
	if p.Theme = strings.TrimSpace(p.Theme); p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.LastScreen = NormalizeScreen(p.LastScreen)
	return p
}

// Load reads preferences from the given path. A missing, unreadable or
// malformed file yields Defaults; only a path that cannot be resolved is an
// error.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults(), err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return Defaults(), nil
	}

	var p Prefs
	if err := toml.Unmarshal(data, &p); err != nil {
		return Defaults(), nil
	}
	return p.normalized(), nil
}

// Save writes preferences to the given path, creating directories as needed.
// Unknown screen names are not stored.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p.normalized())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
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
