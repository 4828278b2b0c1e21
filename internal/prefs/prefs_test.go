package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "coregym")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"Slate\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Slate")
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "custom.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"Slate\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Slate")
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "subdir", "prefs.toml")

	p := Prefs{Theme: "Slate"}
	if err := Save(prefsFile, p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", loaded.Theme, "Slate")
	}
}

func TestLoad_EmptyThemeFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestSave_RoundTripsLastScreen(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")

	if err := Save(prefsFile, Prefs{Theme: "Kanagawa", LastScreen: "activity"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Kanagawa" || p.LastScreen != "activity" {
		t.Fatalf("Load = %+v, want Kanagawa/activity", p)
	}
}

func TestLoad_NormalizesLastScreen(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{" Activity ", ScreenActivity},
		{"WORKOUTS", ScreenWorkouts},
		{"queue", ""},
		{"", ""},
	}
	for _, tc := range cases {
		prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
		body := "theme = \"Slate\"\nlast_screen = \"" + tc.raw + "\"\n"
		if err := os.WriteFile(prefsFile, []byte(body), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		p, err := Load(prefsFile)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if p.LastScreen != tc.want {
			t.Fatalf("LastScreen(%q) = %q, want %q", tc.raw, p.LastScreen, tc.want)
		}
	}
}

func TestSave_DropsUnknownScreen(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")

	if err := Save(prefsFile, Prefs{Theme: " Slate ", LastScreen: "details"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" || p.LastScreen != "" {
		t.Fatalf("Load = %+v, want Slate with no screen", p)
	}
}

func TestStartScreen(t *testing.T) {
	cases := []struct {
		last     string
		signedIn bool
		want     string
	}{
		{ScreenActivity, false, ScreenActivity},
		{"Activity", true, ScreenActivity},
		{ScreenWorkouts, false, ScreenSignIn},
		{ScreenRegister, true, ScreenWorkouts},
		{"", true, ScreenWorkouts},
		{"", false, ScreenSignIn},
	}
	for _, tc := range cases {
		got := Prefs{LastScreen: tc.last}.StartScreen(tc.signedIn)
		if got != tc.want {
			t.Fatalf("StartScreen(%q, %v) = %q, want %q", tc.last, tc.signedIn, got, tc.want)
		}
	}
}
