package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/coregym/internal/logtail"
)

// activityModel shows the tail of the client's own log file.
type activityModel struct {
	viewport viewport.Model
	entries  []logtail.Entry
	err      string
	follow   bool
	loaded   bool
	active   bool
}

type activityMsg struct {
	gen     int
	entries []logtail.Entry
	err     error
}

func newActivityModel(width, height int) activityModel {
	return activityModel{
		viewport: viewport.New(width, height),
		follow:   true,
		active:   true,
	}
}

func loadActivityCmd(gen int, path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, ActivityLines)
		return activityMsg{gen: gen, entries: entries, err: err}
	}
}

func (a *activityModel) load(entries []logtail.Entry, err error) {
	a.loaded = true
	if err != nil {
		a.err = err.Error()
		return
	}
	a.err = ""
	a.entries = entries
}

func (a *activityModel) resize(width, height int) {
	if !a.active {
		return
	}
	a.viewport.Width = width
	a.viewport.Height = height
}

// render rebuilds the viewport content, keeping the scroll position unless
// the view is following the newest records.
func (a *activityModel) render(styles Styles) {
	if !a.active {
		return
	}
	var b strings.Builder
	for i, e := range a.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderEntry(styles, e))
	}
	a.viewport.SetContent(b.String())
	if a.follow {
		a.viewport.GotoBottom()
	}
}

func renderEntry(styles Styles, e logtail.Entry) string {
	if e.Level == "" && e.Message == "" {
		return styles.MutedText.Render(e.Raw)
	}
	var parts []string
	if !e.Time.IsZero() {
		parts = append(parts, styles.FaintText.Render(e.Time.Local().Format("15:04:05")))
	}
	parts = append(parts, styles.LevelStyle(e.Level).Render(padRight(strings.ToUpper(e.Level), 5)))
	parts = append(parts, styles.Text.Render(e.Message))
	if len(e.Fields) > 0 {
		line := logtail.Format(logtail.Entry{Fields: e.Fields})
		parts = append(parts, styles.MutedText.Render(strings.TrimSpace(line)))
	}
	if e.Error != "" {
		parts = append(parts, styles.DangerText.Render(e.Error))
	}
	return strings.Join(parts, "  ")
}

func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := &m.activity
	switch {
	case key.Matches(msg, m.keys.Back):
		back := m.previous
		if back == ScreenActivity {
			back = ScreenSignIn
		}
		cmd := m.switchTo(back)
		return m, cmd
	case key.Matches(msg, m.keys.Retry):
		a.follow = true
		return m, loadActivityCmd(m.gen, m.logFile)
	case key.Matches(msg, m.keys.Up):
		a.viewport.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		a.viewport.LineDown(1)
	case key.Matches(msg, m.keys.Top):
		a.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		a.viewport.GotoBottom()
	}
	a.follow = a.viewport.AtBottom()
	return m, nil
}

func (a activityModel) view(styles Styles) string {
	switch {
	case a.err != "":
		return styles.DangerText.Render("Failed to read log: " + a.err)
	case !a.loaded:
		return styles.MutedText.Render("Loading activity...")
	case len(a.entries) == 0:
		return styles.MutedText.Render("No activity yet.")
	}
	return a.viewport.View()
}
