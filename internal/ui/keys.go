package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	ForceQuit  key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Back       key.Binding

	// Forms
	NextField  key.Binding
	PrevField  key.Binding
	Submit     key.Binding
	SwitchForm key.Binding
	FormLogs   key.Binding

	// Screens
	ViewWorkouts key.Binding
	ViewActivity key.Binding
	SignOut      key.Binding

	// Workouts
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Book   key.Binding
	Retry  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "Quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),

		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Submit"),
		),
		SwitchForm: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "Sign in / Register"),
		),
		FormLogs: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "Activity"),
		),

		ViewWorkouts: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Workouts"),
		),
		ViewActivity: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Activity"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Sign out"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		Book: key.NewBinding(
			key.WithKeys("b", "enter"),
			key.WithHelp("b/enter", "Book workout"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
	}
}

// screenKeys adapts the bindings relevant to one screen to help.KeyMap.
type screenKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

var _ help.KeyMap = screenKeys{}

func (s screenKeys) ShortHelp() []key.Binding  { return s.short }
func (s screenKeys) FullHelp() [][]key.Binding { return s.full }

// ForScreen returns the bindings active on screen.
func (k keyMap) ForScreen(screen Screen, signedIn bool) screenKeys {
	switch screen {
	case ScreenSignIn, ScreenRegister:
		return screenKeys{
			short: []key.Binding{k.NextField, k.Submit, k.SwitchForm, k.FormLogs, k.ForceQuit},
			full: [][]key.Binding{
				{k.NextField, k.PrevField, k.Submit},
				{k.SwitchForm, k.FormLogs, k.Back, k.ForceQuit},
			},
		}
	case ScreenWorkouts:
		return screenKeys{
			short: []key.Binding{k.Book, k.Retry, k.ViewActivity, k.SignOut, k.Help, k.Quit},
			full: [][]key.Binding{
				{k.Up, k.Down, k.Top, k.Bottom},
				{k.Book, k.Retry},
				{k.ViewActivity, k.SignOut},
				{k.CycleTheme, k.Help, k.Quit},
			},
		}
	default:
		nav := []key.Binding{k.Back}
		if signedIn {
			nav = append(nav, k.ViewWorkouts, k.SignOut)
		}
		return screenKeys{
			short: append(append([]key.Binding{k.Up, k.Down, k.Retry}, nav...), k.Help, k.Quit),
			full: [][]key.Binding{
				{k.Up, k.Down, k.Top, k.Bottom, k.Retry},
				nav,
				{k.CycleTheme, k.Help, k.Quit},
			},
		}
	}
}
