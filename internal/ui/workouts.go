package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/coregym/internal/fetch"
	"github.com/five82/coregym/internal/gym"
	"github.com/five82/coregym/internal/session"
)

type rowStatus int

const (
	rowIdle rowStatus = iota
	rowBooking
	rowBooked
	rowFailed
)

type rowState struct {
	status rowStatus
	err    string
}

// workoutsModel is the Workouts screen: the fetch client bound to the
// screen, its latest snapshot, the cursor and per-row booking state.
type workoutsModel struct {
	client    *fetch.Client[[]gym.Workout]
	changes   chan struct{}
	state     fetch.State[[]gym.Workout]
	selected  int
	rows      map[string]rowState
	spinner   spinner.Model
	lastFetch time.Time
}

// workoutsChangedMsg reports that client published a new state.
type workoutsChangedMsg struct {
	client *fetch.Client[[]gym.Workout]
}

type bookResultMsg struct {
	gen int
	id  string
	err error
}

// enterWorkouts binds a fresh workouts client to the screen context. The
// client signals changes on a one-slot channel that waitForChange turns into
// messages.
func (m *Model) enterWorkouts() tea.Cmd {
	changes := make(chan struct{}, 1)
	client := m.services.Workouts(fetch.WithNotify(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}))

	m.workouts = workoutsModel{
		client:  client,
		changes: changes,
		rows:    make(map[string]rowState),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.workouts.spinner.Style = m.theme.Styles().AccentText

	client.Attach(m.screenCtx)
	m.workouts.lastFetch = time.Now()
	m.workouts.state = client.Snapshot()

	return tea.Batch(
		waitForChange(client, changes, m.screenCtx.Done()),
		m.workouts.spinner.Tick,
	)
}

func waitForChange(client *fetch.Client[[]gym.Workout], changes <-chan struct{}, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-changes:
			return workoutsChangedMsg{client: client}
		case <-done:
			return nil
		}
	}
}

func (m Model) handleWorkoutsChanged(msg workoutsChangedMsg) (tea.Model, tea.Cmd) {
	if m.screen != ScreenWorkouts || msg.client != m.workouts.client {
		return m, nil
	}
	wasLoading := m.workouts.state.Loading
	m.workouts.state = msg.client.Snapshot()
	m.workouts.clamp()

	if err := m.workouts.state.Err; err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Warn().Err(err).Msg("load workouts failed")
	}

	cmds := []tea.Cmd{waitForChange(msg.client, m.workouts.changes, m.screenCtx.Done())}
	if m.workouts.state.Loading && !wasLoading {
		cmds = append(cmds, m.workouts.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleWorkoutsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := &m.workouts
	switch {
	case key.Matches(msg, m.keys.Up):
		w.move(-1)
	case key.Matches(msg, m.keys.Down):
		w.move(1)
	case key.Matches(msg, m.keys.Top):
		w.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		w.selected = len(w.items()) - 1
		w.clamp()
	case key.Matches(msg, m.keys.Retry):
		w.refetch(m.screenCtx, time.Now())
	case key.Matches(msg, m.keys.Book):
		workout, ok := w.current()
		if !ok {
			return m, nil
		}
		if st := w.rows[workout.ID]; st.status == rowBooking || st.status == rowBooked {
			return m, nil
		}
		w.rows[workout.ID] = rowState{status: rowBooking}
		m.logger.Info().Str("workout_id", workout.ID).Msg("booking workout")
		return m, bookCmd(m.screenCtx, m.gen, m.services, m.session, workout.ID)
	}
	return m, nil
}

func (m Model) handleBookResult(msg bookResultMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen || m.workouts.rows == nil {
		return m, nil
	}
	if msg.err == nil {
		m.workouts.rows[msg.id] = rowState{status: rowBooked}
		m.logger.Info().Str("workout_id", msg.id).Msg("workout booked")
		m.setToast(gym.MsgBooked, toastSuccess)
		return m, nil
	}
	if errors.Is(msg.err, context.Canceled) {
		delete(m.workouts.rows, msg.id)
		return m, nil
	}

	m.logger.Warn().Err(msg.err).Str("workout_id", msg.id).Msg("booking failed")
	text := msg.err.Error()
	if f, ok := gym.AsFailure(msg.err); ok {
		text = f.Toast
	}
	m.workouts.rows[msg.id] = rowState{status: rowFailed, err: text}
	return m, nil
}

func bookCmd(ctx context.Context, gen int, services *gym.Services, store session.Store, id string) tea.Cmd {
	return func() tea.Msg {
		client := services.Booking()
		defer client.Detach()
		return bookResultMsg{gen: gen, id: id, err: gym.Book(ctx, client, store, id)}
	}
}

func (w workoutsModel) updateSpinner(msg tea.Msg) (workoutsModel, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok || !w.state.Loading {
		return w, nil
	}
	var cmd tea.Cmd
	w.spinner, cmd = w.spinner.Update(msg)
	return w, cmd
}

func (w workoutsModel) items() []gym.Workout {
	if w.state.Data == nil {
		return nil
	}
	return *w.state.Data
}

func (w workoutsModel) current() (gym.Workout, bool) {
	items := w.items()
	if w.selected < 0 || w.selected >= len(items) {
		return gym.Workout{}, false
	}
	return items[w.selected], true
}

func (w *workoutsModel) move(delta int) {
	w.selected += delta
	w.clamp()
}

func (w *workoutsModel) clamp() {
	n := len(w.items())
	if w.selected >= n {
		w.selected = n - 1
	}
	if w.selected < 0 {
		w.selected = 0
	}
}

// due reports whether an automatic refresh should start at now.
func (w workoutsModel) due(now time.Time, every time.Duration) bool {
	if w.client == nil || every <= 0 || w.state.Loading {
		return false
	}
	return now.Sub(w.lastFetch) >= every
}

func (w *workoutsModel) refetch(ctx context.Context, now time.Time) {
	if w.client == nil {
		return
	}
	w.client.Refetch(ctx)
	w.lastFetch = now
}

func (w workoutsModel) view(styles Styles, width int) string {
	var b strings.Builder

	if w.state.Error != "" {
		banner := fmt.Sprintf("Failed to load workouts: %s  (r to retry)", w.state.Error)
		b.WriteString(styles.Banner.Width(width).Render(banner))
		b.WriteString("\n")
	}

	items := w.items()
	if w.state.Loading {
		b.WriteString(w.spinner.View() + " " + styles.MutedText.Render("Loading workouts..."))
		b.WriteString("\n")
	}

	if len(items) == 0 {
		if w.state.Error == "" && !w.state.Loading {
			b.WriteString(styles.MutedText.Render("No workouts found."))
		}
		return b.String()
	}

	b.WriteString(w.table(styles, width))
	if !w.state.UpdatedAt.IsZero() {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("Updated " + w.state.UpdatedAt.Format("15:04:05")))
	}
	return b.String()
}

func (w workoutsModel) table(styles Styles, width int) string {
	compact := width < LayoutCompactWidth
	headers := []string{"Title", "Location", "Start time", "Instructor", ""}
	if compact {
		headers = []string{"Title", "Start time", "Instructor", ""}
	}

	items := w.items()
	rows := make([][]string, 0, len(items))
	for _, workout := range items {
		title := truncate(workout.Title, 32)
		action := w.actionLabel(workout.ID)
		if compact {
			rows = append(rows, []string{title, workout.FormatStart(), truncate(workout.Instructor, 18), action})
			continue
		}
		rows = append(rows, []string{title, truncate(workout.Location, 24), workout.FormatStart(), truncate(workout.Instructor, 24), action})
	}

	actionCol := len(headers) - 1
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Table).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return cell.Inherit(styles.AccentText).Bold(true)
			}
			if row == w.selected {
				cell = cell.Inherit(styles.Selected)
			} else {
				cell = cell.Inherit(styles.Text)
			}
			if col == actionCol && row >= 0 && row < len(items) {
				switch w.rows[items[row].ID].status {
				case rowBooked:
					return cell.Inherit(styles.SuccessText)
				case rowFailed:
					return cell.Inherit(styles.DangerText)
				}
			}
			return cell
		}).
		String()
}

func (w workoutsModel) actionLabel(id string) string {
	st := w.rows[id]
	switch st.status {
	case rowBooking:
		return "Booking..."
	case rowBooked:
		return gym.MsgBooked
	case rowFailed:
		return truncate(st.err, 28)
	}
	return "Book"
}
