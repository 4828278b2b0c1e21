package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/coregym/internal/forms"
	"github.com/five82/coregym/internal/gym"
	"github.com/five82/coregym/internal/prefs"
	"github.com/five82/coregym/internal/session"
)

// Screen identifies the page being shown.
type Screen int

const (
	ScreenSignIn Screen = iota
	ScreenRegister
	ScreenWorkouts
	ScreenActivity
)

var screenNames = []string{prefs.ScreenSignIn, prefs.ScreenRegister, prefs.ScreenWorkouts, prefs.ScreenActivity}

// String returns the name stored in preferences.
func (s Screen) String() string {
	if int(s) < len(screenNames) {
		return screenNames[s]
	}
	return "unknown"
}

// Title is the heading shown in the navbar.
func (s Screen) Title() string {
	switch s {
	case ScreenSignIn:
		return "Sign in"
	case ScreenRegister:
		return "Register"
	case ScreenWorkouts:
		return "Workouts"
	case ScreenActivity:
		return "Activity"
	}
	return ""
}

func parseScreen(name string) (Screen, bool) {
	name = prefs.NormalizeScreen(name)
	for i, n := range screenNames {
		if n == name {
			return Screen(i), true
		}
	}
	return ScreenSignIn, false
}

// Options configures the UI.
type Options struct {
	Context      context.Context
	Services     *gym.Services
	Session      session.Store
	Logger       zerolog.Logger
	LogFile      string
	RefreshEvery time.Duration // zero disables workout auto-refresh
	ThemeName    string
	StartScreen  string
	PrefsPath    string
}

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

type toast struct {
	text  string
	kind  toastKind
	until time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	services     *gym.Services
	session      session.Store
	logger       zerolog.Logger
	logFile      string
	prefsPath    string
	refreshEvery time.Duration
	keys         keyMap
	help         help.Model

	// UI state
	theme    Theme
	screen   Screen
	previous Screen
	width    int
	height   int
	ready    bool
	showHelp bool
	toast    toast

	// Signed-in member, empty when signed out
	email string

	// Per-screen lifetime. Leaving a screen cancels screenCtx and bumps gen
	// so results of work started there are dropped.
	gen          int
	screenCtx    context.Context
	cancelScreen context.CancelFunc

	signIn   formModel
	register formModel
	workouts workoutsModel
	activity activityModel

	initCmd tea.Cmd
}

// New creates a new Bubble Tea model and enters the start screen: Workouts
// when a session exists, otherwise Sign in. A saved "activity" start screen
// is honoured either way.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	store := opts.Session
	if store == nil {
		store = session.NewMemory()
	}
	email, _ := session.SignedInEmail(store)

	m := Model{
		ctx:          ctx,
		services:     opts.Services,
		session:      store,
		logger:       opts.Logger,
		logFile:      opts.LogFile,
		prefsPath:    prefsPath,
		refreshEvery: opts.RefreshEvery,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		theme:        GetTheme(themeName),
		email:        email,
	}

	start, _ := parseScreen(prefs.Prefs{LastScreen: opts.StartScreen}.StartScreen(email != ""))
	m.screen = start
	m.previous = start
	m.initCmd = m.switchTo(start)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initCmd, tickCmd(DefaultUIInterval))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.activity.resize(m.width, m.contentHeight())
		m.activity.render(m.theme.Styles())
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case signInDoneMsg:
		return m.handleSignInDone(msg)

	case registerDoneMsg:
		return m.handleRegisterDone(msg)

	case workoutsChangedMsg:
		return m.handleWorkoutsChanged(msg)

	case bookResultMsg:
		return m.handleBookResult(msg)

	case activityMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.activity.load(msg.entries, msg.err)
		m.activity.render(m.theme.Styles())
		return m, nil
	}

	if m.screen == ScreenWorkouts {
		var cmd tea.Cmd
		m.workouts, cmd = m.workouts.updateSpinner(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	content := lipgloss.NewStyle().
		Width(m.width).
		Height(m.contentHeight()).
		MaxHeight(m.contentHeight()).
		Render(m.renderContent())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderNavbar(),
		content,
		m.renderToast(),
		m.renderFooter(),
	)
}

func (m Model) renderContent() string {
	styles := m.theme.Styles()
	switch m.screen {
	case ScreenSignIn:
		return m.center(m.signIn.view(styles))
	case ScreenRegister:
		return m.center(m.register.view(styles))
	case ScreenWorkouts:
		return m.workouts.view(styles, m.width)
	case ScreenActivity:
		return m.activity.view(styles)
	}
	return ""
}

func (m Model) center(s string) string {
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, s)
}

// contentHeight leaves room for the navbar, toast line and footer.
func (m Model) contentHeight() int {
	h := m.height - 3
	if h < 3 {
		return 3
	}
	return h
}

// switchTo leaves the current screen and enters s. Workouts requires a
// signed-in member and falls back to Sign in.
func (m *Model) switchTo(s Screen) tea.Cmd {
	m.leave()
	if s == ScreenWorkouts && m.email == "" {
		s = ScreenSignIn
	}
	if s != m.screen {
		m.previous = m.screen
	}
	m.screen = s
	m.gen++
	m.screenCtx, m.cancelScreen = context.WithCancel(m.ctx)
	m.showHelp = false

	m.logger.Debug().Str("screen", s.String()).Msg("screen entered")

	switch s {
	case ScreenSignIn:
		m.signIn = newSignInForm()
		return m.signIn.focusFirst()
	case ScreenRegister:
		m.register = newRegisterForm()
		return m.register.focusFirst()
	case ScreenWorkouts:
		return m.enterWorkouts()
	case ScreenActivity:
		m.activity = newActivityModel(m.width, m.contentHeight())
		return loadActivityCmd(m.gen, m.logFile)
	}
	return nil
}

// leave cancels everything the current screen started.
func (m *Model) leave() {
	if m.cancelScreen != nil {
		m.cancelScreen()
		m.cancelScreen = nil
	}
	if m.workouts.client != nil {
		m.workouts.client.Detach()
		m.workouts = workoutsModel{}
	}
}

func (m *Model) setToast(text string, kind toastKind) {
	m.toast = toast{text: text, kind: kind, until: time.Now().Add(ToastTTL)}
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}

	switch m.screen {
	case ScreenSignIn, ScreenRegister:
		return m.handleFormKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.activity.render(m.theme.Styles())
		return m, nil
	case key.Matches(msg, m.keys.SignOut) && m.email != "":
		return m.signOut()
	case key.Matches(msg, m.keys.ViewActivity) && m.screen != ScreenActivity:
		cmd := m.switchTo(ScreenActivity)
		return m, cmd
	case key.Matches(msg, m.keys.ViewWorkouts) && m.email != "" && m.screen != ScreenWorkouts:
		cmd := m.switchTo(ScreenWorkouts)
		return m, cmd
	}

	switch m.screen {
	case ScreenWorkouts:
		return m.handleWorkoutsKey(msg)
	case ScreenActivity:
		return m.handleActivityKey(msg)
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := &m.signIn
	if m.screen == ScreenRegister {
		form = &m.register
	}

	switch {
	case key.Matches(msg, m.keys.SwitchForm):
		if m.screen == ScreenSignIn {
			cmd := m.switchTo(ScreenRegister)
			return m, cmd
		}
		cmd := m.switchTo(ScreenSignIn)
		return m, cmd
	case key.Matches(msg, m.keys.FormLogs):
		cmd := m.switchTo(ScreenActivity)
		return m, cmd
	case key.Matches(msg, m.keys.Back):
		if m.screen == ScreenRegister {
			cmd := m.switchTo(ScreenSignIn)
			return m, cmd
		}
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		cmd := form.next()
		return m, cmd
	case key.Matches(msg, m.keys.PrevField):
		cmd := form.prev()
		return m, cmd
	case key.Matches(msg, m.keys.Submit):
		if form.submitting {
			return m, nil
		}
		if m.screen == ScreenSignIn {
			return m.submitSignIn()
		}
		return m.submitRegister()
	}
	cmd := form.update(msg)
	return m, cmd
}

func (m Model) submitSignIn() (tea.Model, tea.Cmd) {
	input := m.signIn.signInForm()
	if errs := forms.Validate(input); errs != nil {
		cmd := m.signIn.setErrors(errs)
		return m, cmd
	}
	m.signIn.submitting = true
	return m, signInCmd(m.screenCtx, m.gen, m.services, m.session, input)
}

func (m Model) submitRegister() (tea.Model, tea.Cmd) {
	input := m.register.registrationForm()
	if errs := forms.Validate(input); errs != nil {
		cmd := m.register.setErrors(errs)
		return m, cmd
	}
	m.register.submitting = true
	return m, registerCmd(m.screenCtx, m.gen, m.services, input)
}

func (m Model) handleSignInDone(msg signInDoneMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		// A late success has already been written to the session.
		if msg.err == nil {
			m.email, _ = session.SignedInEmail(m.session)
		}
		return m, nil
	}
	m.signIn.submitting = false
	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Msg("sign-in failed")
		cmd := m.formError(&m.signIn, msg.err)
		return m, cmd
	}

	m.email = msg.email
	m.logger.Info().Str("email", msg.email).Msg("signed in")
	cmd := m.switchTo(ScreenWorkouts)
	m.setToast(gym.MsgSignedIn, toastSuccess)
	return m, cmd
}

func (m Model) handleRegisterDone(msg registerDoneMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		return m, nil
	}
	m.register.submitting = false
	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Msg("registration failed")
		cmd := m.formError(&m.register, msg.err)
		return m, cmd
	}

	m.logger.Info().Str("email", msg.email).Msg("registered")
	cmd := m.switchTo(ScreenSignIn)
	m.signIn.setValue(forms.FieldEmail, msg.email)
	m.setToast(gym.MsgRegistered, toastSuccess)
	focus := m.signIn.setFocus(1)
	return m, tea.Batch(cmd, focus)
}

// formError shows err on form: validation errors under their fields,
// service failures as a toast plus an optional field message.
func (m *Model) formError(form *formModel, err error) tea.Cmd {
	var fieldErrs forms.FieldErrors
	switch {
	case errors.Is(err, context.Canceled):
		return nil
	case errors.As(err, &fieldErrs):
		return form.setErrors(fieldErrs)
	}
	if f, ok := gym.AsFailure(err); ok {
		m.setToast(f.Toast, toastError)
		if f.Field != "" {
			return form.setError(f.Field, f.FieldMessage)
		}
		return nil
	}
	m.setToast(err.Error(), toastError)
	return nil
}

func (m Model) signOut() (tea.Model, tea.Cmd) {
	if err := gym.SignOut(m.session); err != nil {
		m.logger.Error().Err(err).Msg("sign out failed")
		m.setToast(err.Error(), toastError)
		return m, nil
	}
	m.logger.Info().Str("email", m.email).Msg("signed out")
	m.email = ""
	cmd := m.switchTo(ScreenSignIn)
	m.setToast("Signed out.", toastInfo)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.savePrefs()
	m.leave()
	return m, tea.Quit
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, LastScreen: m.screen.String()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn().Err(err).Msg("save prefs failed")
	}
}

// handleTick expires toasts and drives the periodic refreshes.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(DefaultUIInterval)}

	if m.toast.text != "" && now.After(m.toast.until) {
		m.toast = toast{}
	}

	switch m.screen {
	case ScreenWorkouts:
		if m.workouts.due(now, m.refreshEvery) {
			m.workouts.refetch(m.screenCtx, now)
		}
	case ScreenActivity:
		if m.activity.follow {
			cmds = append(cmds, loadActivityCmd(m.gen, m.logFile))
		}
	}
	return m, tea.Batch(cmds...)
}

// Messages

type tickMsg time.Time

type signInDoneMsg struct {
	gen   int
	email string
	err   error
}

type registerDoneMsg struct {
	gen   int
	email string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func signInCmd(ctx context.Context, gen int, services *gym.Services, store session.Store, input forms.SignInForm) tea.Cmd {
	return func() tea.Msg {
		client := services.SignIn()
		defer client.Detach()
		email, err := gym.SignIn(ctx, client, store, input)
		return signInDoneMsg{gen: gen, email: email, err: err}
	}
}

func registerCmd(ctx context.Context, gen int, services *gym.Services, input forms.RegistrationForm) tea.Cmd {
	return func() tea.Msg {
		client := services.Register()
		defer client.Detach()
		_, err := gym.Register(ctx, client, input)
		return registerDoneMsg{gen: gen, email: input.Payload().Email, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until it exits. Cancelling
// opts.Context stops the program without an error.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Context = ctx

	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.leave()
	}
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
