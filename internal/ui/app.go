package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/logscope/internal/logapi"
	"github.com/five82/logscope/internal/logx"
	"github.com/five82/logscope/internal/prefs"
	"github.com/five82/logscope/internal/session"
	"github.com/five82/logscope/internal/state"
)

// Controller is the set of user intents the UI forwards to the session
// controller.
type Controller interface {
	SelectStream(name string) error
	SetTailing(on bool) error
	SetBufferLimit(n int) error
	SubmitSearch(rng logapi.TimeRange, term string) error
	ClearSearch() error
}

// Options configures the UI.
type Options struct {
	Store      *state.Store
	Controller Controller
	Reload     func(context.Context) error // refetches the stream list
	Server     string
	LogPath    string
	ThemeName  string
	PrefsPath  string
}

const (
	paneStreams = iota
	paneLogs
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	ctrl      Controller
	reload    func(context.Context) error
	server    string
	logPath   string
	prefsPath string

	// UI state
	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
	height  int
	ready   bool
	focus   int

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Streams pane
	streamCursor int
	reloading    bool

	// Log pane
	follow          bool
	logViewport     viewport.Model
	renderedVersion uint64

	// Overlays
	search     searchForm
	showSearch bool
	showHelp   bool

	// Transient message shown in the banner until the next key press
	notice string

	clock func() time.Time
}

// New creates a new Bubble Tea model.
func New(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	theme := GetTheme(themeName)
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Warning))

	return Model{
		ctx:       ctx,
		store:     opts.Store,
		ctrl:      opts.Controller,
		reload:    opts.Reload,
		server:    opts.Server,
		logPath:   opts.LogPath,
		prefsPath: prefsPath,
		theme:     theme,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		focus:     paneStreams,
		follow:    true,
		search:    newSearchForm(),
		clock:     time.Now,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store), waitForUpdateCmd(m.ctx, m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.help.Width = m.width
		m.search.setWidth(m.searchModalWidth() - 6)
		m.updateLogViewport()
		return m, nil

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case storeUpdatedMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, waitForUpdateCmd(m.ctx, m.store)

	case reloadDoneMsg:
		m.reloading = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
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
	if m.showSearch {
		return m.renderSearch()
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderStreams(m.bodyHeight()),
		m.renderLogs(),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderBanner(),
		body,
		m.renderCommandBar(),
	)
}

// bodyHeight is the height left for the panes below the header, banner and
// command bar.
func (m Model) bodyHeight() int {
	return max(m.height-3, 4)
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.lastUpdated = m.now()
	m.syncStreamCursor()
	if m.ready {
		m.updateLogViewport()
	}
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.showSearch {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleSearchKey(msg)
	}

	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning))
		m.renderedVersion = 0
		m.updateLogViewport()
		if m.prefsPath != "" {
			if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
				logx.Ctx(m.ctx).Warn("save prefs failed", "error", err)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		if m.focus == paneStreams {
			m.focus = paneLogs
		} else {
			m.focus = paneStreams
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if m.reloading || m.reload == nil {
			return m, nil
		}
		m.reloading = true
		return m, tea.Batch(reloadCmd(m.ctx, m.reload), m.spinner.Tick)

	case key.Matches(msg, m.keys.ToggleTail):
		on := !m.snapshot.Session.Tailing
		// A failed tail is restarted by enabling it again.
		if m.snapshot.Session.Mode == session.ModeTailing && m.snapshot.Session.Status == session.StatusError {
			on = true
		}
		if on {
			m.follow = true
		}
		m.runIntent(func() error { return m.ctrl.SetTailing(on) })
		return m, nil

	case key.Matches(msg, m.keys.CycleLimit):
		next := nextLimit(m.snapshot.Session.Limit)
		m.runIntent(func() error { return m.ctrl.SetBufferLimit(next) })
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.openSearch()
		return m, nil

	case key.Matches(msg, m.keys.ClearSearch):
		m.runIntent(m.ctrl.ClearSearch)
		return m, nil

	case key.Matches(msg, m.keys.ToggleFollow):
		m.follow = !m.follow
		if m.follow {
			m.logViewport.GotoBottom()
		}
		return m, nil
	}

	if m.focus == paneStreams {
		return m.handleStreamsKey(msg)
	}
	return m.handleLogsKey(msg)
}

func (m Model) handleStreamsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.moveStreamCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveStreamCursor(-1)
	case key.Matches(msg, m.keys.Top):
		m.streamCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.streamCursor = len(m.streamItems()) - 1
	case key.Matches(msg, m.keys.Select):
		name := m.selectedStream()
		m.runIntent(func() error { return m.ctrl.SelectStream(name) })
	case key.Matches(msg, m.keys.ClearStream):
		m.streamCursor = 0
		m.runIntent(func() error { return m.ctrl.SelectStream("") })
	}
	return m, nil
}

// runIntent forwards an intent to the controller and turns a refusal into a
// notice. The resulting state arrives through the store.
func (m *Model) runIntent(fn func() error) {
	if m.ctrl == nil {
		return
	}
	err := fn()
	switch {
	case err == nil, errors.Is(err, session.ErrClosed):
	case errors.Is(err, session.ErrNoStream):
		m.notice = "select a stream first"
	default:
		m.notice = err.Error()
	}
}

func (m Model) now() time.Time {
	if m.clock == nil {
		return time.Now()
	}
	return m.clock()
}

type snapshotMsg state.Snapshot

type storeUpdatedMsg state.Snapshot

type reloadDoneMsg struct{ err error }

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// waitForUpdateCmd blocks until the store changes. Each storeUpdatedMsg
// re-arms it, so at most one waiter is outstanding.
func waitForUpdateCmd(ctx context.Context, store *state.Store) tea.Cmd {
	updates := store.Updates()
	return func() tea.Msg {
		select {
		case <-updates:
			return storeUpdatedMsg(store.Snapshot())
		case <-ctx.Done():
			return nil
		}
	}
}

func reloadCmd(ctx context.Context, reload func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return reloadDoneMsg{err: reload(ctx)}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		return errors.New("ui requires a data store")
	}
	if opts.Controller == nil {
		return errors.New("ui requires a session controller")
	}

	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
