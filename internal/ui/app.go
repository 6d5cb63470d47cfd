package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dinotail/dinotail/internal/logging"
	"github.com/dinotail/dinotail/internal/logtail"
	"github.com/dinotail/dinotail/internal/pager"
	"github.com/dinotail/dinotail/internal/prefs"
	"github.com/dinotail/dinotail/internal/querylog"
	"github.com/dinotail/dinotail/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewLog View = iota
	ViewCache
	ViewStatus
)

var viewOrder = []View{ViewLog, ViewCache, ViewStatus}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Session   *pager.Session
	Store     *state.Store
	Refresh   time.Duration
	ThemeName string
	Prefs     prefs.Prefs
	PrefsPath string
	Source    string // shown in the header, e.g. "live 127.0.0.1:8553"
	Logger    *logging.Logger
	LogFile   string // tailed in the status view
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	session   *pager.Session
	store     *state.Store
	refresh   time.Duration
	prefs     prefs.Prefs
	prefsPath string
	source    string
	log       *logging.Logger
	logFile   string
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	notice      string // transient warning shown in the header

	// Data state
	records     []querylog.Record
	stats       pager.Stats
	snapshot    state.Snapshot
	lastUpdated time.Time
	logLines    []string
	logErr      error
	logReadAt   time.Time

	// Panels
	logViewport    viewport.Model
	cacheViewport  viewport.Model
	statusViewport viewport.Model

	// Help overlay
	showHelp bool

	// Filter modal
	showFilters    bool
	filterInputs   []textinput.Model
	filterFocusIdx int
	filterErr      error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = DefaultRefresh
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = opts.Prefs.Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	m := Model{
		ctx:         ctx,
		session:     opts.Session,
		store:       opts.Store,
		refresh:     refresh,
		prefs:       opts.Prefs,
		prefsPath:   prefsPath,
		source:      opts.Source,
		log:         logger.WithComponent("ui"),
		logFile:     opts.LogFile,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewLog,
	}
	m.prefs.Theme = m.theme.Name
	m.initFilterInputs()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(m.refresh),
		m.refreshCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizePanels()
		m.updateLogViewport()
		m.updateCacheViewport()
		m.updateStatusViewport()
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), tickCmd(m.refresh))

	case refreshMsg:
		if msg.changed {
			m.records = msg.records
		}
		m.stats = msg.stats
		m.snapshot = msg.snapshot
		m.lastUpdated = time.Now()
		if msg.logRead {
			m.logLines, m.logErr = msg.logLines, msg.logErr
			m.logReadAt = m.lastUpdated
		}
		if msg.changed {
			m.updateLogViewport()
		}
		m.updateCacheViewport()
		m.updateStatusViewport()
		return m, nil
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
	if m.showFilters {
		return m.renderFilters()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.showFilters {
		return m.handleFiltersKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.currentView = cycleView(m.currentView, 1)
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.currentView = cycleView(m.currentView, -1)
		return m, nil

	case key.Matches(msg, m.keys.ViewLog):
		m.currentView = ViewLog
		return m, nil

	case key.Matches(msg, m.keys.ViewCache):
		m.currentView = ViewCache
		return m, nil

	case key.Matches(msg, m.keys.ViewStatus):
		m.currentView = ViewStatus
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewLog
		m.notice = ""
		return m, nil
	}

	switch m.currentView {
	case ViewCache:
		return m, scrollViewport(&m.cacheViewport, msg, m.keys)
	case ViewStatus:
		return m, scrollViewport(&m.statusViewport, msg, m.keys)
	default:
		return m.handleLogKey(msg)
	}
}

// scrollViewport applies the shared scrolling bindings to a panel.
func scrollViewport(vp *viewport.Model, msg tea.KeyMsg, keys keyMap) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Down):
		vp.ScrollDown(1)
	case key.Matches(msg, keys.Up):
		vp.ScrollUp(1)
	case key.Matches(msg, keys.HalfPageDown):
		vp.HalfPageDown()
	case key.Matches(msg, keys.HalfPageUp):
		vp.HalfPageUp()
	case key.Matches(msg, keys.PageForward):
		vp.PageDown()
	case key.Matches(msg, keys.PageBack):
		vp.PageUp()
	}
	return nil
}

func cycleView(current View, step int) View {
	for i, v := range viewOrder {
		if v == current {
			return viewOrder[(i+step+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewLog
}

// savePrefs persists preferences, surfacing failures in the header.
func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn("save preferences failed", "path", m.prefsPath, "error", err)
		m.notice = "prefs not saved"
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCache:
		return m.renderCache()
	case ViewStatus:
		return m.renderStatus()
	default:
		return m.renderLog()
	}
}

// contentHeight is the space left below the header and command bar, minus
// the status line under each panel.
func (m Model) contentHeight() int {
	return m.height - 3
}

// Messages

type tickMsg time.Time

type refreshMsg struct {
	records  []querylog.Record
	changed  bool
	stats    pager.Stats
	snapshot state.Snapshot
	logRead  bool
	logLines []string
	logErr   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshCmd reads the session and the status store. The session only
// recomputes its view when something changed since the last read. The log
// file is re-read only while the status view is open.
func (m Model) refreshCmd() tea.Cmd {
	session, store := m.session, m.store
	logFile := ""
	if m.currentView == ViewStatus && time.Since(m.logReadAt) >= logTailEvery {
		logFile = m.logFile
	}
	return func() tea.Msg {
		var msg refreshMsg
		if session != nil {
			msg.records, msg.changed = session.View()
			msg.stats = session.Stats()
		}
		if store != nil {
			msg.snapshot = store.Snapshot()
		}
		if logFile != "" {
			msg.logRead = true
			msg.logLines, msg.logErr = logtail.Read(logFile, logTailLines)
		}
		return msg
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		return nil
	}
	return err
}
