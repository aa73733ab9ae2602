package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/patrol/internal/logtail"
	"github.com/five82/patrol/internal/poller"
	"github.com/five82/patrol/internal/prefs"
	"github.com/five82/patrol/internal/state"
	"github.com/five82/patrol/internal/view"
	"github.com/five82/patrol/internal/violations"
)

// View represents the current active view.
type View int

const (
	ViewList View = iota
	ViewLogs
)

// Refresher is the part of the poller the UI drives.
type Refresher interface {
	Refresh(ctx context.Context) error
	Status() poller.Status
	DismissError()
}

// StatusSetter changes the review status of one record.
type StatusSetter interface {
	SetStatus(ctx context.Context, id violations.ID, status violations.Status) error
}

// Options configures the UI.
type Options struct {
	Context      context.Context
	Store        *state.Store
	Poller       Refresher
	Mutator      StatusSetter
	ThemeName    string
	StatusFilter string // initial status filter; "all" when empty or invalid
	PrefsPath    string
	LogFile      string
	Tick         time.Duration // how often the store is re-read
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	poller    Refresher
	mutator   StatusSetter
	prefsPath string
	logFile   string
	tick      time.Duration
	now       func() time.Time

	// UI state
	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// Data state
	snapshot   state.Snapshot
	pollStatus poller.Status
	criteria   view.Criteria
	derived    view.DerivedView
	cameras    []string

	// Selection follows the record id, not the row.
	selectedRow int
	selectedID  violations.ID
	pending     map[violations.ID]violations.Status

	// Search
	searching    bool
	searchInput  textinput.Model
	searchBefore string

	// Log pane
	logViewport viewport.Model
	logEntries  []logtail.Entry
	logErr      error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	criteria := view.DefaultCriteria()
	if status, err := view.ParseStatusFilter(opts.StatusFilter); err == nil {
		criteria.Status = status
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "plate or camera"
	ti.CharLimit = 64

	return Model{
		ctx:         ctx,
		store:       opts.Store,
		poller:      opts.Poller,
		mutator:     opts.Mutator,
		prefsPath:   prefsPath,
		logFile:     opts.LogFile,
		tick:        tick,
		now:         time.Now,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.ThemeName),
		currentView: ViewList,
		criteria:    criteria,
		pending:     make(map[violations.ID]violations.Status),
		searchInput: ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.tick), m.fetchSnapshotCmd())
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
			m.logViewport = viewport.New(0, 0)
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(msg.snapshot, msg.status)
		return m, nil

	case refreshDoneMsg:
		// Failures are already recorded by the poller and shown from its status.
		return m, m.fetchSnapshotCmd()

	case statusDoneMsg:
		// A failed write is logged by the mutator and deliberately not shown.
		delete(m.pending, msg.id)
		return m, m.fetchSnapshotCmd()

	case logsMsg:
		m.logEntries = msg.entries
		m.logErr = msg.err
		m.updateLogViewport()
		return m, nil
	}

	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
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
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		if m.currentView == ViewLogs {
			m.currentView = ViewList
			return m, nil
		}
		m.currentView = ViewLogs
		m.updateLogViewport()
		return m, m.readLogsCmd()

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewList
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.refreshCmd(), m.fetchSnapshotCmd())

	case key.Matches(msg, m.keys.DismissError):
		if m.poller != nil {
			m.poller.DismissError()
			m.pollStatus = m.poller.Status()
		}
		return m, nil
	}

	if m.currentView == ViewLogs {
		return m.handleLogsKey(msg)
	}
	return m.handleListKey(msg)
}

// handleListKey processes keys for the violation list.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.searchBefore = m.criteria.Search
		m.searchInput.SetValue(m.criteria.Search)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleStatus):
		m.criteria.Status = view.NextStatus(m.criteria.Status)
		m.recompute()
		m.savePrefs()

	case key.Matches(msg, m.keys.CycleCamera):
		m.criteria.Camera = view.NextCamera(m.criteria.Camera, m.cameras)
		m.recompute()

	case key.Matches(msg, m.keys.ClearFilters):
		m.criteria = view.DefaultCriteria()
		m.searchInput.SetValue("")
		m.recompute()

	case key.Matches(msg, m.keys.MarkNew):
		return m, m.setStatusCmd(violations.StatusNew)
	case key.Matches(msg, m.keys.MarkReviewed):
		return m, m.setStatusCmd(violations.StatusReviewed)
	case key.Matches(msg, m.keys.MarkResolved):
		return m, m.setStatusCmd(violations.StatusResolved)

	case key.Matches(msg, m.keys.Down):
		m.selectRow(m.selectedRow + 1)
	case key.Matches(msg, m.keys.Up):
		m.selectRow(m.selectedRow - 1)
	case key.Matches(msg, m.keys.Top):
		m.selectRow(0)
	case key.Matches(msg, m.keys.Bottom):
		m.selectRow(len(m.derived.Filtered) - 1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectRow(m.selectedRow + m.halfPage())
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectRow(m.selectedRow - m.halfPage())
	}
	return m, nil
}

// handleSearchKey edits the search criterion. The list narrows as the
// operator types; esc restores the previous search.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.searchInput.Blur()
		return m, nil

	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue(m.searchBefore)
		m.criteria.Search = m.searchBefore
		m.recompute()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if value := m.searchInput.Value(); value != m.criteria.Search {
		m.criteria.Search = value
		m.recompute()
	}
	return m, cmd
}

// handleTick re-reads the store and schedules the next tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.fetchSnapshotCmd(), tickCmd(m.tick)}
	if m.currentView == ViewLogs {
		cmds = append(cmds, m.readLogsCmd())
	}
	return m, tea.Batch(cmds...)
}

// applySnapshot installs a fresh store snapshot and poller status.
func (m *Model) applySnapshot(snap state.Snapshot, status poller.Status) {
	m.snapshot = snap
	m.pollStatus = status
	m.recompute()
}

// recompute re-derives the visible list and keeps the selection on the same
// record when it is still visible.
func (m *Model) recompute() {
	m.cameras = view.Cameras(m.snapshot.Records)
	m.derived = view.Derive(m.snapshot.Records, m.criteria)

	rows := m.derived.Filtered
	if len(rows) == 0 {
		m.selectedRow = 0
		return
	}
	if m.selectedID != "" {
		for i, v := range rows {
			if v.ID == m.selectedID {
				m.selectedRow = i
				return
			}
		}
	}
	m.selectRow(m.selectedRow)
}

// selectRow moves the cursor, clamped to the visible rows.
func (m *Model) selectRow(row int) {
	rows := m.derived.Filtered
	if len(rows) == 0 {
		m.selectedRow = 0
		return
	}
	row = min(max(row, 0), len(rows)-1)
	m.selectedRow = row
	m.selectedID = rows[row].ID
}

// selected returns the record under the cursor.
func (m Model) selected() *violations.Violation {
	rows := m.derived.Filtered
	if m.selectedRow < 0 || m.selectedRow >= len(rows) {
		return nil
	}
	v := rows[m.selectedRow]
	return &v
}

func (m Model) halfPage() int {
	return max((m.height-chromeLines)/2, 1)
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{
		Theme:        m.theme.Name,
		StatusFilter: string(m.criteria.Status),
	})
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	contentHeight := m.height - chromeLines
	if banner := m.renderErrorBanner(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
		contentHeight--
	}

	switch m.currentView {
	case ViewLogs:
		b.WriteString(m.renderLogs(contentHeight))
	default:
		b.WriteString(m.renderList(contentHeight))
	}
	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	snapshot state.Snapshot
	status   poller.Status
}

type refreshDoneMsg struct{ err error }

type statusDoneMsg struct {
	id  violations.ID
	err error
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchSnapshotCmd() tea.Cmd {
	store, p := m.store, m.poller
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		msg := snapshotMsg{snapshot: store.Snapshot()}
		if p != nil {
			msg.status = p.Status()
		}
		return msg
	}
}

func (m Model) refreshCmd() tea.Cmd {
	ctx, p := m.ctx, m.poller
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		return refreshDoneMsg{err: p.Refresh(ctx)}
	}
}

// setStatusCmd writes status for the selected record. Nothing local changes
// until the resync that follows the write lands in the store.
func (m Model) setStatusCmd(status violations.Status) tea.Cmd {
	v := m.selected()
	if v == nil || m.mutator == nil {
		return nil
	}
	if _, busy := m.pending[v.ID]; busy {
		return nil
	}
	if v.Status == status {
		return nil
	}
	id, ctx, mut := v.ID, m.ctx, m.mutator
	m.pending[id] = status
	return func() tea.Msg {
		return statusDoneMsg{id: id, err: mut.SetStatus(ctx, id, status)}
	}
}

func (m Model) readLogsCmd() tea.Cmd {
	path := m.logFile
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		return logsMsg{entries: logtail.ParseLines(lines), err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	opts.Context = ctx
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
