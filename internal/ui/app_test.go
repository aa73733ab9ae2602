package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/patrol/internal/poller"
	"github.com/five82/patrol/internal/prefs"
	"github.com/five82/patrol/internal/state"
	"github.com/five82/patrol/internal/view"
	"github.com/five82/patrol/internal/violations"
)

type fakePoller struct {
	mu        sync.Mutex
	status    poller.Status
	refreshes int
	dismissed int
}

func (f *fakePoller) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return nil
}

func (f *fakePoller) Status() poller.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakePoller) DismissError() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissed++
	f.status.LastError = nil
}

type statusCall struct {
	id     violations.ID
	status violations.Status
}

type fakeMutator struct {
	mu    sync.Mutex
	calls []statusCall
	err   error
}

func (f *fakeMutator) SetStatus(_ context.Context, id violations.ID, status violations.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, statusCall{id: id, status: status})
	return f.err
}

func record(id, camera string, plate *string, status violations.Status, minutesAgo int) violations.Violation {
	return violations.Violation{
		ID:         violations.ID(id),
		CameraID:   camera,
		PlateText:  plate,
		Confidence: violations.FloatPtr(0.8),
		Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(-time.Duration(minutesAgo) * time.Minute),
		Status:     status,
	}
}

func sampleRecords() []violations.Violation {
	return []violations.Violation{
		record("1", "cam-north", violations.StringPtr("ABC123"), violations.StatusNew, 1),
		record("2", "cam-south", violations.StringPtr(violations.PlateNotDetected), violations.StatusReviewed, 2),
		record("3", "cam-north", violations.StringPtr("XYZ789"), violations.StatusNew, 3),
		record("4", "cam-east", nil, violations.StatusResolved, 4),
	}
}

type harness struct {
	store   *state.Store
	poller  *fakePoller
	mutator *fakeMutator
	prefs   string
}

func newHarness(t *testing.T, records []violations.Violation) (*harness, Model) {
	t.Helper()
	h := &harness{
		store:   &state.Store{},
		poller:  &fakePoller{},
		mutator: &fakeMutator{},
		prefs:   filepath.Join(t.TempDir(), "prefs.toml"),
	}
	h.store.Replace(records)

	m := New(Options{
		Store:     h.store,
		Poller:    h.poller,
		Mutator:   h.mutator,
		ThemeName: "Nightfox",
		PrefsPath: h.prefs,
	})
	m = step(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	m = h.sync(t, m)
	return h, m
}

// sync delivers a fresh snapshot to the model, as a tick would.
func (h *harness) sync(t *testing.T, m Model) Model {
	t.Helper()
	cmd := m.fetchSnapshotCmd()
	if cmd == nil {
		t.Fatalf("fetchSnapshotCmd returned nil")
	}
	return step(t, m, cmd())
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, keys string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return next.(Model), cmd
}

func visibleIDs(m Model) []violations.ID {
	out := make([]violations.ID, 0, len(m.derived.Filtered))
	for _, v := range m.derived.Filtered {
		out = append(out, v.ID)
	}
	return out
}

func TestModel_SelectionFollowsIDAcrossRefresh(t *testing.T) {
	h, m := newHarness(t, sampleRecords())

	m, _ = press(t, m, "j")
	m, _ = press(t, m, "j")
	if m.selectedID != "3" {
		t.Fatalf("selectedID = %q, want 3", m.selectedID)
	}

	// A newer record arrives at the top and shifts every row down.
	h.store.Replace(append([]violations.Violation{
		record("5", "cam-west", violations.StringPtr("NEW555"), violations.StatusNew, 0),
	}, sampleRecords()...))
	m = h.sync(t, m)

	if m.selectedID != "3" || m.selectedRow != 3 {
		t.Fatalf("selection = (%q, row %d), want (3, row 3)", m.selectedID, m.selectedRow)
	}
}

func TestModel_SelectionClampsWhenRecordDisappears(t *testing.T) {
	h, m := newHarness(t, sampleRecords())
	m, _ = press(t, m, "G")
	if m.selectedID != "4" {
		t.Fatalf("selectedID = %q, want 4", m.selectedID)
	}

	h.store.Replace(sampleRecords()[:2])
	m = h.sync(t, m)

	if m.selectedRow != 1 || m.selectedID != "2" {
		t.Fatalf("selection = (%q, row %d), want (2, row 1)", m.selectedID, m.selectedRow)
	}
}

func TestModel_StatusFilterCyclesAndPersists(t *testing.T) {
	h, m := newHarness(t, sampleRecords())

	m, _ = press(t, m, "f")
	if m.criteria.Status != view.StatusFilter(violations.StatusNew) {
		t.Fatalf("status filter = %q, want new", m.criteria.Status)
	}
	if got := visibleIDs(m); len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Fatalf("visible = %v, want [1 3]", got)
	}
	// Statistics describe the whole page regardless of filters.
	want := view.Stats{Total: 4, New: 2, NoPlate: 1, Detected: 2}
	if m.derived.Stats != want {
		t.Fatalf("stats = %+v, want %+v", m.derived.Stats, want)
	}

	if got := prefs.Load(h.prefs).StatusFilter; got != "new" {
		t.Fatalf("saved status filter = %q, want new", got)
	}
}

func TestModel_InitialStatusFilterFromPrefs(t *testing.T) {
	store := &state.Store{}
	store.Replace(sampleRecords())
	m := New(Options{Store: store, StatusFilter: "resolved", PrefsPath: filepath.Join(t.TempDir(), "p.toml")})
	m = step(t, m, m.fetchSnapshotCmd()())

	if got := visibleIDs(m); len(got) != 1 || got[0] != "4" {
		t.Fatalf("visible = %v, want [4]", got)
	}

	bad := New(Options{StatusFilter: "bogus", PrefsPath: filepath.Join(t.TempDir(), "p.toml")})
	if bad.criteria.Status != view.StatusAll {
		t.Fatalf("invalid stored filter = %q, want all", bad.criteria.Status)
	}
}

func TestModel_CameraFilterAndClear(t *testing.T) {
	_, m := newHarness(t, sampleRecords())

	m, _ = press(t, m, "c")
	if m.criteria.Camera != "cam-east" {
		t.Fatalf("camera = %q, want cam-east (first in sorted order)", m.criteria.Camera)
	}
	if got := visibleIDs(m); len(got) != 1 || got[0] != "4" {
		t.Fatalf("visible = %v, want [4]", got)
	}

	m, _ = press(t, m, "C")
	if !m.criteria.IsDefault() || len(m.derived.Filtered) != 4 {
		t.Fatalf("after clear criteria = %+v, visible = %d", m.criteria, len(m.derived.Filtered))
	}
}

func TestModel_SearchNarrowsWhileTypingAndEscRestores(t *testing.T) {
	_, m := newHarness(t, sampleRecords())

	m, _ = press(t, m, "/")
	if !m.searching {
		t.Fatalf("searching = false after /")
	}
	m, _ = press(t, m, "xyz")
	if m.criteria.Search != "xyz" {
		t.Fatalf("search = %q, want xyz", m.criteria.Search)
	}
	if got := visibleIDs(m); len(got) != 1 || got[0] != "3" {
		t.Fatalf("visible = %v, want [3]", got)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.searching || m.criteria.Search != "" || len(m.derived.Filtered) != 4 {
		t.Fatalf("after esc searching=%v search=%q visible=%d", m.searching, m.criteria.Search, len(m.derived.Filtered))
	}

	m, _ = press(t, m, "/")
	m, _ = press(t, m, "north")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.searching || m.criteria.Search != "north" || len(m.derived.Filtered) != 2 {
		t.Fatalf("after enter searching=%v search=%q visible=%d", m.searching, m.criteria.Search, len(m.derived.Filtered))
	}
}

func TestModel_SetStatusWritesSelectedRecordWithoutLocalPatch(t *testing.T) {
	h, m := newHarness(t, sampleRecords())

	m, cmd := press(t, m, "2")
	if cmd == nil {
		t.Fatalf("status key returned no command")
	}
	if m.pending["1"] != violations.StatusReviewed {
		t.Fatalf("pending = %v, want 1 -> reviewed", m.pending)
	}
	if m.derived.Filtered[0].Status != violations.StatusNew {
		t.Fatalf("row status changed locally to %q", m.derived.Filtered[0].Status)
	}

	// A second press while the write is outstanding is ignored.
	if _, again := press(t, m, "3"); again != nil {
		t.Fatalf("second status key returned a command while pending")
	}

	msg := cmd()
	if len(h.mutator.calls) != 1 || h.mutator.calls[0] != (statusCall{id: "1", status: violations.StatusReviewed}) {
		t.Fatalf("mutator calls = %+v", h.mutator.calls)
	}

	m = step(t, m, msg)
	if _, ok := m.pending["1"]; ok {
		t.Fatalf("pending not cleared after completion")
	}
}

func TestModel_FailedWriteIsNotSurfaced(t *testing.T) {
	h, m := newHarness(t, sampleRecords())
	h.mutator.err = errors.New("mutation failed: update returned status 500")

	m, cmd := press(t, m, "3")
	m = step(t, m, cmd())

	if len(m.pending) != 0 {
		t.Fatalf("pending = %v, want empty", m.pending)
	}
	if m.pollStatus.LastError != nil || m.renderErrorBanner() != "" {
		t.Fatalf("mutation failure surfaced as fetch error")
	}
	if m.derived.Filtered[0].Status != violations.StatusNew {
		t.Fatalf("row status = %q, want unchanged new", m.derived.Filtered[0].Status)
	}
}

func TestModel_SameStatusIsNotWritten(t *testing.T) {
	_, m := newHarness(t, sampleRecords())
	if _, cmd := press(t, m, "1"); cmd != nil {
		t.Fatalf("setting the current status returned a command")
	}
}

func TestModel_ErrorBannerAndDismiss(t *testing.T) {
	h, m := newHarness(t, sampleRecords())
	h.poller.status = poller.Status{
		LastError:           &violations.APIError{Op: "list", StatusCode: 500},
		ConsecutiveFailures: 1,
	}
	m = h.sync(t, m)

	banner := m.renderErrorBanner()
	if !strings.Contains(banner, "SERVER ERROR") || !strings.Contains(banner, "x to dismiss") {
		t.Fatalf("banner = %q", banner)
	}
	if len(m.derived.Filtered) != 4 {
		t.Fatalf("visible = %d, want previous snapshot kept", len(m.derived.Filtered))
	}

	m, _ = press(t, m, "x")
	if h.poller.dismissed != 1 {
		t.Fatalf("DismissError calls = %d, want 1", h.poller.dismissed)
	}
	if m.renderErrorBanner() != "" {
		t.Fatalf("banner still shown after dismiss")
	}
}

func TestModel_RefreshKeyTriggersPoller(t *testing.T) {
	h, m := newHarness(t, sampleRecords())
	_, cmd := press(t, m, "r")
	if cmd == nil {
		t.Fatalf("refresh key returned no command")
	}
	// tea.Batch wraps the commands; run each one.
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			if c != nil {
				c()
			}
		}
	}
	if h.poller.refreshes != 1 {
		t.Fatalf("refreshes = %d, want 1", h.poller.refreshes)
	}
}

func TestModel_EmptySnapshotIsNotAnError(t *testing.T) {
	_, m := newHarness(t, nil)
	if got := m.emptyMessage(); got != "No violations" {
		t.Fatalf("emptyMessage = %q, want No violations", got)
	}
	if !strings.Contains(m.View(), "No violations") {
		t.Fatalf("View does not mention No violations")
	}
}

func TestModel_BeforeFirstPoll(t *testing.T) {
	m := New(Options{Store: &state.Store{}, PrefsPath: filepath.Join(t.TempDir(), "p.toml")})
	if m.View() != "Loading..." {
		t.Fatalf("View before resize = %q", m.View())
	}
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m = step(t, m, m.fetchSnapshotCmd()())
	if got := m.emptyMessage(); got != "Waiting for the first poll..." {
		t.Fatalf("emptyMessage = %q", got)
	}
}

func TestModel_ThemeCyclePersists(t *testing.T) {
	h, m := newHarness(t, sampleRecords())
	m, _ = press(t, m, "T")
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	if got := prefs.Load(h.prefs).Theme; got != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", got)
	}
}

func TestModel_LogPaneReadsLogFile(t *testing.T) {
	_, m := newHarness(t, sampleRecords())
	m.logFile = filepath.Join(t.TempDir(), "missing.log")

	m, cmd := press(t, m, "l")
	if m.currentView != ViewLogs || cmd == nil {
		t.Fatalf("view = %v, cmd nil = %v", m.currentView, cmd == nil)
	}
	m = step(t, m, cmd())
	if m.logErr != nil || len(m.logEntries) != 0 {
		t.Fatalf("log state = %v, %d entries", m.logErr, len(m.logEntries))
	}

	m, _ = press(t, m, "l")
	if m.currentView != ViewList {
		t.Fatalf("view = %v, want list", m.currentView)
	}
}

func TestModel_HelpOverlay(t *testing.T) {
	_, m := newHarness(t, sampleRecords())
	m, _ = press(t, m, "?")
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help not shown")
	}
	m, _ = press(t, m, "j")
	if m.showHelp {
		t.Fatalf("help still shown after key press")
	}
}

func TestClassifyFetchError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&violations.APIError{StatusCode: 401}, "UNAUTHORIZED"},
		{&violations.APIError{StatusCode: 503}, "SERVER ERROR"},
		{&violations.APIError{StatusCode: 404}, "HTTP 404"},
		{errors.New("dial tcp: connection refused"), "OFFLINE"},
		{errors.New("collection url is not configured"), "NOT CONFIGURED"},
		{context.DeadlineExceeded, "TIMEOUT"},
		{errors.New("weird"), "ERROR"},
	}
	for _, tc := range cases {
		if got := classifyFetchError(tc.err); got != tc.want {
			t.Fatalf("classifyFetchError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
