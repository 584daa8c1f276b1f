package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/logscope/internal/logapi"
	"github.com/five82/logscope/internal/prefs"
	"github.com/five82/logscope/internal/session"
	"github.com/five82/logscope/internal/state"
)

type searchArgs struct {
	rng  logapi.TimeRange
	term string
}

type fakeController struct {
	selected []string
	tailing  []bool
	limits   []int
	searches []searchArgs
	clears   int
	err      error
}

func (f *fakeController) SelectStream(name string) error {
	f.selected = append(f.selected, name)
	return f.err
}

func (f *fakeController) SetTailing(on bool) error {
	f.tailing = append(f.tailing, on)
	return f.err
}

func (f *fakeController) SetBufferLimit(n int) error {
	f.limits = append(f.limits, n)
	return f.err
}

func (f *fakeController) SubmitSearch(rng logapi.TimeRange, term string) error {
	f.searches = append(f.searches, searchArgs{rng: rng, term: term})
	return f.err
}

func (f *fakeController) ClearSearch() error {
	f.clears++
	return f.err
}

var testNow = time.Date(2024, 5, 1, 17, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, ctrl *fakeController) Model {
	t.Helper()
	m := New(context.Background(), Options{
		Store:      &state.Store{},
		Controller: ctrl,
		Server:     "http://127.0.0.1:5000",
		PrefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
	})
	m.clock = func() time.Time { return testNow }
	return update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return out
}

func withSnapshot(t *testing.T, m Model, sess session.Snapshot, streams ...string) Model {
	t.Helper()
	return update(t, m, snapshotMsg(state.Snapshot{
		Streams:    streams,
		HasStreams: true,
		Session:    sess,
	}))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSelectStreamFromPicker(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)
	m = withSnapshot(t, m, session.Snapshot{Limit: 50}, "app", "db")

	m = update(t, m, runes("j"))
	m = update(t, m, runes("j"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(ctrl.selected) != 1 || ctrl.selected[0] != "db" {
		t.Fatalf("selected = %v, want [db]", ctrl.selected)
	}

	m = update(t, m, runes("x"))
	if got := ctrl.selected[len(ctrl.selected)-1]; got != "" {
		t.Fatalf("clear selection sent %q, want empty", got)
	}
	if m.streamCursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.streamCursor)
	}
}

func TestStreamCursorStaysInRange(t *testing.T) {
	m := newTestModel(t, &fakeController{})
	m = withSnapshot(t, m, session.Snapshot{Limit: 50}, "app", "db", "web")
	m = update(t, m, runes("G"))
	if m.streamCursor != 3 {
		t.Fatalf("cursor = %d, want 3", m.streamCursor)
	}

	// The list shrinks after a reload.
	m = withSnapshot(t, m, session.Snapshot{Limit: 50}, "app")
	if m.streamCursor != 1 {
		t.Fatalf("cursor after shrink = %d, want 1", m.streamCursor)
	}
	if got := m.selectedStream(); got != "app" {
		t.Fatalf("selectedStream = %q, want app", got)
	}
}

func TestToggleTail(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)
	m = withSnapshot(t, m, session.Snapshot{Stream: "app", Limit: 50}, "app")

	m = update(t, m, runes("t"))
	m = withSnapshot(t, m, session.Snapshot{
		Mode: session.ModeTailing, Status: session.StatusReady, Stream: "app", Tailing: true, Limit: 50, Version: 2,
	}, "app")
	m = update(t, m, runes("t"))

	want := []bool{true, false}
	if len(ctrl.tailing) != len(want) || ctrl.tailing[0] != want[0] || ctrl.tailing[1] != want[1] {
		t.Fatalf("tailing intents = %v, want %v", ctrl.tailing, want)
	}
}

func TestToggleTailAfterFailureReconnects(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)
	m = withSnapshot(t, m, session.Snapshot{
		Mode:    session.ModeTailing,
		Status:  session.StatusError,
		Stream:  "app",
		Tailing: true,
		Limit:   50,
		Lines:   []string{"kept"},
		Err:     &session.TailError{Stream: "app", Err: logapi.ErrUnexpectedClose},
		Version: 4,
	}, "app")

	if !strings.Contains(m.View(), "t to reconnect") {
		t.Fatalf("view does not offer reconnect:\n%s", m.View())
	}

	update(t, m, runes("t"))
	if len(ctrl.tailing) != 1 || !ctrl.tailing[0] {
		t.Fatalf("tailing intents = %v, want [true]", ctrl.tailing)
	}
}

func TestCycleLimit(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)
	m = withSnapshot(t, m, session.Snapshot{Limit: 50})
	m = update(t, m, runes("l"))
	m = withSnapshot(t, m, session.Snapshot{Limit: 1000, Version: 2})
	update(t, m, runes("l"))

	if len(ctrl.limits) != 2 || ctrl.limits[0] != 100 || ctrl.limits[1] != 50 {
		t.Fatalf("limits = %v, want [100 50]", ctrl.limits)
	}
}

func TestSearchNeedsStream(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)
	m = withSnapshot(t, m, session.Snapshot{Limit: 50}, "app")

	m = update(t, m, runes("s"))
	if m.showSearch {
		t.Fatal("search form opened without a stream")
	}
	if m.notice == "" {
		t.Fatal("expected a notice")
	}
	// The next key clears the notice.
	m = update(t, m, runes("j"))
	if m.notice != "" {
		t.Fatalf("notice = %q, want empty", m.notice)
	}
}

func TestSubmitSearch(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)
	m = withSnapshot(t, m, session.Snapshot{Stream: "app", Limit: 50}, "app")

	m = update(t, m, runes("/"))
	if !m.showSearch {
		t.Fatal("search form not open")
	}
	if !strings.Contains(m.View(), "Search app") {
		t.Fatalf("search form not rendered:\n%s", m.View())
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	for _, r := range "error" {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.showSearch {
		t.Fatal("search form still open after submit")
	}
	if m.follow {
		t.Fatal("follow mode should pause for search results")
	}
	if len(ctrl.searches) != 1 {
		t.Fatalf("searches = %d, want 1", len(ctrl.searches))
	}
	got := ctrl.searches[0]
	if !got.rng.Start.Equal(testNow.Add(-15*time.Minute)) || !got.rng.End.Equal(testNow) {
		t.Fatalf("range = %v → %v", got.rng.Start, got.rng.End)
	}
	if got.term != "error" {
		t.Fatalf("term = %q, want error", got.term)
	}
}

func TestSearchFormRejectsBadTime(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)
	m = withSnapshot(t, m, session.Snapshot{Stream: "app", Limit: 50}, "app")

	m = update(t, m, runes("s"))
	m.search.inputs[fieldStart].SetValue("yesterday-ish")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.showSearch {
		t.Fatal("form closed on a bad time")
	}
	if !strings.HasPrefix(m.search.err, "start:") {
		t.Fatalf("err = %q, want start error", m.search.err)
	}
	if len(ctrl.searches) != 0 {
		t.Fatalf("searches = %d, want 0", len(ctrl.searches))
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showSearch {
		t.Fatal("esc did not close the form")
	}
}

func TestClearSearch(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)
	update(t, m, runes("c"))
	if ctrl.clears != 1 {
		t.Fatalf("clears = %d, want 1", ctrl.clears)
	}
}

func TestIntentRefusalBecomesNotice(t *testing.T) {
	ctrl := &fakeController{err: session.ErrNoStream}
	m := newTestModel(t, ctrl)
	m = update(t, m, runes("t"))
	if m.notice != "select a stream first" {
		t.Fatalf("notice = %q", m.notice)
	}

	ctrl.err = session.ErrClosed
	m = update(t, m, runes("t"))
	if m.notice != "" {
		t.Fatalf("closed controller produced notice %q", m.notice)
	}

	ctrl.err = errors.New("boom")
	m = update(t, m, runes("t"))
	if m.notice != "boom" {
		t.Fatalf("notice = %q, want boom", m.notice)
	}
}

func TestFollowMode(t *testing.T) {
	m := newTestModel(t, &fakeController{})
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = "line"
	}
	m = withSnapshot(t, m, session.Snapshot{
		Mode: session.ModeTailing, Status: session.StatusReady, Stream: "app", Tailing: true,
		Limit: 500, Lines: lines, Version: 3,
	}, "app")

	if !m.logViewport.AtBottom() {
		t.Fatal("follow mode should pin the viewport to the bottom")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, runes("k"))
	if m.follow {
		t.Fatal("scrolling up should pause follow")
	}

	m = update(t, m, runes("f"))
	if !m.follow || !m.logViewport.AtBottom() {
		t.Fatal("f should resume follow at the bottom")
	}
}

func TestCycleThemeSavesPrefs(t *testing.T) {
	m := newTestModel(t, &fakeController{})
	before := m.theme.Name
	m = update(t, m, runes("T"))
	if m.theme.Name == before {
		t.Fatalf("theme did not change from %q", before)
	}
	p, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if p.Theme != m.theme.Name {
		t.Fatalf("saved theme = %q, want %q", p.Theme, m.theme.Name)
	}
}

func TestHelpOverlay(t *testing.T) {
	m := newTestModel(t, &fakeController{})
	m = update(t, m, runes("?"))
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatal("help overlay not shown")
	}
	m = update(t, m, runes("t"))
	if m.showHelp {
		t.Fatal("any key should close help")
	}
}

func TestViewShowsListError(t *testing.T) {
	m := newTestModel(t, &fakeController{})
	m = update(t, m, snapshotMsg(state.Snapshot{
		ListError: &session.ListError{Err: errors.New("connection refused")},
	}))
	view := m.View()
	if !strings.Contains(view, "connection refused") {
		t.Fatalf("list error missing from view:\n%s", view)
	}
	if !strings.Contains(view, "logscope") {
		t.Fatal("header missing")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, &fakeController{})
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}
}
