package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/clientstate"
	"github.com/starford/jotter/internal/display"
	"github.com/starford/jotter/internal/menu"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/testutil"
)

// newTestModel starts a session restored to a directory holding a.txt and
// b.txt, and returns a sized model over it.
func newTestModel(t *testing.T) (Model, *display.Session, string) {
	t.Helper()
	dir := testutil.NotesDir(t, map[string]string{"a.txt": "alpha", "b.txt": "beta"})
	local, _ := testutil.Local(t, dir)
	state := clientstate.NewMemory()
	_ = clientstate.SetDirectory(context.Background(), state, dir)

	s := display.NewSession(local, state, display.WithLogger(testutil.Logger()))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(s.Close)
	flush(t, s)

	m := New(s, nil)
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = step(t, m, stateChangedMsg{})
	return m, s, dir
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func flush(t *testing.T, s *display.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func keyMsg(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSelectAndTypeWritesThrough(t *testing.T) {
	m, s, dir := newTestModel(t)

	if got := m.st.Filenames(); len(got) != 2 || got[0] != "b.txt" {
		t.Fatalf("items = %v", got)
	}
	m = step(t, m, keyMsg(tea.KeyDown))
	m = step(t, m, keyMsg(tea.KeyEnter))
	if m.focus != focusEditor {
		t.Errorf("focus = %v, want editor", m.focus)
	}
	flush(t, s)
	m = step(t, m, stateChangedMsg{})
	if m.st.Active != "a.txt" || m.editor.Value() != "alpha" {
		t.Fatalf("active = %q, editor = %q", m.st.Active, m.editor.Value())
	}

	m = step(t, m, runes("!"))
	flush(t, s)
	data, _ := os.ReadFile(filepath.Join(dir, "a.txt"))
	if string(data) != "alpha!" {
		t.Errorf("disk = %q", data)
	}
}

func TestCtrlNCreatesNote(t *testing.T) {
	m, s, _ := newTestModel(t)

	m = step(t, m, keyMsg(tea.KeyCtrlN))
	testutil.Eventually(t, 3*time.Second, 10*time.Millisecond, func() bool { return s.Snapshot().Menu != nil }, "menu never arrived")
	m = step(t, m, stateChangedMsg{})
	if m.pendingAction != models.ActionNone {
		t.Errorf("pending action not consumed")
	}

	testutil.Eventually(t, 3*time.Second, 10*time.Millisecond, func() bool { return len(s.Snapshot().Items) == 3 }, "new note not listed")
	if first := s.Snapshot().Items[0].Filename; !strings.HasSuffix(first, ".txt") || len(first) != len("202401010000.txt") {
		t.Errorf("new note = %q", first)
	}
}

func TestMenuKeysDelete(t *testing.T) {
	m, s, dir := newTestModel(t)

	m = step(t, m, keyMsg(tea.KeyCtrlX))
	testutil.Eventually(t, 3*time.Second, 10*time.Millisecond, func() bool { return s.Snapshot().Menu != nil }, "menu never arrived")
	m = step(t, m, stateChangedMsg{})
	if m.menuCursor != 0 {
		t.Fatalf("menu cursor = %d, want first entry", m.menuCursor)
	}

	m = step(t, m, keyMsg(tea.KeyDown))
	_ = step(t, m, keyMsg(tea.KeyEnter))

	testutil.Eventually(t, 3*time.Second, 10*time.Millisecond, func() bool { return !s.Snapshot().Has("b.txt") }, "b.txt still listed")
	if _, err := os.Stat(filepath.Join(dir, "b.txt")); !os.IsNotExist(err) {
		t.Errorf("b.txt still on disk: %v", err)
	}
}

func TestEscDismissesMenu(t *testing.T) {
	m, s, _ := newTestModel(t)

	m = step(t, m, keyMsg(tea.KeyCtrlX))
	testutil.Eventually(t, 3*time.Second, 10*time.Millisecond, func() bool { return s.Snapshot().Menu != nil }, "menu never arrived")
	m = step(t, m, stateChangedMsg{})
	if !strings.Contains(m.View(), "Delete") {
		t.Error("menu not rendered")
	}

	_ = step(t, m, keyMsg(tea.KeyEsc))
	testutil.Eventually(t, 3*time.Second, 10*time.Millisecond, func() bool {
		st := s.Snapshot()
		return st.Menu == nil && st.Focused == ""
	}, "menu not dismissed")
}

func TestDoubleClickRenames(t *testing.T) {
	m, s, dir := newTestModel(t)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return at }

	click := tea.MouseMsg{X: 3, Y: listTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m = step(t, m, click)
	m = step(t, m, click)
	if got := s.Snapshot().Renaming; got != "b.txt" {
		t.Fatalf("renaming = %q", got)
	}

	m = step(t, m, stateChangedMsg{})
	if m.focus != focusRename || m.rename.Value() != "b" {
		t.Fatalf("focus = %v, draft = %q", m.focus, m.rename.Value())
	}
	m = step(t, m, runes("ee"))
	_ = step(t, m, keyMsg(tea.KeyEnter))
	flush(t, s)

	if _, err := os.Stat(filepath.Join(dir, "bee.txt")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
}

func TestDragResizesSidebar(t *testing.T) {
	m, s, _ := newTestModel(t)
	w := m.st.SidebarWidth

	m = step(t, m, tea.MouseMsg{X: w - 1, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = step(t, m, tea.MouseMsg{X: w + 10, Y: 5, Action: tea.MouseActionMotion})
	_ = step(t, m, tea.MouseMsg{X: w + 10, Y: 5, Action: tea.MouseActionRelease})

	st := s.Snapshot()
	if st.SidebarWidth != w+10 || st.Dragging {
		t.Errorf("width = %d, dragging = %v", st.SidebarWidth, st.Dragging)
	}
}

func TestBrowserChooseAndCancel(t *testing.T) {
	m, _, dir := newTestModel(t)

	reply := make(chan pickResult, 1)
	m = step(t, m, pickRequestMsg{start: dir, reply: reply})
	if !m.browsing {
		t.Fatal("browser not shown")
	}
	m = step(t, m, runes("s"))
	if r := <-reply; r.err != nil || r.dir != dir {
		t.Errorf("result = %+v", r)
	}
	if m.browsing {
		t.Error("browser still shown")
	}

	m = step(t, m, pickRequestMsg{start: dir, reply: reply})
	_ = step(t, m, runes("q"))
	if r := <-reply; !errors.Is(r.err, apperr.ErrCancelled) {
		t.Errorf("cancel err = %v", r.err)
	}
}

func TestDirPicker(t *testing.T) {
	dp := NewDirPicker("/start")
	if _, err := dp.Pick(context.Background()); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("unattached err = %v", err)
	}

	dir := t.TempDir()
	dp.attach(func(msg tea.Msg) {
		if req, ok := msg.(pickRequestMsg); ok {
			if req.start != "/start" {
				t.Errorf("start = %q", req.start)
			}
			req.reply <- pickResult{dir: dir}
		}
	})
	got, err := dp.Pick(context.Background())
	if err != nil || got != dir {
		t.Errorf("Pick = %q, %v", got, err)
	}
}

func TestStepEnabled(t *testing.T) {
	dirMenu := menu.Build(menu.TargetFor("/d", ""))
	if i := firstEnabled(&dirMenu); i != 2 {
		t.Errorf("first enabled = %d, want New", i)
	}
	if i := stepEnabled(&dirMenu, 2, 1); i != 2 {
		t.Errorf("step down = %d, want to stay", i)
	}

	fileMenu := menu.Build(menu.TargetFor("/d", "a.txt"))
	if i := stepEnabled(&fileMenu, 2, 1); i != 4 {
		t.Errorf("step over separator = %d, want 4", i)
	}
	if i := stepEnabled(&fileMenu, 4, -1); i != 2 {
		t.Errorf("step back = %d, want 2", i)
	}

	none := menu.Build(menu.TargetFor("", ""))
	if i := firstEnabled(&none); i != -1 {
		t.Errorf("first enabled = %d, want -1", i)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		w    int
		want string
	}{
		{"notes", 10, "notes"},
		{"notes", 3, "no…"},
		{"notes", 1, "…"},
		{"notes", 0, ""},
	}
	for _, c := range cases {
		if got := truncate(c.in, c.w); got != c.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", c.in, c.w, got, c.want)
		}
	}
}
