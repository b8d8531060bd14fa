package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/mortar/pkg/pipeline"
	"github.com/matzehuels/mortar/pkg/visual"
)

func newTestView(t *testing.T, source string) viewModel {
	t.Helper()
	ctx := context.Background()
	r := pipeline.NewRunner(log.New(io.Discard))
	opts := pipeline.Options{Source: source, Width: 40}
	root, err := r.Parse(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	s, err := r.Layout(ctx, root, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return newViewModel(ctx, "test", s)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends keys and runs the resulting idle work to completion.
func press(t *testing.T, m viewModel, keys ...string) viewModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(viewModel)
	}
	if err := m.session.Settle(); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestViewNavigation(t *testing.T) {
	m := newTestView(t, `pair("a", "b")`+"\n"+`pair("c", "d")`+"\n")

	m = press(t, m, "down")
	if m.session.Selection() != m.session.Root() {
		t.Fatalf("first move selects %v, want the root", m.session.Selection())
	}

	// root, pair, group, "a", " ", "b" are navigable before the second pair.
	m = press(t, m, "down", "down", "down", "down", "down", "down")
	a, ok := m.session.Selection().(*visual.Atom)
	if !ok || visual.Path(a)[0] != 3 {
		t.Fatalf("selection = %v at %v, want the second pair", m.session.Selection(), visual.Path(m.session.Selection()))
	}

	m = press(t, m, "up")
	if txt, ok := m.session.Selection().(*visual.Text); !ok || txt.Text() != "b" {
		t.Errorf("selection after up = %v, want text b", m.session.Selection())
	}
}

func TestViewResize(t *testing.T) {
	m := newTestView(t, `list["alpha", "beta", "gamma"]`+"\n")

	m = press(t, m, "left")
	if got := m.session.Width(); got != 39 {
		t.Errorf("Width() after left = %d, want 39", got)
	}
	m = press(t, m, "right", "right")
	if got := m.session.Width(); got != 41 {
		t.Errorf("Width() after right = %d, want 41", got)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 14, Height: 10})
	m = press(t, next.(viewModel), "f")
	if got := m.session.Width(); got != 12 {
		t.Errorf("Width() after fit = %d, want 12", got)
	}
	if got := m.session.Wall().CourseCount(); got != 4 {
		t.Errorf("CourseCount() at width 12 = %d, want 4", got)
	}
	if view := m.View(); !strings.Contains(view, "width 12") || !strings.Contains(view, "gamma]") {
		t.Errorf("View() =\n%s\nwant the width and the last line", view)
	}
}

func TestViewWindow(t *testing.T) {
	m := newTestView(t, `pair("a", "b")`+"\n")

	m = press(t, m, "down", "enter")
	if !strings.Contains(m.status, "atom") {
		t.Errorf("status = %q, want a hint to select an atom", m.status)
	}

	m = press(t, m, "down", "enter")
	if _, ok := m.session.Window().(*visual.Atom); !ok {
		t.Fatalf("Window() = %v, want the pair", m.session.Window())
	}

	m = press(t, m, "esc")
	if m.session.Window() != m.session.Root() {
		t.Errorf("Window() after esc = %v, want the root", m.session.Window())
	}
	m = press(t, m, "esc")
	if m.status == "" {
		t.Error("esc at the root should report that there is no window to leave")
	}
}

func TestViewQuit(t *testing.T) {
	m := newTestView(t, `"x"`+"\n")
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestViewIdle(t *testing.T) {
	m := newTestView(t, `"x"`+"\n")
	next, cmd := m.Update(idleMsg{})
	if cmd != nil {
		t.Error("a settled session should not schedule more idle work")
	}
	if next.(viewModel).busy {
		t.Error("busy should be false once the queue is empty")
	}
}

func TestViewSingleTick(t *testing.T) {
	m := newTestView(t, `pair("a", "b")`+"\n")
	if !m.busy || m.Init() == nil {
		t.Fatal("Init should start the first tick")
	}

	next, _ := m.Update(idleMsg{})
	m = next.(viewModel)
	if m.busy {
		t.Fatal("busy = true after the queue drained, want false")
	}

	next, cmd := m.Update(key("left"))
	m = next.(viewModel)
	if cmd == nil || !m.busy {
		t.Fatal("a key on an idle view should start a tick")
	}
	for _, k := range []string{"right", "down", "left"} {
		next, cmd = m.Update(key(k))
		m = next.(viewModel)
		if cmd != nil {
			t.Errorf("key %q started a second tick while one is in flight", k)
		}
	}

	next, _ = m.Update(idleMsg{})
	if next.(viewModel).busy {
		t.Error("busy = true after the tick settled the session, want false")
	}
}
