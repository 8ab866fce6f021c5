package tcellterm

import (
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/smiledash/terminal"
)

func newSimTerminal(t *testing.T, mode ...terminal.ColorMode) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	term := NewWithScreen(sim, mode...)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(term.Fini)
	return term, sim
}

func frame(w, h int, text string, fg terminal.RGB) []terminal.Cell {
	cells := make([]terminal.Cell, w*h)
	for i, r := range []rune(text) {
		cells[i] = terminal.Cell{Rune: r, Fg: fg, Attrs: terminal.AttrBold}
	}
	return cells
}

func TestFlushWritesScreen(t *testing.T) {
	term, sim := newSimTerminal(t, terminal.ColorModeTrueColor)
	w, h := term.Size()
	if w == 0 || h == 0 {
		t.Fatalf("Expected screen size after Init, got %dx%d", w, h)
	}

	fg := terminal.RGB{R: 200, G: 100, B: 50}
	if err := term.Flush(frame(w, h, "hi", fg), w, h); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	contents, cw, _ := sim.GetContents()
	if cw != w {
		t.Fatalf("Expected width %d, got %d", w, cw)
	}
	if len(contents[0].Runes) == 0 || contents[0].Runes[0] != 'h' {
		t.Errorf("Expected 'h' at origin, got %v", contents[0].Runes)
	}
	if contents[1].Runes[0] != 'i' {
		t.Errorf("Expected 'i' at column 1, got %v", contents[1].Runes)
	}

	gotFg, _, attrs := contents[0].Style.Decompose()
	if gotFg != tcell.NewRGBColor(200, 100, 50) {
		t.Errorf("Expected RGB foreground, got %v", gotFg)
	}
	if attrs&tcell.AttrBold == 0 {
		t.Error("Expected bold attribute")
	}
}

func TestFlushDropsMismatchedFrame(t *testing.T) {
	term, sim := newSimTerminal(t)
	w, h := term.Size()

	if err := term.Flush(frame(w, h, "ok", terminal.RGB{}), w, h); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := term.Flush(frame(w-1, h, "xx", terminal.RGB{}), w-1, h); !errors.Is(err, terminal.ErrFrameDropped) {
		t.Errorf("Expected ErrFrameDropped for stale-size frame, got %v", err)
	}

	contents, _, _ := sim.GetContents()
	if contents[0].Runes[0] != 'o' {
		t.Errorf("Expected previous frame kept, got %v", contents[0].Runes)
	}
}

func TestForced256UsesPalette(t *testing.T) {
	term, sim := newSimTerminal(t, terminal.ColorMode256)
	if term.ColorMode() != terminal.ColorMode256 {
		t.Fatalf("Expected forced 256 mode, got %v", term.ColorMode())
	}
	w, h := term.Size()

	fg := terminal.RGB{R: 255}
	if err := term.Flush(frame(w, h, "x", fg), w, h); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	contents, _, _ := sim.GetContents()
	gotFg, _, _ := contents[0].Style.Decompose()
	if want := tcell.PaletteColor(int(terminal.RGBTo256(fg))); gotFg != want {
		t.Errorf("Expected palette color %v, got %v", want, gotFg)
	}
}

func TestPollEventKey(t *testing.T) {
	term, sim := newSimTerminal(t)

	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	// Skip the resize the screen may report on Init
	for i := 0; i < 3; i++ {
		ev, ok := term.PollEvent(time.Second)
		if !ok {
			t.Fatal("Expected injected key")
		}
		if ev.Type == terminal.EventResize {
			continue
		}
		if !ev.IsRune('q') {
			t.Errorf("Expected 'q', got %+v", ev)
		}
		return
	}
	t.Error("Expected key event")
}

func TestPollEventTimeout(t *testing.T) {
	term, _ := newSimTerminal(t)

	start := time.Now()
	if _, ok := term.PollEvent(15 * time.Millisecond); ok {
		// Init may queue an initial resize event, drain it
		if _, ok := term.PollEvent(15 * time.Millisecond); ok {
			t.Error("Expected timeout with no input")
		}
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Error("Expected poll to wait for timeout")
	}
}

func TestPostEvent(t *testing.T) {
	term, _ := newSimTerminal(t)
	term.PostEvent(terminal.Event{Type: terminal.EventClosed})

	for i := 0; i < 3; i++ {
		ev, ok := term.PollEvent(time.Second)
		if !ok {
			t.Fatal("Expected posted event")
		}
		if ev.Type == terminal.EventClosed {
			return
		}
	}
	t.Error("Expected EventClosed")
}

func TestFiniIdempotent(t *testing.T) {
	term := NewWithScreen(tcell.NewSimulationScreen("UTF-8"))
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	term.Fini()
	term.Fini()

	if err := term.Flush(nil, 0, 0); err != nil {
		t.Errorf("Expected Flush after Fini to be a no-op, got %v", err)
	}
	if err := term.Sync(); err != nil {
		t.Errorf("Expected Sync after Fini to be a no-op, got %v", err)
	}
}

func TestFlushBeforeInitIsNoop(t *testing.T) {
	term := NewWithScreen(tcell.NewSimulationScreen("UTF-8"))
	if err := term.Flush(frame(2, 1, "ab", terminal.RGB{}), 2, 1); err != nil {
		t.Errorf("Expected Flush before Init to be a no-op, got %v", err)
	}
	if err := term.Sync(); err != nil {
		t.Errorf("Expected Sync before Init to be a no-op, got %v", err)
	}
}

func TestRunSessionReleases(t *testing.T) {
	term := NewWithScreen(tcell.NewSimulationScreen("UTF-8"))

	bodyErr := errors.New("draw failed")
	err := terminal.RunSession(term, func(terminal.Terminal) error { return bodyErr })
	if !errors.Is(err, bodyErr) {
		t.Errorf("Expected body error, got %v", err)
	}
	term.mu.Lock()
	running := term.running
	term.mu.Unlock()
	if running {
		t.Error("Expected terminal released after session")
	}
}

func TestConvertEvent(t *testing.T) {
	tests := []struct {
		name string
		in   tcell.Event
		want terminal.Event
		ok   bool
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
			terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: 'q'}, true},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModAlt),
			terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: 'q', Modifiers: terminal.ModAlt}, true},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone),
			terminal.Event{Type: terminal.EventKey, Key: terminal.KeyEnter}, true},
		{"resize", tcell.NewEventResize(100, 30),
			terminal.Event{Type: terminal.EventResize, Width: 100, Height: 30}, true},
		{"unmapped", tcell.NewEventKey(tcell.KeyF20, 0, tcell.ModNone), terminal.Event{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := convertEvent(tt.in)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if got.Type != tt.want.Type || got.Key != tt.want.Key || got.Rune != tt.want.Rune ||
				got.Modifiers != tt.want.Modifiers || got.Width != tt.want.Width || got.Height != tt.want.Height {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
