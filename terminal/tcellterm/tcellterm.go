// Package tcellterm implements terminal.Terminal on top of a tcell screen.
package tcellterm

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/smiledash/terminal"
)

// Terminal adapts tcell.Screen to terminal.Terminal
type Terminal struct {
	mu        sync.Mutex
	screen    tcell.Screen
	newScreen func() (tcell.Screen, error)
	colorMode terminal.ColorMode
	forced    bool

	events  chan terminal.Event
	done    chan struct{}
	running bool
	finOnce sync.Once
}

// New returns a Terminal that opens the process tty on Init
// An optional color mode overrides what the screen reports
func New(colorMode ...terminal.ColorMode) *Terminal {
	return newTerminal(tcell.NewScreen, colorMode)
}

// NewWithScreen wraps an existing, not yet initialized screen
func NewWithScreen(s tcell.Screen, colorMode ...terminal.ColorMode) *Terminal {
	return newTerminal(func() (tcell.Screen, error) { return s, nil }, colorMode)
}

func newTerminal(factory func() (tcell.Screen, error), colorMode []terminal.ColorMode) *Terminal {
	t := &Terminal{
		newScreen: factory,
		colorMode: terminal.ColorModeTrueColor,
		events:    make(chan terminal.Event, 256),
		done:      make(chan struct{}),
	}
	if len(colorMode) > 0 {
		t.colorMode = colorMode[0]
		t.forced = true
	}
	return t
}

// Init opens the screen, hides the cursor and starts the event pump
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return nil
	}

	s, err := t.newScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.HideCursor()
	s.Clear()

	if !t.forced {
		if s.Colors() >= 1<<24 {
			t.colorMode = terminal.ColorModeTrueColor
		} else {
			t.colorMode = terminal.ColorMode256
		}
	}

	t.screen = s
	t.running = true
	go t.pump(s)
	return nil
}

// pump forwards screen events until PollEvent returns nil after Fini
func (t *Terminal) pump(s tcell.Screen) {
	defer close(t.done)
	for {
		ev := s.PollEvent()
		if ev == nil {
			return
		}
		if out, ok := convertEvent(ev); ok {
			select {
			case t.events <- out:
			default:
				// Drop on overflow, the render loop drains every frame
			}
		}
	}
}

// Fini restores the terminal, safe to call multiple times
func (t *Terminal) Fini() {
	t.mu.Lock()
	s, running := t.screen, t.running
	t.running = false
	t.mu.Unlock()

	if !running {
		return
	}
	t.finOnce.Do(func() {
		s.Fini()
		select {
		case <-t.done:
		case <-time.After(100 * time.Millisecond):
		}
	})
}

// Size returns the screen dimensions, 0x0 before Init
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.screen == nil {
		return 0, 0
	}
	return t.screen.Size()
}

// ColorMode returns the color capability in effect
func (t *Terminal) ColorMode() terminal.ColorMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.colorMode
}

// Flush copies cells to the screen and shows them
// A frame whose dimensions no longer match the screen is dropped with terminal.ErrFrameDropped
func (t *Terminal) Flush(cells []terminal.Cell, width, height int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return nil
	}
	sw, sh := t.screen.Size()
	if sw != width || sh != height || len(cells) < width*height {
		return terminal.ErrFrameDropped
	}

	for y := 0; y < height; y++ {
		row := cells[y*width : (y+1)*width]
		for x, c := range row {
			ch := c.Rune
			if ch == 0 {
				ch = ' '
			}
			t.screen.SetContent(x, y, ch, nil, t.style(c))
		}
	}
	t.screen.Show()
	return nil
}

// Sync forces a full repaint
func (t *Terminal) Sync() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return nil
	}
	t.screen.Sync()
	return nil
}

// PollEvent waits up to timeout for the next event
func (t *Terminal) PollEvent(timeout time.Duration) (terminal.Event, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-t.events:
		return ev, true
	case <-timer.C:
		return terminal.Event{}, false
	}
}

// PostEvent injects an event, used for tests and programmatic quit
func (t *Terminal) PostEvent(ev terminal.Event) {
	select {
	case t.events <- ev:
	default:
	}
}

// style converts a cell to a tcell style honouring the color mode
func (t *Terminal) style(c terminal.Cell) tcell.Style {
	st := tcell.StyleDefault.
		Foreground(t.color(c.Fg, c.Attrs&terminal.AttrFg256 != 0)).
		Background(t.color(c.Bg, c.Attrs&terminal.AttrBg256 != 0))

	a := c.Attrs & terminal.AttrStyle
	if a == terminal.AttrNone {
		return st
	}
	return st.
		Bold(a&terminal.AttrBold != 0).
		Dim(a&terminal.AttrDim != 0).
		Italic(a&terminal.AttrItalic != 0).
		Underline(a&terminal.AttrUnderline != 0).
		Blink(a&terminal.AttrBlink != 0).
		Reverse(a&terminal.AttrReverse != 0)
}

func (t *Terminal) color(c terminal.RGB, palette bool) tcell.Color {
	if palette {
		return tcell.PaletteColor(int(c.R))
	}
	if t.colorMode == terminal.ColorMode256 {
		return tcell.PaletteColor(int(terminal.RGBTo256(c)))
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
