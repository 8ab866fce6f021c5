package terminal

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"
)

// Attr is a bitmask of text attributes and palette flags
type Attr uint8

const (
	AttrNone      Attr = 0
	AttrBold      Attr = 1 << 0
	AttrDim       Attr = 1 << 1
	AttrItalic    Attr = 1 << 2
	AttrUnderline Attr = 1 << 3
	AttrBlink     Attr = 1 << 4
	AttrReverse   Attr = 1 << 5
	AttrFg256     Attr = 1 << 6 // Fg.R holds a palette index
	AttrBg256     Attr = 1 << 7 // Bg.R holds a palette index
)

// AttrStyle selects the visual attribute bits
const AttrStyle = AttrBold | AttrDim | AttrItalic | AttrUnderline | AttrBlink | AttrReverse

// Cell is one screen position, Rune 0 draws as a blank
type Cell struct {
	Rune  rune
	Fg    RGB
	Bg    RGB
	Attrs Attr
}

// ErrFrameDropped is returned by Flush when the frame no longer matches the screen size
// Nothing is drawn, the caller redraws at the new size
var ErrFrameDropped = errors.New("terminal: frame size does not match screen")

// Terminal is the screen the dashboard draws into
// Implementations are driven from a single render goroutine, PostEvent may be called from any goroutine
type Terminal interface {
	// Init switches to raw mode and the alternate screen
	Init() error
	// Fini undoes Init, repeated calls are no-ops
	Fini()

	Size() (width, height int)
	ColorMode() ColorMode

	// Flush shows a row-major frame, cells[y*width+x]
	// A frame sized for a previous terminal size is dropped with ErrFrameDropped
	// Flush and Sync are no-ops returning nil before Init and after Fini
	Flush(cells []Cell, width, height int) error
	// Sync clears the screen so the next Flush repaints every cell
	Sync() error

	// PollEvent waits up to timeout, ok is false when nothing arrived
	PollEvent(timeout time.Duration) (ev Event, ok bool)
	PostEvent(Event)
}

type lifecycle uint8

const (
	stateNew lifecycle = iota
	stateOpen
	stateClosed
)

// ansiTerminal writes ANSI sequences through a Backend
type ansiTerminal struct {
	backend Backend
	out     *outputBuffer
	in      *inputReader

	resized chan Event
	posted  chan Event
	timer   *time.Timer

	mu    sync.Mutex
	state lifecycle
}

// New opens the controlling terminal, colorMode overrides detection
func New(colorMode ...ColorMode) Terminal {
	return NewWithBackend(newBackend(), colorMode...)
}

func NewWithBackend(b Backend, colorMode ...ColorMode) Terminal {
	mode := DetectColorMode()
	if len(colorMode) > 0 {
		mode = colorMode[0]
	}
	return &ansiTerminal{
		backend: b,
		out:     newOutputBuffer(backendWriter{b: b}, mode),
		resized: make(chan Event, 1),
		posted:  make(chan Event, 16),
	}
}

func (t *ansiTerminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateNew {
		return nil
	}

	// Nothing is written until raw mode succeeds
	if err := t.backend.Init(); err != nil {
		return err
	}

	t.out.resize(t.backend.Size())
	t.backend.SetResizeHandler(t.onResize)
	for _, seq := range [][]byte{csiAltScreenEnter, csiCursorHide, csiAutoWrapOff} {
		t.backend.Write(seq)
	}
	t.out.clear(RGBBlack)

	t.in = newInputReader(t.backend)
	t.in.start()
	t.state = stateOpen
	return nil
}

// onResize keeps only the newest size pending
func (t *ansiTerminal) onResize(w, h int) {
	ev := Event{Type: EventResize, Width: w, Height: h}
	for {
		select {
		case t.resized <- ev:
			return
		default:
		}
		select {
		case <-t.resized:
		default:
		}
	}
}

func (t *ansiTerminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateOpen {
		return
	}
	t.state = stateClosed

	t.in.stop()
	// Wrap is restored after leaving the alternate screen so it applies to the main buffer
	for _, seq := range [][]byte{csiCursorShow, csiAltScreenExit, csiAutoWrapOn, csiSGR0} {
		t.backend.Write(seq)
	}
	t.backend.Fini()
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *ansiTerminal) Size() (int, int) {
	return t.backend.Size()
}

func (t *ansiTerminal) ColorMode() ColorMode {
	return t.out.colorMode
}

func (t *ansiTerminal) Flush(cells []Cell, width, height int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateOpen {
		return nil
	}
	if w, h := t.backend.Size(); w != width || h != height || len(cells) < width*height {
		return ErrFrameDropped
	}
	return t.out.flush(cells, width, height)
}

func (t *ansiTerminal) Sync() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateOpen {
		return nil
	}
	t.out.resize(t.backend.Size())
	return t.out.clear(RGBBlack)
}

// PollEvent prefers posted events, then input and resizes as they arrive
func (t *ansiTerminal) PollEvent(timeout time.Duration) (Event, bool) {
	select {
	case ev := <-t.posted:
		return ev, true
	default:
	}

	var input <-chan Event
	if t.in != nil {
		input = t.in.events()
	}

	if t.timer == nil {
		t.timer = time.NewTimer(timeout)
	} else {
		t.timer.Reset(timeout)
	}

	var ev Event
	select {
	case ev = <-t.posted:
	case ev = <-input:
	case ev = <-t.resized:
	case <-t.timer.C:
		return Event{}, false
	}
	t.timer.Stop()
	return ev, true
}

// PostEvent drops the event when the queue is full
func (t *ansiTerminal) PostEvent(ev Event) {
	select {
	case t.posted <- ev:
	default:
	}
}

// EmergencyReset restores a usable terminal without the Terminal value,
// for crash paths where Fini cannot run
func EmergencyReset(w io.Writer) {
	for _, seq := range [][]byte{csiCursorShow, csiAltScreenExit, csiSGR0, csiAutoWrapOn, csiRIS} {
		w.Write(seq)
	}
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}
	// Sequences do not touch termios
	resetTerminalMode()
}
