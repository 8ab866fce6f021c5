package dashboard

import (
	"sync"
	"time"

	"github.com/lixenwraith/smiledash/terminal"
)

// fakeTerminal is an in-memory terminal that records lifecycle calls and the last frame
type fakeTerminal struct {
	mu       sync.Mutex
	w, h     int
	events   chan terminal.Event
	flushErr error
	panicOn  int // Panic on the nth Flush, 0 never
	shrinkOn int // Shrink the screen one column just before the nth Flush, 0 never

	inits   int
	finis   int
	flushes int
	syncs   int
	last    []terminal.Cell
}

func newFakeTerminal(w, h int) *fakeTerminal {
	return &fakeTerminal{w: w, h: h, events: make(chan terminal.Event, 16)}
}

func (f *fakeTerminal) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inits++
	return nil
}

func (f *fakeTerminal) Fini() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finis++
}

func (f *fakeTerminal) Size() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.w, f.h
}

func (f *fakeTerminal) ColorMode() terminal.ColorMode {
	return terminal.ColorModeTrueColor
}

func (f *fakeTerminal) Flush(cells []terminal.Cell, w, h int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	if f.panicOn > 0 && f.flushes == f.panicOn {
		panic("flush exploded")
	}
	if f.flushErr != nil {
		return f.flushErr
	}
	if f.shrinkOn > 0 && f.flushes == f.shrinkOn {
		f.w--
	}
	if w != f.w || h != f.h {
		return terminal.ErrFrameDropped
	}
	f.last = append(f.last[:0], cells...)
	return nil
}

func (f *fakeTerminal) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	return nil
}

func (f *fakeTerminal) PollEvent(timeout time.Duration) (terminal.Event, bool) {
	select {
	case ev := <-f.events:
		return ev, true
	case <-time.After(timeout):
		return terminal.Event{}, false
	}
}

func (f *fakeTerminal) PostEvent(ev terminal.Event) {
	f.events <- ev
}

func (f *fakeTerminal) counts() (inits, finis, flushes, syncs int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inits, f.finis, f.flushes, f.syncs
}

// row returns the text of frame row y
func (f *fakeTerminal) row(y int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	rs := make([]rune, f.w)
	for x := 0; x < f.w; x++ {
		c := f.last[y*f.w+x]
		if c.Rune == 0 {
			rs[x] = ' '
		} else {
			rs[x] = c.Rune
		}
	}
	return string(rs)
}

// screen returns all frame rows joined by newlines
func (f *fakeTerminal) screen() string {
	var out []rune
	for y := 0; y < f.h; y++ {
		out = append(out, []rune(f.row(y))...)
		out = append(out, '\n')
	}
	return string(out)
}

func keyEvent(ch rune) terminal.Event {
	return terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: ch}
}

// countingStaler records stale notifications
type countingStaler struct {
	mu    sync.Mutex
	calls []time.Time
}

func (s *countingStaler) Stale(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, now)
}

func (s *countingStaler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
