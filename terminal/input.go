package terminal

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"
)

// EventType distinguishes input event categories
type EventType uint8

const (
	EventKey EventType = iota
	EventResize
	EventError  // Read error
	EventClosed // Input closed
)

// Event represents a terminal input event
type Event struct {
	Type      EventType
	Key       Key
	Rune      rune
	Modifiers Modifier
	Width     int   // For EventResize
	Height    int   // For EventResize
	Err       error // For EventError
}

// IsRune reports whether the event is a press of the printable key ch
func (e Event) IsRune(ch rune) bool {
	return e.Type == EventKey && e.Key == KeyRune && e.Rune == ch
}

// maxCSILen bounds the scan for a CSI final byte, longer sequences are discarded
const maxCSILen = 16

// inputReader turns the raw byte stream from a backend into key events
type inputReader struct {
	backend Backend
	eventCh chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}

	mu      sync.Mutex
	running bool

	// Carries a partial escape sequence or UTF-8 rune across reads
	pending []byte
}

func newInputReader(backend Backend) *inputReader {
	return &inputReader{
		backend: backend,
		eventCh: make(chan Event, 256),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		pending: make([]byte, 0, 64),
	}
}

func (r *inputReader) start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	go r.readLoop()
}

// stop signals the reader and waits briefly, a read stuck in the kernel is abandoned
func (r *inputReader) stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopCh)
	select {
	case <-r.doneCh:
	case <-time.After(100 * time.Millisecond):
	}
}

func (r *inputReader) events() <-chan Event {
	return r.eventCh
}

func (r *inputReader) readLoop() {
	defer close(r.doneCh)
	defer func() {
		// A parser fault ends input, the render loop sees it as a read error
		if p := recover(); p != nil {
			r.send(Event{Type: EventError, Err: fmt.Errorf("input reader panic: %v", p)})
		}
	}()

	for {
		data, err := r.backend.Read(r.stopCh)
		if err != nil {
			r.send(Event{Type: EventError, Err: err})
			return
		}

		if len(data) == 0 {
			select {
			case <-r.stopCh:
				r.send(Event{Type: EventClosed})
				return
			default:
			}
			// A lone ESC with nothing following within one poll is the Escape key
			if len(r.pending) == 1 && r.pending[0] == 0x1b {
				r.send(Event{Type: EventKey, Key: KeyEscape})
				r.pending = r.pending[:0]
			}
			continue
		}

		r.pending = append(r.pending, data...)
		n := r.parseInput(r.pending)
		r.pending = r.pending[:copy(r.pending, r.pending[n:])]
	}
}

// parseInput emits events for every complete key in data and returns the bytes consumed
// Parsing stops at an incomplete escape sequence or UTF-8 rune
func (r *inputReader) parseInput(data []byte) int {
	i := 0
	for i < len(data) {
		b := data[i]
		switch {
		case b == 0x1b:
			n, ev, ok := parseEscape(data[i:])
			if n == 0 {
				return i
			}
			if ok {
				r.send(ev)
			}
			i += n

		case b < 0x20 || b == 0x7f:
			r.send(Event{Type: EventKey, Key: controlKey(b)})
			i++

		case b < 0x80:
			r.send(Event{Type: EventKey, Key: KeyRune, Rune: rune(b)})
			i++

		default:
			if !utf8.FullRune(data[i:]) {
				return i
			}
			ch, size := utf8.DecodeRune(data[i:])
			r.send(Event{Type: EventKey, Key: KeyRune, Rune: ch})
			i += size
		}
	}
	return i
}

// parseEscape decodes a sequence starting with ESC
// n == 0 means more bytes are needed; ok == false means the sequence was consumed but is unknown
func parseEscape(data []byte) (n int, ev Event, ok bool) {
	if len(data) < 2 {
		return 0, Event{}, false
	}

	switch next := data[1]; {
	case next == '[':
		return parseCSI(data)
	case next == 'O':
		if len(data) < 3 {
			return 0, Event{}, false
		}
		key, known := csiFinal[data[2]]
		return 3, Event{Type: EventKey, Key: key}, known
	case next < 0x20 || next == 0x7f:
		return 2, Event{Type: EventKey, Key: controlKey(next), Modifiers: ModAlt}, true
	case next < 0x80:
		return 2, Event{Type: EventKey, Key: KeyRune, Rune: rune(next), Modifiers: ModAlt}, true
	}
	// ESC followed by a non-ASCII byte: report Escape and let the rune parse on its own
	return 1, Event{Type: EventKey, Key: KeyEscape}, true
}

// parseCSI decodes ESC [ params final
func parseCSI(data []byte) (int, Event, bool) {
	end := -1
	for j := 2; j < len(data) && j < maxCSILen; j++ {
		b := data[j]
		if b >= 0x40 && b <= 0x7e {
			end = j
			break
		}
		if b < 0x20 || b > 0x3f {
			// Not a parameter byte, drop the introducer only
			return 2, Event{}, false
		}
	}
	if end < 0 {
		if len(data) >= maxCSILen {
			return maxCSILen, Event{}, false
		}
		return 0, Event{}, false
	}

	params := parseParams(data[2:end])
	final := data[end]
	n := end + 1

	var mod Modifier
	if len(params) >= 2 && params[1] > 1 {
		mod = Modifier(params[1]-1) & (ModShift | ModAlt | ModCtrl)
	}

	if final == '~' {
		if len(params) == 0 {
			return n, Event{}, false
		}
		key, known := csiTilde[params[0]]
		return n, Event{Type: EventKey, Key: key, Modifiers: mod}, known
	}

	key, known := csiFinal[final]
	if key == KeyBacktab {
		mod |= ModShift
	}
	return n, Event{Type: EventKey, Key: key, Modifiers: mod}, known
}

// parseParams splits "1;5" into integers, empty fields read as 0
func parseParams(b []byte) []int {
	if len(b) == 0 {
		return nil
	}
	params := make([]int, 1, 2)
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
			params[len(params)-1] = params[len(params)-1]*10 + int(c-'0')
		case c == ';':
			params = append(params, 0)
		}
	}
	return params
}

// send drops the event when the consumer is behind
func (r *inputReader) send(ev Event) {
	select {
	case r.eventCh <- ev:
	default:
	}
}
