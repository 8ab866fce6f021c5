package status

import (
	"sync/atomic"
	"unicode/utf8"
)

// MaxStringLen is the maximum byte length for atomic strings
// Long fetch errors are cut here so the status bar never carries a page of HTML
const MaxStringLen = 160

// AtomicString provides atomic string access with bounded length
// Zero value is ready to use (represents empty string)
type AtomicString struct {
	ptr atomic.Pointer[string]
}

// Store sets the string value, truncating on a rune boundary at MaxStringLen
func (s *AtomicString) Store(val string) {
	if len(val) > MaxStringLen {
		cut := MaxStringLen
		for cut > 0 && !utf8.RuneStart(val[cut]) {
			cut--
		}
		val = val[:cut]
	}
	s.ptr.Store(&val)
}

// Load returns the current string value
func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
