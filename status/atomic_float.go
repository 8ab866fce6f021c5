package status

import (
	"math"
	"sync/atomic"
	"time"
)

// AtomicFloat provides atomic float64 operations using bit conversion
// Zero value is ready to use (represents 0.0)
type AtomicFloat struct {
	bits atomic.Uint64
}

// Set stores a float64 value atomically
func (f *AtomicFloat) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
}

// Get loads the float64 value atomically
func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// SetDuration stores d in seconds
func (f *AtomicFloat) SetDuration(d time.Duration) {
	f.Set(d.Seconds())
}

// Duration loads the value as seconds
func (f *AtomicFloat) Duration() time.Duration {
	return time.Duration(f.Get() * float64(time.Second))
}
