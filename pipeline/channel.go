package pipeline

import (
	"context"

	"github.com/lixenwraith/smiledash/smile"
)

// DefaultCapacity is the number of snapshots that may be outstanding
const DefaultCapacity = 8

// Channel is a bounded FIFO hand-off from a single producer to the renderer
type Channel struct {
	ch chan smile.Snapshot
}

// NewChannel creates a channel holding up to capacity snapshots, minimum 1
func NewChannel(capacity int) *Channel {
	if capacity < 1 {
		capacity = 1
	}
	return &Channel{ch: make(chan smile.Snapshot, capacity)}
}

// Publish enqueues snap, blocking while the channel is full
// Returns ctx.Err() if ctx is done before space frees
func (c *Channel) Publish(ctx context.Context, snap smile.Snapshot) error {
	// Prefer cancellation over a racing free slot
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case c.ch <- snap:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain takes every queued snapshot without waiting and returns the last one
// Returns false when the channel was empty
func (c *Channel) Drain() (smile.Snapshot, bool) {
	snap, _, ok := c.DrainCount()
	return snap, ok
}

// DrainCount is Drain that also reports how many snapshots were superseded
func (c *Channel) DrainCount() (smile.Snapshot, int, bool) {
	var (
		latest smile.Snapshot
		n      int
	)
	for {
		select {
		case snap := <-c.ch:
			latest = snap
			n++
		default:
			if n == 0 {
				return latest, 0, false
			}
			return latest, n - 1, true
		}
	}
}

// Len returns the number of queued snapshots
func (c *Channel) Len() int {
	return len(c.ch)
}

// Cap returns the channel capacity
func (c *Channel) Cap() int {
	return cap(c.ch)
}
