package smile

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is the unit handed from producer to renderer
type Snapshot struct {
	Dataset    Dataset
	Seq        uint64    // Producer cycle number, strictly increasing
	ID         uuid.UUID // Cycle identifier, matches producer log entries
	Source     string
	ProducedAt time.Time
}

// NewSnapshot stamps ds with a fresh cycle ID
func NewSnapshot(ds Dataset, seq uint64, source string, at time.Time) Snapshot {
	return Snapshot{
		Dataset:    ds,
		Seq:        seq,
		ID:         uuid.New(),
		Source:     source,
		ProducedAt: at,
	}
}

// IsZero reports whether no snapshot has been received yet
func (s Snapshot) IsZero() bool {
	return s.Seq == 0 && s.ID == uuid.Nil
}

// Age returns how long ago the snapshot was produced
func (s Snapshot) Age(now time.Time) time.Duration {
	if s.ProducedAt.IsZero() {
		return 0
	}
	return now.Sub(s.ProducedAt)
}
