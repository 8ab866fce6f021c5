package smile

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
)

// Synthetic strike grid and smile shape
const (
	SyntheticStrikeMin  = 800
	SyntheticStrikeMax  = 1800
	SyntheticStrikeStep = 50
	SyntheticCenter     = 1300.0
	SyntheticFloor      = 0.02
	SyntheticCurvature  = 700_000.0

	// Centre swings by this many strike points over syntheticPeriod cycles
	syntheticDrift  = 60.0
	syntheticPeriod = 30
)

// Synthetic is a toy U-shaped smile source
// iv(k) = floor + (k - m)^2 / curvature, where m drifts slowly each cycle so redraws are visible
type Synthetic struct {
	cycle atomic.Uint64
}

// NewSynthetic creates a synthetic source starting at the undrifted centre
func NewSynthetic() *Synthetic {
	return &Synthetic{}
}

// Name identifies the source in logs and the status bar
func (s *Synthetic) Name() string {
	return "synthetic"
}

// Compute builds the next smile, it never fails unless ctx is done
func (s *Synthetic) Compute(ctx context.Context) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return Dataset{}, err
	}

	n := s.cycle.Add(1) - 1
	m := SyntheticCenter + syntheticDrift*math.Sin(2*math.Pi*float64(n)/syntheticPeriod)

	points := make([]Point, 0, (SyntheticStrikeMax-SyntheticStrikeMin)/SyntheticStrikeStep+1)
	for k := SyntheticStrikeMin; k <= SyntheticStrikeMax; k += SyntheticStrikeStep {
		points = append(points, Point{X: float64(k), Y: SyntheticIV(float64(k), m)})
	}

	return NewDataset(fmt.Sprintf("synthetic smile m=%.0f", m), points, nil), nil
}

// SyntheticIV is the toy smile value at strike k with centre m
func SyntheticIV(k, m float64) float64 {
	d := k - m
	return SyntheticFloor + d*d/SyntheticCurvature
}
