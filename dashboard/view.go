package dashboard

import (
	"time"

	"github.com/lixenwraith/smiledash/smile"
	"github.com/lixenwraith/smiledash/status"
)

// ivScale converts fractional implied volatility to percent
const ivScale = 100

// Metrics is the producer and channel health shown in the status bar
type Metrics struct {
	Cycles      int64
	Published   int64
	Failures    int64
	Consecutive int64
	LastError   string
	Source      string
	Queue       int
	QueueCap    int
	Dropped     int64
}

// readMetrics samples the registry, missing keys read as zero
func readMetrics(reg *status.Registry) Metrics {
	if reg == nil {
		return Metrics{}
	}
	return Metrics{
		Cycles:      reg.LoadInt(status.KeyProducerCycles),
		Published:   reg.LoadInt(status.KeyProducerPublished),
		Failures:    reg.LoadInt(status.KeyProducerFailures),
		Consecutive: reg.LoadInt(status.KeyProducerConsecutive),
		LastError:   reg.LoadString(status.KeyProducerLastError),
		Source:      reg.LoadString(status.KeyProducerLastSource),
		Dropped:     reg.LoadInt(status.KeyRenderDropped),
	}
}

// View is everything one frame draws
type View struct {
	Now     time.Time
	HasData bool
	Label   string
	Seq     uint64
	Age     time.Duration
	Stale   bool

	Points []smile.Point // IV in percent
	Fit    []smile.Point // Empty when the fit is disabled or failed
	Rows   []smile.QuoteRow

	XMin, XMax float64 // 0/0 auto-scales the axis
	YMin, YMax float64

	Metrics Metrics
	QuitKey rune
}

// frameInput is the loop state a View is derived from
type frameInput struct {
	snap    smile.Snapshot
	have    bool
	fit     []smile.Point
	stale   bool
	now     time.Time
	metrics Metrics
}

// buildView derives the frame contents, it does not mutate any input
func buildView(in frameInput, opts Options) View {
	v := View{
		Now:     in.now,
		HasData: in.have,
		Stale:   in.stale,
		Metrics: in.metrics,
		QuitKey: opts.QuitKey,
		XMin:    opts.Bounds.XMin,
		XMax:    opts.Bounds.XMax,
		YMin:    opts.Bounds.YMin,
		YMax:    opts.Bounds.YMax,
	}
	if !in.have {
		return v
	}

	scaled := in.snap.Dataset.Scaled(1, ivScale)
	v.Label = in.snap.Dataset.Label()
	v.Seq = in.snap.Seq
	v.Age = in.snap.Age(in.now)
	v.Points = scaled.Points()
	v.Fit = in.fit
	v.Rows = in.snap.Dataset.Rows()
	return v
}

// fitSamples is the resolution of the drawn fit curve
const fitSamples = 96

// fitCurve returns the least-squares polynomial through ds in percent, nil when disabled or degenerate
func fitCurve(ds smile.Dataset, degree int) []smile.Point {
	if degree <= 0 || ds.Len() < 2 {
		return nil
	}
	scaled := ds.Scaled(1, ivScale)
	poly, err := smile.FitPolynomial(scaled, degree)
	if err != nil {
		return nil
	}
	xMin, xMax, _, _, ok := scaled.Bounds()
	if !ok || xMax <= xMin {
		return nil
	}
	return poly.Sample(xMin, xMax, fitSamples)
}
