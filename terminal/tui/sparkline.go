package tui

import "math"

// sparkLevels are the eight block heights, lowest first
var sparkLevels = [...]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// SparklineOpts configures Sparkline, a zero Min and Max scale to the data
type SparklineOpts struct {
	Min, Max float64
	Style    Style
}

// Sparkline draws values as block glyphs on row y starting at x
// More values than width are averaged into width buckets so the whole series stays visible
func (r Region) Sparkline(x, y, width int, values []float64, opts SparklineOpts) {
	width = min(width, r.W-x)
	if y < 0 || y >= r.H || width <= 0 || len(values) == 0 {
		return
	}

	lo, hi := opts.Min, opts.Max
	if lo == 0 && hi == 0 {
		lo, hi = math.Inf(1), math.Inf(-1)
		for _, v := range values {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	cols := min(width, len(values))
	for c := 0; c < cols; c++ {
		start := c * len(values) / cols
		end := max((c+1)*len(values)/cols, start+1)
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		norm := (sum/float64(end-start) - lo) / span
		level := int(math.Round(norm * float64(len(sparkLevels)-1)))
		level = min(max(level, 0), len(sparkLevels)-1)
		r.Cell(x+c, y, sparkLevels[level], opts.Style.Fg, opts.Style.Bg, opts.Style.Attr)
	}
}
