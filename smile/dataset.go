package smile

import (
	"math"
	"slices"
)

// Point is one (strike, value) sample
type Point struct {
	X float64
	Y float64
}

// Quote is one side of an option chain row
type Quote struct {
	Contract     string
	Last         float64
	Bid          float64
	Ask          float64
	Volume       int64
	OpenInterest int64
	IV           float64 // Fraction, 0.25 == 25%
}

// QuoteRow pairs the call and put quoted at one strike
type QuoteRow struct {
	Strike  float64
	Call    Quote
	Put     Quote
	HasCall bool
	HasPut  bool
}

// Dataset is an immutable x-ascending point sequence with optional chain rows
// The zero value is an empty dataset
type Dataset struct {
	label  string
	points []Point
	rows   []QuoteRow
}

// NewDataset copies points and rows and stable-sorts both by x / strike
// Duplicate x values are kept in input order
func NewDataset(label string, points []Point, rows []QuoteRow) Dataset {
	ps := slices.Clone(points)
	slices.SortStableFunc(ps, func(a, b Point) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})

	rs := slices.Clone(rows)
	slices.SortStableFunc(rs, func(a, b QuoteRow) int {
		switch {
		case a.Strike < b.Strike:
			return -1
		case a.Strike > b.Strike:
			return 1
		}
		return 0
	})

	return Dataset{label: label, points: ps, rows: rs}
}

// Label describes the dataset, e.g. symbol, expiry and side
func (d Dataset) Label() string {
	return d.label
}

// Len returns the number of points
func (d Dataset) Len() int {
	return len(d.points)
}

// At returns point i
func (d Dataset) At(i int) Point {
	return d.points[i]
}

// Points returns a copy of the points
func (d Dataset) Points() []Point {
	return slices.Clone(d.points)
}

// Rows returns a copy of the chain rows, nil when the source has none
func (d Dataset) Rows() []QuoteRow {
	return slices.Clone(d.rows)
}

// XY returns the coordinates as parallel slices for plotting
func (d Dataset) XY() (xs, ys []float64) {
	xs = make([]float64, len(d.points))
	ys = make([]float64, len(d.points))
	for i, p := range d.points {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

// Scaled returns a new dataset with every point multiplied by fx, fy
// Rows are shared with the receiver since neither side mutates them
func (d Dataset) Scaled(fx, fy float64) Dataset {
	ps := make([]Point, len(d.points))
	for i, p := range d.points {
		ps[i] = Point{X: p.X * fx, Y: p.Y * fy}
	}
	return Dataset{label: d.label, points: ps, rows: d.rows}
}

// Bounds returns the extent of finite points, ok is false for an empty dataset
func (d Dataset) Bounds() (xMin, xMax, yMin, yMax float64, ok bool) {
	xMin, yMin = math.Inf(1), math.Inf(1)
	xMax, yMax = math.Inf(-1), math.Inf(-1)
	for _, p := range d.points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			continue
		}
		ok = true
		xMin, xMax = math.Min(xMin, p.X), math.Max(xMax, p.X)
		yMin, yMax = math.Min(yMin, p.Y), math.Max(yMax, p.Y)
	}
	if !ok {
		return 0, 0, 0, 0, false
	}
	return xMin, xMax, yMin, yMax, true
}

// Equal reports whether both datasets carry the same label and points
func (d Dataset) Equal(o Dataset) bool {
	return d.label == o.label && slices.Equal(d.points, o.points)
}
