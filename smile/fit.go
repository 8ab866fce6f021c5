package smile

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrNoPoints is returned when a fit has nothing to work with
var ErrNoPoints = errors.New("no finite points")

// ErrSingular is returned when the least-squares system has no solution
var ErrSingular = errors.New("singular system")

// Polynomial is a least-squares fit evaluated on x normalized to [-1, 1]
type Polynomial struct {
	Coef   []float64 // Coef[i] multiplies u^i where u = (x - Shift) / Scale
	Shift  float64
	Scale  float64
	Degree int
}

// FitPolynomial fits y = p(x) of the given degree by least squares
// The degree is lowered to len(points)-1 when there are too few distinct samples
func FitPolynomial(ds Dataset, degree int) (Polynomial, error) {
	if degree < 0 {
		return Polynomial{}, fmt.Errorf("fit degree %d: must be non-negative", degree)
	}

	xs := make([]float64, 0, ds.Len())
	ys := make([]float64, 0, ds.Len())
	for _, p := range ds.points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			continue
		}
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}
	if len(xs) == 0 {
		return Polynomial{}, ErrNoPoints
	}
	distinct := make(map[float64]struct{}, len(xs))
	for _, x := range xs {
		distinct[x] = struct{}{}
	}
	if degree > len(distinct)-1 {
		degree = len(distinct) - 1
	}

	xMin, xMax := xs[0], xs[0]
	for _, x := range xs {
		xMin, xMax = math.Min(xMin, x), math.Max(xMax, x)
	}
	shift := (xMin + xMax) / 2
	scale := (xMax - xMin) / 2
	if scale == 0 {
		scale = 1
		degree = 0
	}

	// Vandermonde rows [1 u u^2 ...] solved by QR least squares
	n := degree + 1
	v := mat.NewDense(len(xs), n, nil)
	for r, x := range xs {
		u := (x - shift) / scale
		p := 1.0
		for col := 0; col < n; col++ {
			v.Set(r, col, p)
			p *= u
		}
	}

	var c mat.VecDense
	if err := c.SolveVec(v, mat.NewVecDense(len(ys), ys)); err != nil {
		// A Condition error still carries a usable solution
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return Polynomial{}, fmt.Errorf("fit degree %d: %w: %v", degree, ErrSingular, err)
		}
	}
	coef := make([]float64, n)
	for i := range coef {
		coef[i] = c.AtVec(i)
	}

	return Polynomial{Coef: coef, Shift: shift, Scale: scale, Degree: degree}, nil
}

// Eval evaluates the polynomial at x using Horner's rule
func (p Polynomial) Eval(x float64) float64 {
	if len(p.Coef) == 0 {
		return math.NaN()
	}
	u := (x - p.Shift) / p.Scale
	v := 0.0
	for i := len(p.Coef) - 1; i >= 0; i-- {
		v = v*u + p.Coef[i]
	}
	return v
}

// Sample evaluates the polynomial at n evenly spaced x in [xMin, xMax]
func (p Polynomial) Sample(xMin, xMax float64, n int) []Point {
	if n < 2 {
		return []Point{{X: xMin, Y: p.Eval(xMin)}}
	}
	out := make([]Point, n)
	step := (xMax - xMin) / float64(n-1)
	for i := range out {
		x := xMin + float64(i)*step
		out[i] = Point{X: x, Y: p.Eval(x)}
	}
	return out
}
