package smile

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewDatasetSortsAndCopies(t *testing.T) {
	in := []Point{{X: 3, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 3}}
	ds := NewDataset("test", in, nil)

	in[0] = Point{X: 99, Y: 99}

	want := []float64{1, 2, 3}
	for i, x := range want {
		if ds.At(i).X != x {
			t.Errorf("Expected x[%d]=%v, got %v", i, x, ds.At(i).X)
		}
	}

	out := ds.Points()
	out[0].Y = 42
	if ds.At(0).Y == 42 {
		t.Error("Expected Points to return a copy")
	}
}

func TestNewDatasetKeepsDuplicateOrder(t *testing.T) {
	ds := NewDataset("", []Point{{X: 2, Y: 1}, {X: 1, Y: 5}, {X: 2, Y: 2}}, nil)

	if ds.Len() != 3 {
		t.Fatalf("Expected duplicates kept, got %d points", ds.Len())
	}
	if ds.At(1).Y != 1 || ds.At(2).Y != 2 {
		t.Errorf("Expected stable order for duplicate x, got %v", ds.Points())
	}
}

func TestDatasetRowsSortedByStrike(t *testing.T) {
	rows := []QuoteRow{{Strike: 110}, {Strike: 90}, {Strike: 100}}
	ds := NewDataset("", nil, rows)

	got := ds.Rows()
	if got[0].Strike != 90 || got[2].Strike != 110 {
		t.Errorf("Expected rows sorted by strike, got %v", got)
	}
}

func TestDatasetScaled(t *testing.T) {
	ds := NewDataset("x", []Point{{X: 1000, Y: 0.25}}, nil)
	pct := ds.Scaled(1, 100)

	if pct.At(0).Y != 25 {
		t.Errorf("Expected 25, got %v", pct.At(0).Y)
	}
	if ds.At(0).Y != 0.25 {
		t.Error("Expected original dataset unchanged")
	}
	if pct.Label() != "x" {
		t.Errorf("Expected label preserved, got %q", pct.Label())
	}
}

func TestDatasetBounds(t *testing.T) {
	ds := NewDataset("", []Point{{X: 5, Y: 1}, {X: 1, Y: math.NaN()}, {X: 3, Y: -2}}, nil)

	xMin, xMax, yMin, yMax, ok := ds.Bounds()
	if !ok {
		t.Fatal("Expected bounds")
	}
	if xMin != 3 || xMax != 5 || yMin != -2 || yMax != 1 {
		t.Errorf("Expected [3,5]x[-2,1], got [%v,%v]x[%v,%v]", xMin, xMax, yMin, yMax)
	}

	if _, _, _, _, ok := (Dataset{}).Bounds(); ok {
		t.Error("Expected no bounds for empty dataset")
	}
}

func TestFitPolynomialRecoversQuadratic(t *testing.T) {
	var pts []Point
	for k := 800.0; k <= 1800; k += 50 {
		pts = append(pts, Point{X: k, Y: SyntheticIV(k, SyntheticCenter)})
	}
	ds := NewDataset("", pts, nil)

	p, err := FitPolynomial(ds, 4)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	for _, k := range []float64{800, 1100, 1300, 1650} {
		want := SyntheticIV(k, SyntheticCenter)
		if got := p.Eval(k); math.Abs(got-want) > 1e-9 {
			t.Errorf("Expected fit(%v)=%v, got %v", k, want, got)
		}
	}
}

func TestFitPolynomialLowersDegree(t *testing.T) {
	ds := NewDataset("", []Point{{X: 1, Y: 1}, {X: 2, Y: 3}, {X: 2, Y: 3}}, nil)

	p, err := FitPolynomial(ds, 4)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if p.Degree != 1 {
		t.Errorf("Expected degree lowered to 1, got %d", p.Degree)
	}
	if got := p.Eval(3); math.Abs(got-5) > 1e-9 {
		t.Errorf("Expected line through points, got %v at x=3", got)
	}
}

func TestFitPolynomialHighDegree(t *testing.T) {
	// Degree 8 over a wide strike range: exact data must be reproduced
	curve := func(k float64) float64 {
		u := (k - 1300) / 500
		return 0.2 + 0.05*u*u - 0.01*math.Pow(u, 5) + 0.02*math.Pow(u, 8)
	}
	var pts []Point
	for k := 800.0; k <= 1800; k += 50 {
		pts = append(pts, Point{X: k, Y: curve(k)})
	}

	p, err := FitPolynomial(NewDataset("", pts, nil), 8)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if p.Degree != 8 {
		t.Errorf("Expected degree 8, got %d", p.Degree)
	}
	for _, k := range []float64{800, 1025, 1300, 1575, 1800} {
		if got, want := p.Eval(k), curve(k); math.Abs(got-want) > 1e-8 {
			t.Errorf("Expected fit(%v)=%v, got %v", k, want, got)
		}
	}
}

func TestFitPolynomialErrors(t *testing.T) {
	if _, err := FitPolynomial(Dataset{}, 2); !errors.Is(err, ErrNoPoints) {
		t.Errorf("Expected ErrNoPoints, got %v", err)
	}
	if _, err := FitPolynomial(Dataset{}, -1); err == nil {
		t.Error("Expected error for negative degree")
	}
}

func TestFitSingleStrike(t *testing.T) {
	ds := NewDataset("", []Point{{X: 100, Y: 0.2}, {X: 100, Y: 0.4}}, nil)

	p, err := FitPolynomial(ds, 4)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if got := p.Eval(100); math.Abs(got-0.3) > 1e-9 {
		t.Errorf("Expected mean 0.3, got %v", got)
	}
}

func TestPolynomialSample(t *testing.T) {
	p := Polynomial{Coef: []float64{1, 1}, Scale: 1}
	pts := p.Sample(0, 4, 5)
	if len(pts) != 5 {
		t.Fatalf("Expected 5 samples, got %d", len(pts))
	}
	if pts[4].X != 4 || pts[4].Y != 5 {
		t.Errorf("Expected (4,5), got %+v", pts[4])
	}
}

func TestSyntheticCompute(t *testing.T) {
	s := NewSynthetic()

	ds, err := s.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if ds.Len() != 21 {
		t.Errorf("Expected 21 strikes, got %d", ds.Len())
	}
	if ds.At(0).X != 800 || ds.At(ds.Len()-1).X != 1800 {
		t.Errorf("Expected strikes 800..1800, got %v..%v", ds.At(0).X, ds.At(ds.Len()-1).X)
	}
	// First cycle is undrifted
	if got := ds.At(10).Y; math.Abs(got-SyntheticFloor) > 1e-12 {
		t.Errorf("Expected floor at centre strike, got %v", got)
	}

	next, _ := s.Compute(context.Background())
	if next.Equal(ds) {
		t.Error("Expected drift between cycles")
	}
}

func TestSyntheticHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewSynthetic().Compute(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSnapshotAge(t *testing.T) {
	now := time.Now()
	snap := NewSnapshot(Dataset{}, 1, "synthetic", now.Add(-3*time.Second))

	if snap.IsZero() {
		t.Error("Expected stamped snapshot not to be zero")
	}
	if got := snap.Age(now); got != 3*time.Second {
		t.Errorf("Expected 3s age, got %v", got)
	}
	if !(Snapshot{}).IsZero() {
		t.Error("Expected zero snapshot")
	}
}
