package tui

import (
	"math"
	"strconv"

	"github.com/lixenwraith/smiledash/terminal"
)

// Braille dot bits indexed by [row][col] within a 2x4 cell
var brailleBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const brailleBase rune = 0x2800

// Series is one plotted data set
type Series struct {
	Name  string
	X, Y  []float64 // Paired coordinates, extra values in the longer slice are ignored
	Fg    terminal.RGB
	Lines bool // Connect consecutive points
}

// ChartOpts configures chart rendering
type ChartOpts struct {
	XMin, XMax float64 // Axis bounds, auto-scale if both 0
	YMin, YMax float64
	XPrec      int // Decimal places of axis labels
	YPrec      int
	YSuffix    string // Appended to y labels, e.g. "%"
	AxisFg     terminal.RGB
	LabelFg    terminal.RGB
}

// ChartBounds returns min/max over all series, padded when degenerate
func ChartBounds(series []Series) (xMin, xMax, yMin, yMax float64) {
	xMin, yMin = math.Inf(1), math.Inf(1)
	xMax, yMax = math.Inf(-1), math.Inf(-1)
	for _, s := range series {
		n := min(len(s.X), len(s.Y))
		for i := 0; i < n; i++ {
			x, y := s.X[i], s.Y[i]
			if math.IsNaN(x) || math.IsNaN(y) {
				continue
			}
			xMin, xMax = math.Min(xMin, x), math.Max(xMax, x)
			yMin, yMax = math.Min(yMin, y), math.Max(yMax, y)
		}
	}
	if math.IsInf(xMin, 1) {
		return 0, 1, 0, 1
	}
	if xMax == xMin {
		xMin, xMax = xMin-1, xMax+1
	}
	if yMax == yMin {
		yMin, yMax = yMin-1, yMax+1
	}
	return xMin, xMax, yMin, yMax
}

// Chart renders series on a braille canvas with a left y axis and bottom x axis
// Each cell holds 2x4 dots; where series overlap the later series colors the cell
func (r Region) Chart(series []Series, opts ChartOpts) {
	if r.W < 4 || r.H < 3 {
		return
	}

	xMin, xMax, yMin, yMax := opts.XMin, opts.XMax, opts.YMin, opts.YMax
	if xMin == 0 && xMax == 0 {
		xMin, xMax, _, _ = ChartBounds(series)
	}
	if yMin == 0 && yMax == 0 {
		_, _, yMin, yMax = ChartBounds(series)
	}
	if xMax <= xMin {
		xMax = xMin + 1
	}
	if yMax <= yMin {
		yMax = yMin + 1
	}

	yTop := strconv.FormatFloat(yMax, 'f', opts.YPrec, 64) + opts.YSuffix
	yMid := strconv.FormatFloat((yMin+yMax)/2, 'f', opts.YPrec, 64) + opts.YSuffix
	yBot := strconv.FormatFloat(yMin, 'f', opts.YPrec, 64) + opts.YSuffix
	labelW := max(RuneLen(yTop), RuneLen(yMid), RuneLen(yBot))
	if labelW > r.W/3 {
		labelW = r.W / 3
	}

	// Plot area excludes y labels, the axis column, the axis row and the x label row
	plotX := labelW + 1
	plotW := r.W - plotX
	plotH := r.H - 2
	if plotW < 1 || plotH < 1 {
		return
	}

	// Axes
	for y := 0; y < plotH; y++ {
		r.Cell(labelW, y, '│', opts.AxisFg, terminal.RGB{}, terminal.AttrNone)
	}
	r.Cell(labelW, plotH, '└', opts.AxisFg, terminal.RGB{}, terminal.AttrNone)
	for x := plotX; x < r.W; x++ {
		r.Cell(x, plotH, '─', opts.AxisFg, terminal.RGB{}, terminal.AttrNone)
	}

	// Y labels at top, middle and bottom rows
	r.Text(labelW-RuneLen(yTop), 0, yTop, opts.LabelFg, terminal.RGB{}, terminal.AttrNone)
	if plotH > 2 {
		r.Text(labelW-RuneLen(yMid), (plotH-1)/2, yMid, opts.LabelFg, terminal.RGB{}, terminal.AttrNone)
	}
	if plotH > 1 {
		r.Text(labelW-RuneLen(yBot), plotH-1, yBot, opts.LabelFg, terminal.RGB{}, terminal.AttrNone)
	}

	// X labels at left, middle and right
	xl := strconv.FormatFloat(xMin, 'f', opts.XPrec, 64)
	xm := strconv.FormatFloat((xMin+xMax)/2, 'f', opts.XPrec, 64)
	xr := strconv.FormatFloat(xMax, 'f', opts.XPrec, 64)
	labelY := plotH + 1
	r.Text(plotX, labelY, xl, opts.LabelFg, terminal.RGB{}, terminal.AttrNone)
	if plotW > RuneLen(xl)+RuneLen(xm)+RuneLen(xr)+2 {
		r.Text(plotX+(plotW-RuneLen(xm))/2, labelY, xm, opts.LabelFg, terminal.RGB{}, terminal.AttrNone)
	}
	if plotW > RuneLen(xl)+RuneLen(xr)+1 {
		r.Text(r.W-RuneLen(xr), labelY, xr, opts.LabelFg, terminal.RGB{}, terminal.AttrNone)
	}

	canvas := newBrailleCanvas(plotW, plotH)
	dotW, dotH := plotW*2, plotH*4

	for si, s := range series {
		n := min(len(s.X), len(s.Y))
		prevOK := false
		var prevX, prevY int
		for i := 0; i < n; i++ {
			if math.IsNaN(s.X[i]) || math.IsNaN(s.Y[i]) {
				prevOK = false
				continue
			}
			px := int(math.Round((s.X[i] - xMin) / (xMax - xMin) * float64(dotW-1)))
			py := int(math.Round((1 - (s.Y[i]-yMin)/(yMax-yMin)) * float64(dotH-1)))
			px, py = clampInt(px, -dotW, 2*dotW), clampInt(py, -dotH, 2*dotH)
			if s.Lines && prevOK {
				canvas.line(prevX, prevY, px, py, si)
			} else {
				canvas.set(px, py, si)
			}
			prevX, prevY, prevOK = px, py, true
		}
	}

	for cy := 0; cy < plotH; cy++ {
		for cx := 0; cx < plotW; cx++ {
			idx := cy*plotW + cx
			if canvas.dots[idx] == 0 {
				continue
			}
			r.Cell(plotX+cx, cy, brailleBase+canvas.dots[idx], series[canvas.owner[idx]].Fg, terminal.RGB{}, terminal.AttrNone)
		}
	}
}

// brailleCanvas accumulates dots per cell and the series that last touched each cell
type brailleCanvas struct {
	w, h  int
	dots  []rune
	owner []int
}

func newBrailleCanvas(w, h int) *brailleCanvas {
	return &brailleCanvas{
		w:     w,
		h:     h,
		dots:  make([]rune, w*h),
		owner: make([]int, w*h),
	}
}

// set lights a dot, out-of-canvas dots are clipped
func (c *brailleCanvas) set(x, y, series int) {
	if x < 0 || y < 0 || x >= c.w*2 || y >= c.h*4 {
		return
	}
	idx := (y/4)*c.w + x/2
	c.dots[idx] |= brailleBits[y%4][x%2]
	c.owner[idx] = series
}

// line draws with Bresenham between two dot coordinates
func (c *brailleCanvas) line(x0, y0, x1, y1, series int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for steps := 0; steps <= dx-dy; steps++ {
		c.set(x0, y0, series)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
