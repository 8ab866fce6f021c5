package tui

import "github.com/lixenwraith/smiledash/terminal"

// Region is a clipped window onto a row-major cell buffer
// Coordinates passed to its methods are relative to the region origin
type Region struct {
	Cells  []terminal.Cell
	TotalW int // Row stride of Cells
	X, Y   int // Origin within the buffer
	W, H   int
}

func NewRegion(cells []terminal.Cell, totalW, x, y, w, h int) Region {
	return Region{Cells: cells, TotalW: totalW, X: x, Y: y, W: w, H: h}
}

// Sub returns the intersection of the given rectangle with r
func (r Region) Sub(x, y, w, h int) Region {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, r.W), min(y+h, r.H)
	return Region{
		Cells:  r.Cells,
		TotalW: r.TotalW,
		X:      r.X + x0,
		Y:      r.Y + y0,
		W:      max(x1-x0, 0),
		H:      max(y1-y0, 0),
	}
}

// Inset shrinks r by n on every side
func (r Region) Inset(n int) Region {
	return r.Sub(n, n, r.W-2*n, r.H-2*n)
}

// index maps region coordinates to a buffer offset, -1 when clipped
func (r Region) index(x, y int) int {
	if x < 0 || y < 0 || x >= r.W || y >= r.H {
		return -1
	}
	ax := r.X + x
	if ax >= r.TotalW {
		return -1
	}
	idx := (r.Y+y)*r.TotalW + ax
	if idx >= len(r.Cells) {
		return -1
	}
	return idx
}

// Cell writes one glyph, a zero bg keeps the background already in the buffer
func (r Region) Cell(x, y int, ch rune, fg, bg terminal.RGB, attr terminal.Attr) {
	idx := r.index(x, y)
	if idx < 0 {
		return
	}
	if bg == (terminal.RGB{}) {
		bg = r.Cells[idx].Bg
	}
	r.Cells[idx] = terminal.Cell{Rune: ch, Fg: fg, Bg: bg, Attrs: attr}
}

// Fill blanks the region with bg
func (r Region) Fill(bg terminal.RGB) {
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			if idx := r.index(x, y); idx >= 0 {
				r.Cells[idx] = terminal.Cell{Rune: ' ', Bg: bg}
			}
		}
	}
}
