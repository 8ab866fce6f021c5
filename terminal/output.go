package terminal

import (
	"errors"
	"io"
	"unicode/utf8"
)

var errShortBuffer = errors.New("cell buffer smaller than frame")

// outputBuffer diffs each frame against what the terminal already shows
// and writes only the changed runs in one Write call
type outputBuffer struct {
	w         io.Writer
	colorMode ColorMode

	front  []Cell
	width  int
	height int

	// Frame scratch, reused across flushes
	buf []byte
}

func newOutputBuffer(w io.Writer, colorMode ColorMode) *outputBuffer {
	return &outputBuffer{
		w:         w,
		colorMode: colorMode,
		buf:       make([]byte, 0, 64*1024),
	}
}

// resize discards the front buffer, the next flush repaints every cell
func (o *outputBuffer) resize(width, height int) {
	o.width, o.height = width, height
	o.front = make([]Cell, width*height)
	o.forceFullRedraw()
}

// sameCell compares two cells as displayed, foreground is irrelevant for blanks
func sameCell(a, b Cell) bool {
	if a.Rune != b.Rune || a.Attrs != b.Attrs || a.Bg != b.Bg {
		return false
	}
	return a.Rune == 0 || a.Rune == ' ' || a.Fg == b.Fg
}

// flush writes the cells that differ from the front buffer
func (o *outputBuffer) flush(cells []Cell, width, height int) error {
	if width != o.width || height != o.height {
		o.resize(width, height)
	}
	if len(cells) < width*height {
		return errShortBuffer
	}

	buf := o.buf[:0]
	styled := false
	var lastFg, lastBg RGB
	var lastAttr Attr

	for y := 0; y < height; y++ {
		row := y * width
		cursor := -1
		for x := 0; x < width; x++ {
			c := cells[row+x]
			if sameCell(c, o.front[row+x]) {
				continue
			}
			if cursor != x {
				buf = appendMoveTo(buf, x, y)
			}
			if !styled || c.Fg != lastFg || c.Bg != lastBg || c.Attrs != lastAttr {
				buf = appendSGR(buf, c.Fg, c.Bg, c.Attrs, o.colorMode)
				lastFg, lastBg, lastAttr, styled = c.Fg, c.Bg, c.Attrs, true
			}
			ch := c.Rune
			if ch == 0 {
				ch = ' '
			}
			buf = utf8.AppendRune(buf, ch)
			o.front[row+x] = c
			cursor = x + 1
		}
	}

	o.buf = buf
	if len(buf) == 0 {
		return nil
	}
	buf = append(buf, csiSGR0...)
	_, err := o.w.Write(buf)
	return err
}

// forceFullRedraw marks every cell unknown so the next flush repaints all of them
func (o *outputBuffer) forceFullRedraw() {
	for i := range o.front {
		o.front[i] = Cell{Rune: -1}
	}
}

// clear paints the whole screen with bg and records the blank state
func (o *outputBuffer) clear(bg RGB) error {
	buf := appendSGR(o.buf[:0], RGBWhite, bg, AttrNone, o.colorMode)
	buf = append(buf, csiClear...)
	o.buf = buf

	for i := range o.front {
		o.front[i] = Cell{Rune: ' ', Fg: RGBWhite, Bg: bg}
	}
	_, err := o.w.Write(buf)
	return err
}
