package tui

import "github.com/lixenwraith/smiledash/terminal"

// LineType selects the glyph set for borders and rules
type LineType uint8

const (
	LineSingle LineType = iota
	LineRounded
	LineNone // Blank border, keeps the inset
)

// border glyphs: top-left, horizontal, top-right, vertical, bottom-left, bottom-right
type border struct {
	tl, h, tr, v, bl, br rune
}

var borders = [...]border{
	LineSingle:  {'┌', '─', '┐', '│', '└', '┘'},
	LineRounded: {'╭', '─', '╮', '│', '╰', '╯'},
	LineNone:    {' ', ' ', ' ', ' ', ' ', ' '},
}

func borderOf(line LineType) border {
	if int(line) >= len(borders) {
		return borders[LineSingle]
	}
	return borders[line]
}

// Text writes s from (x, y) one rune per cell, clipped at the region edges
func (r Region) Text(x, y int, s string, fg, bg terminal.RGB, attr terminal.Attr) {
	if y < 0 || y >= r.H {
		return
	}
	for _, ch := range s {
		if x >= r.W {
			return
		}
		r.Cell(x, y, ch, fg, bg, attr)
		x++
	}
}

// TextCenter writes s centered on row y
func (r Region) TextCenter(y int, s string, fg, bg terminal.RGB, attr terminal.Attr) {
	r.Text((r.W-RuneLen(s))/2, y, s, fg, bg, attr)
}

// Box outlines the region
func (r Region) Box(line LineType, fg terminal.RGB) {
	if r.W < 2 || r.H < 2 {
		return
	}
	b := borderOf(line)
	right, bottom := r.W-1, r.H-1
	none := terminal.RGB{}

	for x := 1; x < right; x++ {
		r.Cell(x, 0, b.h, fg, none, terminal.AttrNone)
		r.Cell(x, bottom, b.h, fg, none, terminal.AttrNone)
	}
	for y := 1; y < bottom; y++ {
		r.Cell(0, y, b.v, fg, none, terminal.AttrNone)
		r.Cell(right, y, b.v, fg, none, terminal.AttrNone)
	}
	r.Cell(0, 0, b.tl, fg, none, terminal.AttrNone)
	r.Cell(right, 0, b.tr, fg, none, terminal.AttrNone)
	r.Cell(0, bottom, b.bl, fg, none, terminal.AttrNone)
	r.Cell(right, bottom, b.br, fg, none, terminal.AttrNone)
}

// Card draws a box with a centered bold title and returns its interior
func (r Region) Card(title string, line LineType, fg terminal.RGB) Region {
	r.Box(line, fg)
	if title != "" && r.W > 4 {
		label := " " + Truncate(title, r.W-4) + " "
		r.Text((r.W-RuneLen(label))/2, 0, label, fg, terminal.RGB{}, terminal.AttrBold)
	}
	return r.Inset(1)
}

// HLine draws a horizontal rule on row y
func (r Region) HLine(y int, line LineType, fg terminal.RGB) {
	h := borderOf(line).h
	for x := 0; x < r.W; x++ {
		r.Cell(x, y, h, fg, terminal.RGB{}, terminal.AttrNone)
	}
}
