package tui

import "github.com/lixenwraith/smiledash/terminal"

// Align positions text within a column
type Align uint8

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

type TableOpts struct {
	ColAligns   []Align // Per column, missing entries align left
	HeaderStyle Style
	RowStyle    Style
	AltRowStyle Style // Odd rows, zero uses RowStyle
	Gap         int   // Blank cells between columns
}

func DefaultTableOpts() TableOpts {
	return TableOpts{
		HeaderStyle: Style{Attr: terminal.AttrBold},
		Gap:         1,
	}
}

// columnWidths sizes each column to its widest cell and shrinks all columns
// proportionally when the total exceeds avail
func columnWidths(avail, gap int, headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = RuneLen(h)
	}
	for _, row := range rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			widths[i] = max(widths[i], RuneLen(row[i]))
		}
	}

	content := 0
	for _, w := range widths {
		content += w
	}
	room := avail - gap*(len(widths)-1)
	if content > room && room >= len(widths) {
		for i, w := range widths {
			widths[i] = max(w*room/content, 1)
		}
	}
	return widths
}

// Table draws a header row followed by as many data rows as fit
func (r Region) Table(headers []string, rows [][]string, opts TableOpts) {
	if r.W < 1 || r.H < 1 || len(headers) == 0 {
		return
	}
	widths := columnWidths(r.W, opts.Gap, headers, rows)

	r.tableRow(0, headers, widths, opts, opts.HeaderStyle)
	for i, row := range rows {
		y := i + 1
		if y >= r.H {
			return
		}
		style := opts.RowStyle
		if i%2 == 1 && opts.AltRowStyle != (Style{}) {
			style = opts.AltRowStyle
			// Band the full row, not just the cells that hold text
			r.Sub(0, y, r.W, 1).Fill(style.Bg)
		}
		r.tableRow(y, row, widths, opts, style)
	}
}

func (r Region) tableRow(y int, cells []string, widths []int, opts TableOpts, style Style) {
	x := 0
	for i, w := range widths {
		if x >= r.W {
			return
		}
		text := ""
		if i < len(cells) {
			text = Truncate(cells[i], w)
		}
		pad := w - RuneLen(text)
		align := AlignLeft
		if i < len(opts.ColAligns) {
			align = opts.ColAligns[i]
		}
		switch align {
		case AlignRight:
			r.Text(x+pad, y, text, style.Fg, style.Bg, style.Attr)
		case AlignCenter:
			r.Text(x+pad/2, y, text, style.Fg, style.Bg, style.Attr)
		default:
			r.Text(x, y, text, style.Fg, style.Bg, style.Attr)
		}
		x += w + opts.Gap
	}
}
