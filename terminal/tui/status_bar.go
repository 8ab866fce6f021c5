package tui

import "github.com/lixenwraith/smiledash/terminal"

// BarSection is one label/value pair of a status bar
type BarSection struct {
	Label      string
	Value      string
	LabelStyle Style
	ValueStyle Style
	Priority   int // Lower priorities are dropped first when the bar overflows
}

func (s BarSection) width() int {
	return RuneLen(s.Label) + RuneLen(s.Value)
}

type BarAlign uint8

const (
	BarAlignRight BarAlign = iota
	BarAlignLeft
)

type BarOpts struct {
	Separator string
	SepStyle  Style
	Bg        terminal.RGB
	Align     BarAlign
	Padding   int
}

func DefaultBarOpts() BarOpts {
	return BarOpts{
		Separator: " │ ",
		SepStyle:  Style{Fg: terminal.RGB{R: 80, G: 80, B: 100}},
		Padding:   1,
	}
}

// StatusBar paints row y with opts.Bg and lays out the sections that fit
// Section order is preserved, overflow removes the lowest priority section first
func (r Region) StatusBar(y int, sections []BarSection, opts BarOpts) {
	if y < 0 || y >= r.H {
		return
	}
	if opts.Separator == "" {
		opts.Separator = " │ "
	}
	if opts.Padding <= 0 {
		opts.Padding = 1
	}

	for x := 0; x < r.W; x++ {
		r.Cell(x, y, ' ', terminal.RGB{}, opts.Bg, terminal.AttrNone)
	}

	sepW := RuneLen(opts.Separator)
	avail := r.W - 2*opts.Padding
	shown := fitSections(sections, sepW, avail)
	if len(shown) == 0 {
		return
	}

	used := (len(shown) - 1) * sepW
	for _, s := range shown {
		used += s.width()
	}

	x := opts.Padding
	if opts.Align == BarAlignRight {
		x = max(r.W-opts.Padding-used, opts.Padding)
	}
	line := r.Sub(0, y, r.W-opts.Padding, 1)

	for i, s := range shown {
		if i > 0 {
			line.Text(x, 0, opts.Separator, opts.SepStyle.Fg, opts.Bg, opts.SepStyle.Attr)
			x += sepW
		}
		line.Text(x, 0, s.Label, s.LabelStyle.Fg, opts.Bg, s.LabelStyle.Attr)
		x += RuneLen(s.Label)
		line.Text(x, 0, s.Value, s.ValueStyle.Fg, opts.Bg, s.ValueStyle.Attr)
		x += RuneLen(s.Value)
	}
}

// fitSections drops the lowest priority sections until the rest fit in avail
// A single remaining section is kept and clipped at draw time
func fitSections(sections []BarSection, sepW, avail int) []BarSection {
	out := append([]BarSection(nil), sections...)
	for len(out) > 1 {
		total := (len(out) - 1) * sepW
		for _, s := range out {
			total += s.width()
		}
		if total <= avail {
			break
		}
		drop := 0
		for i, s := range out {
			if s.Priority < out[drop].Priority {
				drop = i
			}
		}
		out = append(out[:drop], out[drop+1:]...)
	}
	return out
}
