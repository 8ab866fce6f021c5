package dashboard

import (
	"fmt"
	"strconv"
	"time"

	"github.com/lixenwraith/smiledash/smile"
	"github.com/lixenwraith/smiledash/terminal"
	"github.com/lixenwraith/smiledash/terminal/tui"
)

const (
	title          = "smiledash"
	minFrameW      = 24
	minFrameH      = 6
	tableMinFrameW = 100 // Below this the chain table is hidden
	tableRatio     = 0.45
	sparkMaxW      = 32
)

var chainHeaders = []string{"C IV", "C Last", "C Bid", "C Ask", "Strike", "P Ask", "P Bid", "P Last", "P IV"}

// render draws one complete frame into root
func render(root tui.Region, v View, th tui.Theme) {
	root.Fill(th.Bg)

	if root.W < minFrameW || root.H < minFrameH {
		root.TextCenter(root.H/2, "terminal too small", th.Warning, th.Bg, terminal.AttrBold)
		return
	}

	header, rest := tui.SplitVFixed(root, 1)
	body, footer := tui.SplitVFixed(rest, rest.H-1)

	renderHeader(header, v, th)
	renderStatus(footer, v, th)

	if len(v.Rows) > 0 && root.W >= tableMinFrameW {
		parts := tui.SplitH(body, 1-tableRatio, tableRatio)
		renderChart(parts[0], v, th)
		renderChain(parts[1], v, th)
		return
	}
	renderChart(body, v, th)
}

func renderHeader(r tui.Region, v View, th tui.Theme) {
	r.Fill(th.HeaderBg)

	r.Text(1, 0, title, th.HeaderFg, th.HeaderBg, terminal.AttrBold)
	x := 1 + tui.RuneLen(title)
	if v.Label != "" {
		label := " │ " + v.Label
		r.Text(x, 0, label, th.HeaderFg, th.HeaderBg, terminal.AttrNone)
		x += tui.RuneLen(label)
	}

	clock := v.Now.Format("15:04:05") + " "
	clockX := r.W - tui.RuneLen(clock)
	r.Text(clockX, 0, clock, th.HeaderFg, th.HeaderBg, terminal.AttrNone)

	// IV across strikes between label and clock
	if len(v.Points) > 1 {
		width := min(len(v.Points), sparkMaxW, clockX-x-4)
		if width > 1 {
			r.Sparkline(clockX-width-2, 0, width, ivValues(v.Points), tui.SparklineOpts{
				Style: tui.Style{Fg: th.Accent, Bg: th.HeaderBg},
			})
		}
	}
}

func renderChart(r tui.Region, v View, th tui.Theme) {
	inner := r.Card("IV % vs strike", tui.LineRounded, th.Border)
	if inner.W <= 0 || inner.H <= 0 {
		return
	}

	if !v.HasData {
		inner.TextCenter(inner.H/2, "waiting for first snapshot", th.Dim, th.Bg, terminal.AttrNone)
		return
	}

	series := []tui.Series{
		seriesOf("iv", v.Points, th.Series, false),
	}
	if len(v.Fit) > 0 {
		series = append(series, seriesOf("fit", v.Fit, th.Fit, true))
	}

	inner.Chart(series, tui.ChartOpts{
		XMin:    v.XMin,
		XMax:    v.XMax,
		YMin:    v.YMin,
		YMax:    v.YMax,
		XPrec:   0,
		YPrec:   1,
		YSuffix: "%",
		AxisFg:  th.Border,
		LabelFg: th.Dim,
	})
}

func renderChain(r tui.Region, v View, th tui.Theme) {
	inner := r.Card("Chain", tui.LineRounded, th.Border)
	if inner.W <= 0 || inner.H < 2 {
		return
	}

	// Window of rows centred on the smile minimum
	visible := inner.H - 1
	start := 0
	if len(v.Rows) > visible {
		start = clamp(minIVRow(v.Rows)-visible/2, 0, len(v.Rows)-visible)
	}
	end := min(start+visible, len(v.Rows))

	rows := make([][]string, 0, end-start)
	for _, row := range v.Rows[start:end] {
		rows = append(rows, chainRow(row))
	}

	opts := tui.DefaultTableOpts()
	opts.HeaderStyle = tui.Style{Fg: th.Accent, Attr: terminal.AttrBold}
	opts.RowStyle = tui.Style{Fg: th.Fg}
	opts.AltRowStyle = tui.Style{Fg: th.Fg, Bg: th.AltRowBg}
	opts.ColAligns = []tui.Align{
		tui.AlignRight, tui.AlignRight, tui.AlignRight, tui.AlignRight, tui.AlignCenter,
		tui.AlignRight, tui.AlignRight, tui.AlignRight, tui.AlignRight,
	}
	inner.Table(chainHeaders, rows, opts)
}

func renderStatus(r tui.Region, v View, th tui.Theme) {
	label := tui.Style{Fg: th.Dim}
	value := tui.Style{Fg: th.StatusFg}

	age := "-"
	ageStyle := value
	if v.HasData {
		age = formatAge(v.Age)
		if v.Stale {
			age += " STALE"
			ageStyle = tui.Style{Fg: th.Warning, Attr: terminal.AttrBold}
		}
	}

	m := v.Metrics
	health := tui.Style{Fg: th.Good}
	if m.Consecutive > 0 {
		health = tui.Style{Fg: th.Error}
	}

	sections := []tui.BarSection{
		{Label: "seq ", Value: strconv.FormatUint(v.Seq, 10), LabelStyle: label, ValueStyle: value, Priority: 9},
		{Label: "age ", Value: age, LabelStyle: label, ValueStyle: ageStyle, Priority: 8},
		{Label: "ok ", Value: fmt.Sprintf("%d/%d", m.Published, m.Cycles), LabelStyle: label, ValueStyle: health, Priority: 6},
		{Label: "fail ", Value: strconv.FormatInt(m.Failures, 10), LabelStyle: label, ValueStyle: health, Priority: 5},
		{Label: "queue ", Value: fmt.Sprintf("%d/%d", m.Queue, m.QueueCap), LabelStyle: label, ValueStyle: value, Priority: 2},
		{Label: "", Value: string(v.QuitKey) + " quit", LabelStyle: label, ValueStyle: tui.Style{Fg: th.Accent}, Priority: 10},
	}
	if m.Source != "" {
		sections = append(sections, tui.BarSection{Label: "src ", Value: m.Source, LabelStyle: label, ValueStyle: value, Priority: 1})
	}
	if m.Consecutive > 0 && m.LastError != "" {
		sections = append(sections, tui.BarSection{
			Label:      "err ",
			Value:      tui.Truncate(m.LastError, max(r.W/3, 8)),
			LabelStyle: label,
			ValueStyle: tui.Style{Fg: th.Error},
			Priority:   7,
		})
	}

	opts := tui.DefaultBarOpts()
	opts.Bg = th.StatusBg
	opts.Align = tui.BarAlignLeft
	r.StatusBar(0, sections, opts)
}

func seriesOf(name string, pts []smile.Point, fg terminal.RGB, lines bool) tui.Series {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return tui.Series{Name: name, X: xs, Y: ys, Fg: fg, Lines: lines}
}

func ivValues(pts []smile.Point) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Y
	}
	return out
}

func chainRow(row smile.QuoteRow) []string {
	call, put := []string{"", "", "", ""}, []string{"", "", "", ""}
	if row.HasCall {
		c := row.Call
		call = []string{formatIV(c.IV), formatPrice(c.Last), formatPrice(c.Bid), formatPrice(c.Ask)}
	}
	if row.HasPut {
		p := row.Put
		put = []string{formatPrice(p.Ask), formatPrice(p.Bid), formatPrice(p.Last), formatIV(p.IV)}
	}
	out := make([]string, 0, len(chainHeaders))
	out = append(out, call...)
	out = append(out, strconv.FormatFloat(row.Strike, 'f', -1, 64))
	out = append(out, put...)
	return out
}

// minIVRow returns the index of the row with the lowest positive IV on either side
func minIVRow(rows []smile.QuoteRow) int {
	best, bestIV := 0, 0.0
	for i, row := range rows {
		for _, q := range []struct {
			ok bool
			iv float64
		}{{row.HasCall, row.Call.IV}, {row.HasPut, row.Put.IV}} {
			if q.ok && q.iv > 0 && (bestIV == 0 || q.iv < bestIV) {
				best, bestIV = i, q.iv
			}
		}
	}
	return best
}

func formatIV(iv float64) string {
	if iv <= 0 {
		return "-"
	}
	return strconv.FormatFloat(iv*ivScale, 'f', 1, 64) + "%"
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func formatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
	}
	return d.Truncate(time.Second).String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
