// Package tui draws panels into a terminal cell buffer.
//
// A Region is a clipped rectangle over a row-major []terminal.Cell. Drawing
// calls take region-relative coordinates and silently drop anything outside
// the rectangle, so callers size layouts with SplitH and SplitVFixed and
// never bounds-check themselves. Nothing is retained between frames: the
// caller rebuilds the whole buffer and hands it to Terminal.Flush.
//
//	cells := make([]terminal.Cell, w*h)
//	root := tui.NewRegion(cells, w, 0, 0, w, h)
//	root.Fill(theme.Bg)
//	header, body := tui.SplitVFixed(root, 1)
//	inner := body.Card("IV % vs strike", tui.LineRounded, theme.Border)
//	inner.Chart(series, tui.ChartOpts{YSuffix: "%"})
//	term.Flush(cells, w, h)
package tui
