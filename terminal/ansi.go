package terminal

import "strconv"

// Fixed control sequences
var (
	csiClear = []byte("\x1b[2J\x1b[H")
	csiRIS   = []byte("\x1bc")
	csiSGR0  = []byte("\x1b[0m")

	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")

	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")

	// Writing the bottom-right cell scrolls the screen unless wrap is off
	csiAutoWrapOn  = []byte("\x1b[?7h")
	csiAutoWrapOff = []byte("\x1b[?7l")
)

// sgrAttrs pairs style bits with their SGR parameter
var sgrAttrs = [...]struct {
	bit   Attr
	param byte
}{
	{AttrBold, '1'},
	{AttrDim, '2'},
	{AttrItalic, '3'},
	{AttrUnderline, '4'},
	{AttrBlink, '5'},
	{AttrReverse, '7'},
}

// appendMoveTo appends a cursor position sequence for 0-indexed x, y
func appendMoveTo(buf []byte, x, y int) []byte {
	buf = append(buf, 0x1b, '[')
	buf = strconv.AppendInt(buf, int64(y+1), 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(x+1), 10)
	return append(buf, 'H')
}

// appendColor appends "38;..." or "48;..." for one color, base is 38 or 48
func appendColor(buf []byte, base int, c RGB, palette bool, mode ColorMode) []byte {
	buf = strconv.AppendInt(buf, int64(base), 10)
	switch {
	case palette:
		buf = append(buf, ";5;"...)
		return strconv.AppendInt(buf, int64(c.R), 10)
	case mode == ColorModeTrueColor:
		buf = append(buf, ";2;"...)
		buf = strconv.AppendInt(buf, int64(c.R), 10)
		buf = append(buf, ';')
		buf = strconv.AppendInt(buf, int64(c.G), 10)
		buf = append(buf, ';')
		return strconv.AppendInt(buf, int64(c.B), 10)
	default:
		buf = append(buf, ";5;"...)
		return strconv.AppendInt(buf, int64(RGBTo256(c)), 10)
	}
}

// appendSGR appends one complete SGR sequence that resets and then sets style and both colors
func appendSGR(buf []byte, fg, bg RGB, attr Attr, mode ColorMode) []byte {
	buf = append(buf, 0x1b, '[', '0')
	for _, a := range sgrAttrs {
		if attr&a.bit != 0 {
			buf = append(buf, ';', a.param)
		}
	}
	buf = append(buf, ';')
	buf = appendColor(buf, 38, fg, attr&AttrFg256 != 0, mode)
	buf = append(buf, ';')
	buf = appendColor(buf, 48, bg, attr&AttrBg256 != 0, mode)
	return append(buf, 'm')
}
