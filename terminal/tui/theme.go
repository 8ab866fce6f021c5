package tui

import "github.com/lixenwraith/smiledash/terminal"

// Style bundles colors and attributes, a zero Bg keeps the background underneath
type Style struct {
	Fg   terminal.RGB
	Bg   terminal.RGB
	Attr terminal.Attr
}

// Theme defines semantic colors for dashboard panels
type Theme struct {
	Bg       terminal.RGB
	Fg       terminal.RGB
	Dim      terminal.RGB
	Accent   terminal.RGB
	Series   terminal.RGB
	Fit      terminal.RGB
	Error    terminal.RGB
	Warning  terminal.RGB
	Good     terminal.RGB
	Border   terminal.RGB
	HeaderBg terminal.RGB
	HeaderFg terminal.RGB
	StatusBg terminal.RGB
	StatusFg terminal.RGB
	AltRowBg terminal.RGB
}

var DefaultTheme = Theme{
	Bg:       terminal.RGB{R: 20, G: 20, B: 30},
	Fg:       terminal.RGB{R: 200, G: 200, B: 200},
	Dim:      terminal.RGB{R: 100, G: 100, B: 100},
	Accent:   terminal.RGB{R: 100, G: 200, B: 220},
	Series:   terminal.RGB{R: 100, G: 200, B: 220},
	Fit:      terminal.RGB{R: 255, G: 180, B: 100},
	Error:    terminal.RGB{R: 255, G: 80, B: 80},
	Warning:  terminal.RGB{R: 255, G: 180, B: 100},
	Good:     terminal.RGB{R: 80, G: 200, B: 80},
	Border:   terminal.RGB{R: 60, G: 80, B: 100},
	HeaderBg: terminal.RGB{R: 40, G: 60, B: 90},
	HeaderFg: terminal.RGB{R: 255, G: 255, B: 255},
	StatusBg: terminal.RGB{R: 30, G: 35, B: 45},
	StatusFg: terminal.RGB{R: 140, G: 140, B: 140},
	AltRowBg: terminal.RGB{R: 26, G: 26, B: 38},
}
