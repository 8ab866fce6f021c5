// Package terminal drives an xterm-compatible terminal with raw ANSI sequences.
//
// The native implementation puts stdin into raw mode through x/term, switches
// to the alternate screen and keeps a copy of what is on screen so each Flush
// writes only the cells that changed. Input bytes are decoded into Events by a
// reader goroutine; SIGWINCH becomes an EventResize. Colors are emitted as
// 24-bit or mapped to the xterm-256 palette depending on ColorMode.
//
// RunSession scopes a Terminal to a function so the terminal is restored on
// return, error and panic alike. The tcellterm subpackage provides the same
// interface on top of tcell.
package terminal
