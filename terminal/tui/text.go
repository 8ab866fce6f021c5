package tui

import "unicode/utf8"

// RuneLen is the number of cells Text uses for s
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate shortens s to n cells, marking the cut with an ellipsis
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if RuneLen(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
