package ansi

import (
	"io"
	"strings"
)

const (
	ResetSeq = "\x1b[0m"
)

// NormalizeNewlines converts bare LF line endings to the CRLF pairs a
// network virtual terminal expects.
func NormalizeNewlines(s string) string {
	// Replace CRLF with LF first so existing pairs are not doubled
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

// Print writes text with normalized line endings followed by a reset
// sequence to restore terminal state.
func Print(w io.Writer, text string) (int, error) {
	return io.WriteString(w, NormalizeNewlines(text)+ResetSeq)
}
