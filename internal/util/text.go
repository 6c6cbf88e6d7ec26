// Package util holds text helpers for terminal output.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "..."

// Truncate shortens s to maxWidth terminal columns, ending in "...".
// Escape sequences are kept and do not count toward the width.
func Truncate(s string, maxWidth int) string {
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(ellipsis) {
		return ellipsis[:max(maxWidth, 0)]
	}
	return ansi.Truncate(s, maxWidth, ellipsis)
}

// TruncatePath shortens an unstyled path to maxWidth columns by dropping
// leading characters, so the file name stays visible: "...example/Foo.java".
func TruncatePath(p string, maxWidth int) string {
	if lipgloss.Width(p) <= maxWidth {
		return p
	}
	if maxWidth <= len(ellipsis) {
		return ellipsis[:max(maxWidth, 0)]
	}

	runes := []rune(p)
	for i := range runes {
		tail := string(runes[i:])
		if lipgloss.Width(tail)+len(ellipsis) <= maxWidth {
			return ellipsis + tail
		}
	}
	return ellipsis
}
