package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Centered places content in the middle of a w x h area. Before the first
// window size message arrives the content is returned as is.
func Centered(content string, w, h int) string {
	if w == 0 || h == 0 {
		return content
	}
	return lipgloss.Place(
		w, h,
		lipgloss.Center, lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func shortHash(hash string) string {
	const n = 16
	if len(hash) <= n {
		return hash
	}
	return hash[:n] + "…"
}
