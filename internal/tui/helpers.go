package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// formatTime renders a relative timestamp for listing rows.
func formatTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// slotBar renders room occupancy as filled/empty cells, e.g. "▮▮▯ 2/3".
func slotBar(filled, max int) string {
	if max <= 0 {
		return ""
	}
	if filled > max {
		filled = max
	}
	var b strings.Builder
	for i := 0; i < max; i++ {
		if i < filled {
			b.WriteString("▮")
		} else {
			b.WriteString("▯")
		}
	}
	return fmt.Sprintf("%s %d/%d", b.String(), filled, max)
}
