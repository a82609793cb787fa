package tui

import (
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the GAMEMATCH logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "G A M E M A T C H" as a flowing wave of blue
// light, deep navy (#17304a) -> bright sky (#4aa8de). No hue drift.
func renderShimmerLogo(frame int) string {
	const text = "GAMEMATCH"
	n := len(text)

	var out string

	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		// Flowing phase — one smooth wave advancing through the text
		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		// Slow breathing tide
		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(23 + b*(74-23))
		g := clampByte(48 + b*(168-48))
		bl := clampByte(74 + b*(222-74))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles — gamematch neutral palette
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Accent / action styles
	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4aa8de"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b45555"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	// Connection indicator
	connectedDotStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#34d474"))

	disconnectedDotStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#b45555"))

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	// Per-status listing colors
	statusColors = map[string]lipgloss.Color{
		"open":      lipgloss.Color("#34d474"),
		"ongoing":   lipgloss.Color("#22d3ee"),
		"closed":    lipgloss.Color("#606878"),
		"cancelled": lipgloss.Color("#b45555"),
	}

	// Per-game listing colors, cycled for games outside the map
	gameColors = map[string]lipgloss.Color{
		"valorant":          lipgloss.Color("#e06060"),
		"league-of-legends": lipgloss.Color("#d4a844"),
		"apex-legends":      lipgloss.Color("#f0944a"),
		"overwatch":         lipgloss.Color("#f59e0b"),
		"monster-hunter":    lipgloss.Color("#60a0e0"),
		"among-us":          lipgloss.Color("#c084e0"),
	}

	defaultGameColor = lipgloss.Color("#8890a0")
)

// StatusStyle returns the style for a recruitment status label.
func StatusStyle(status string) lipgloss.Style {
	if c, ok := statusColors[status]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return dimStyle
}

// GameStyle returns the style for a game tag in the listing.
func GameStyle(gameID string) lipgloss.Style {
	if c, ok := gameColors[gameID]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle().Foreground(defaultGameColor)
}

// helpEntry renders one "key label" pair for the help bar.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}
