package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// FormatElapsed renders a duration as h:mm:ss, or m:ss under an hour.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// formatPoints drops a trailing .0 so whole points read as integers.
func formatPoints(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// progressBar draws a fixed width bar for pct in [0,100].
func progressBar(pct, width int) string {
	if width <= 0 {
		width = 20
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// truncate shortens text to limit runes.
func truncate(text string, limit int) string {
	normalized := strings.Join(strings.Fields(text), " ")
	r := []rune(normalized)
	if len(r) <= limit {
		return normalized
	}
	return string(r[:limit-3]) + "..."
}

var (
	colorTitle   = lipgloss.Color("33")
	colorMuted   = lipgloss.Color("242")
	colorGood    = lipgloss.Color("42")
	colorBad     = lipgloss.Color("160")
	colorWarn    = lipgloss.Color("214")
	colorCursor  = lipgloss.Color("212")
	colorExplain = lipgloss.Color("110")
)

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func bold(text string, noColor bool) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Bold(true).Render(text)
}

// fmtInt converts an int to string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}
