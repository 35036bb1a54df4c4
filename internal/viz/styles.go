package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Width(46)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle = lipgloss.NewStyle().Padding(1, 0)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)
)

func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true).MarginBottom(1)
}

func activeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true)
}

func statusStyle(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}

// GradientText colours each rune of text on a ramp from start to end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	sr, sg, sb := parseHex(string(start))
	er, eg, eb := parseHex(string(end))

	var b strings.Builder
	for i, c := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		col := hexColor(lerp(sr, er, t), lerp(sg, eg, t), lerp(sb, eb, t))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(col)).Render(string(c)))
	}
	return b.String()
}

// ProgressBar renders a bar filled to ratio, clamped to [0, 1].
func ProgressBar(ratio float64, width int) string {
	filled := int(ratio * float64(width))
	filled = max(0, min(width, filled))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case ratio > 0.8:
		return statusStyle(CurrentTheme.Warning).Render(bar)
	case ratio > 0.4:
		return statusStyle(CurrentTheme.Primary).Render(bar)
	}
	return statusStyle(CurrentTheme.Muted).Render(bar)
}

// SparklineChart renders the most recent values as one line of block runes.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(len(chars)-1, idx))])
	}
	return statusStyle(CurrentTheme.Secondary).Render(b.String())
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 255, 255, 255
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func hexColor(r, g, b int) string {
	clamp := func(v int) int { return max(0, min(255, v)) }
	return fmt.Sprintf("#%02x%02x%02x", clamp(r), clamp(g), clamp(b))
}

func lerp(a, b int, t float64) int {
	return a + int(t*float64(b-a))
}
