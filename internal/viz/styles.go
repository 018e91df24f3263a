package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusRecording = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444")).
			Blink(true)
)

// Level colours, low to high.
var levels = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")),
}

// level picks a colour for v in [0, 1] given the two cut points.
func level(v, mid, high float64) lipgloss.Style {
	switch {
	case v > high:
		return levels[2]
	case v > mid:
		return levels[1]
	}
	return levels[0]
}

// GradientText colours each rune of text by blending the two colours in
// Lab space. Colours that fail to parse fall back to white.
func GradientText(text string, startColor, endColor lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	from := parseColor(startColor)
	to := parseColor(endColor)

	var result strings.Builder
	n := len(runes)
	for i, c := range runes {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		hex := from.BlendLab(to, t).Clamped().Hex()
		result.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(string(c)))
	}
	return result.String()
}

func parseColor(c lipgloss.Color) colorful.Color {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return col
}

// ProgressBar renders a bar filled to percent, clamped to [0, 1].
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return level(percent, 0.4, 0.8).Render(bar)
}

// SparklineChart buckets values into width columns and draws the peak of
// each bucket, so short spikes such as a single contact tick survive.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	cols := min(width, len(values))
	var result strings.Builder
	for i := 0; i < cols; i++ {
		start, end := i*len(values)/cols, (i+1)*len(values)/cols
		peak := values[start]
		for _, v := range values[start:end] {
			peak = max(peak, v)
		}
		norm := (peak - lo) / rng
		idx := max(0, min(int(norm*float64(len(chars)-1)), len(chars)-1))
		result.WriteString(level(norm, 0.3, 0.7).Render(string(chars[idx])))
	}
	return result.String()
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(0, mid-3))
	right := strings.Repeat("─", max(0, width-mid-3))
	return Subtle.Render(left + " ◆ " + right)
}
