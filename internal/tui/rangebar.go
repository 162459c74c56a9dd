package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/bmilog/internal/bmi"
)

// renderRangeBar draws the four category bands scaled to 0..bmi.DisplayMax
// and a marker under value when value > 0.
func renderRangeBar(width int, value float64) string {
	if width < 4 {
		width = 4
	}
	bands := bmi.Bands()
	var bar strings.Builder
	for x := 0; x < width; x++ {
		v := (float64(x) + 0.5) / float64(width) * bmi.DisplayMax
		for _, b := range bands {
			if b.Contains(v) {
				bar.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(b.Color.Hex())).Render(" "))
				break
			}
		}
	}
	lines := []string{bar.String()}
	if value > 0 {
		lines = append(lines, strings.Repeat(" ", markerOffset(width, value))+"▲")
	}
	return strings.Join(lines, "\n")
}

func markerOffset(width int, value float64) int {
	pos := int(value / bmi.DisplayMax * float64(width))
	if pos < 0 {
		return 0
	}
	if pos >= width {
		return width - 1
	}
	return pos
}
