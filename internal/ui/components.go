package ui

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/olivier-w/softrig/internal/control"
)

func renderProgressBar(elapsed, total float64, width int) string {
	if width < 10 {
		width = 10
	}
	barWidth := width - 2 // leave some margin

	var ratio float64
	if total > 0 {
		ratio = elapsed / total
	}
	ratio = max(0, min(ratio, 1))

	filled := int(ratio * float64(barWidth))
	return strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// renderSparkline draws values scaled to their own maximum, one rune per
// value, right-aligned in width cells.
func renderSparkline(values []float64, width int) string {
	if width < 1 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(values)))
	if len(values) == 0 {
		return sb.String()
	}
	peak := floats.Max(values)
	for _, v := range values {
		idx := 0
		if peak > 0 {
			idx = int(v / peak * float64(len(sparkRunes)-1))
		}
		idx = max(0, min(idx, len(sparkRunes)-1))
		sb.WriteRune(sparkRunes[idx])
	}
	return sb.String()
}

// renderForce summarises one force control, e.g.
// "nudge  r 10 × m = 10.0  i 0.50".
func renderForce(f control.ForceControl, st control.State) string {
	scale := "?"
	if f.RadiusScaleIndex >= 0 && f.RadiusScaleIndex < len(st.Scales) {
		scale = st.Scales[f.RadiusScaleIndex].Name
	}
	return fmt.Sprintf("%-8s r %g × %s = %.1f  i %.2f",
		f.ID, f.Radius, scale, st.ScaledRadius(f.ID), f.Intensity)
}

func spaces(n int) string {
	return strings.Repeat(" ", max(n, 0))
}
