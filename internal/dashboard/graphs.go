package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sensortop/sensortop/internal/backend"
	"github.com/sensortop/sensortop/internal/monitor"
)

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// sparklineGap marks an absent sample so gaps in a sensor's history stay
// visible instead of being interpolated over.
const sparklineGap = '·'

// Sparkline renders a single-row sparkline over a sensor's history. The most
// recent samples occupy the right edge; absent samples render as gap marks.
// Values are scaled between the min and max of the valid samples shown.
func Sparkline(samples []monitor.Sample, width int) string {
	if len(samples) == 0 || width <= 0 {
		return ""
	}

	// Show the newest samples that fit, one column each.
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}

	minVal, maxVal, any := validRange(samples)
	if !any {
		return strings.Repeat(string(sparklineGap), len(samples))
	}

	var result strings.Builder
	for _, s := range samples {
		if !s.Valid {
			result.WriteRune(sparklineGap)
			continue
		}
		normalized := 0.5
		if maxVal > minVal {
			normalized = (s.Value - minVal) / (maxVal - minVal)
		}
		idx := int(normalized * float64(len(sparklineBlocks)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparklineBlocks) {
			idx = len(sparklineBlocks) - 1
		}
		result.WriteRune(sparklineBlocks[idx])
	}
	return result.String()
}

// ColoredSparkline renders a sparkline colored by the most recent valid value.
// Temperature sensors use severity thresholds; everything else uses the graph
// accent color.
func ColoredSparkline(view monitor.SensorView, width int) string {
	line := Sparkline(view.Samples, width)
	if line == "" {
		return line
	}

	color := ColorGraph
	if view.Meta.Kind == backend.KindTemperature && view.HasData {
		color = TempColor(lastValid(view.Samples))
	}
	return lipgloss.NewStyle().Foreground(color).Render(line)
}

// validRange returns the min and max over valid samples, and whether any
// valid sample exists.
func validRange(samples []monitor.Sample) (minVal, maxVal float64, any bool) {
	for _, s := range samples {
		if !s.Valid {
			continue
		}
		if !any {
			minVal, maxVal = s.Value, s.Value
			any = true
			continue
		}
		if s.Value < minVal {
			minVal = s.Value
		}
		if s.Value > maxVal {
			maxVal = s.Value
		}
	}
	return minVal, maxVal, any
}

// lastValid returns the newest valid value, or 0 if none exists.
func lastValid(samples []monitor.Sample) float64 {
	for i := len(samples) - 1; i >= 0; i-- {
		if samples[i].Valid {
			return samples[i].Value
		}
	}
	return 0
}
