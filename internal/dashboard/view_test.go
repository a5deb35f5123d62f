package dashboard

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/sensortop/sensortop/internal/backend"
	"github.com/sensortop/sensortop/internal/monitor"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		kind backend.Kind
		unit backend.Unit
		v    float64
		want string
	}{
		{"temperature", backend.KindTemperature, backend.UnitCelsius, 45.52, "45.5°C"},
		{"fan rounds to whole rpm", backend.KindFan, backend.UnitRPM, 1200.4, "1200 RPM"},
		{"voltage two decimals", backend.KindVoltage, backend.UnitVolts, 1.352, "1.35 V"},
		{"power one decimal", backend.KindPower, backend.UnitWatts, 25.04, "25.0W"},
		{"utilization whole percent", backend.KindUtilization, backend.UnitPercent, 87.6, "88%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := backend.SensorMeta{Kind: tt.kind, Unit: tt.unit}
			assert.Equal(t, tt.want, formatValue(tt.v, meta))
		})
	}
}

func TestFormatSampleAbsent(t *testing.T) {
	meta := backend.SensorMeta{Kind: backend.KindTemperature, Unit: backend.UnitCelsius}
	assert.Equal(t, "--", formatSample(monitor.Sample{}, meta))
	assert.Equal(t, "45.0°C", formatSample(monitor.Sample{Value: 45, Valid: true}, meta))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", truncate("hello", 0))
	assert.Equal(t, "hello", truncate("hello", 5))
	assert.Equal(t, "hel…", truncate("hello world", 4))
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab   ", pad("ab", 5))
	assert.Equal(t, "abcdef", pad("abcdef", 3))
}

func TestRenderBackendStatus(t *testing.T) {
	healthy := renderBackendStatus("hwmon", monitor.BackendStatus{State: monitor.StateHealthy})
	assert.Contains(t, healthy, "hwmon")
	assert.Contains(t, healthy, StatusHealthy)

	down := renderBackendStatus("nvml", monitor.BackendStatus{
		State:  monitor.StateUnavailable,
		Reason: "timeout",
	})
	assert.Contains(t, down, "nvml")
	assert.Contains(t, down, StatusUnavailable)
	assert.Contains(t, down, "timeout")
}

func TestHeaderShowsPausedBadge(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)

	assert.NotContains(t, m.View(), "PAUSED")

	m.HandleKeyMsg(keyMsg(" "))
	assert.Contains(t, m.View(), "PAUSED")
}

func TestSortedBackendNames(t *testing.T) {
	statuses := map[string]monitor.BackendStatus{
		"nvml":  {},
		"hwmon": {},
	}
	assert.Equal(t, []string{"hwmon", "nvml"}, sortedBackendNames(statuses))
}
