package dashboard

import (
	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	// Semantic colors for readings
	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	// Accent colors
	ColorAccent = lipgloss.Color("#FF2E97")
	ColorGraph  = lipgloss.Color("#00FFFF")
)

// Temperature thresholds in °C for severity coloring.
const (
	TempWarningThreshold  = 60.0
	TempCriticalThreshold = 80.0
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	GroupHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	SensorNameStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorTextPrimary).
				Background(ColorBorder).
				Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	PausedBadgeStyle = lipgloss.NewStyle().
				Foreground(ColorSurfaceBg).
				Background(ColorWarning).
				Bold(true).
				Padding(0, 1)

	// Backend status indicator styles
	StatusHealthyStyle = lipgloss.NewStyle().
				Foreground(ColorHealthy)

	StatusDegradedStyle = lipgloss.NewStyle().
				Foreground(ColorWarning)

	StatusUnavailableStyle = lipgloss.NewStyle().
				Foreground(ColorCritical)
)

// Backend status indicator characters
const (
	StatusHealthy     = "◉"
	StatusDegraded    = "◔"
	StatusUnavailable = "◌"
)

// TempColor returns the severity color for a temperature in °C.
func TempColor(celsius float64) lipgloss.Color {
	switch {
	case celsius >= TempCriticalThreshold:
		return ColorCritical
	case celsius >= TempWarningThreshold:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// TempStyle returns a style colored by temperature severity.
func TempStyle(celsius float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(TempColor(celsius))
}
