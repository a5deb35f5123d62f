package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sensortop/sensortop/internal/backend"
	"github.com/sensortop/sensortop/internal/monitor"
)

// Column widths for the sensor list.
const (
	nameColWidth  = 28
	valueColWidth = 12
	statColWidth  = 10
	minListWidth  = 40
)

// render draws the current view mode into a full frame.
func (m Model) render() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.viewMode == ViewDetail {
		return m.renderDetail()
	}
	return m.renderList()
}

// renderList draws the header, the sensor table, and the footer.
func (m Model) renderList() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if !m.hasData {
		b.WriteString(MutedStyle.Render("  waiting for first sample..."))
		b.WriteString("\n")
	} else if len(m.rows) == 0 {
		b.WriteString(MutedStyle.Render("  no sensors found"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderRows())
	}

	content := b.String()

	// Clamp to the terminal height, keeping the footer on the last line.
	lines := strings.Split(content, "\n")
	maxBody := m.height - 1
	if maxBody < 1 {
		maxBody = 1
	}
	if len(lines) > maxBody {
		lines = lines[:maxBody]
	}
	for len(lines) < maxBody {
		lines = append(lines, "")
	}
	lines = append(lines, m.renderFooter())

	return strings.Join(lines, "\n")
}

// renderHeader shows the app title, per-backend health, the paused badge,
// and the age of the data on screen.
func (m Model) renderHeader() string {
	parts := []string{TitleStyle.Render("sensortop")}

	for _, name := range sortedBackendNames(m.snapshot.Backends) {
		status := m.snapshot.Backends[name]
		parts = append(parts, renderBackendStatus(name, status))
	}

	if m.paused {
		parts = append(parts, PausedBadgeStyle.Render("PAUSED"))
	}

	if m.hasData {
		parts = append(parts, MutedStyle.Render(fmt.Sprintf("updated %ds ago", m.SecondsSinceUpdate())))
	}

	line := strings.Join(parts, "  ")
	return HeaderStyle.Width(m.width).Render(truncate(line, m.width-2))
}

// renderBackendStatus renders one backend's health indicator.
func renderBackendStatus(name string, status monitor.BackendStatus) string {
	var dot string
	switch status.State {
	case monitor.StateHealthy:
		dot = StatusHealthyStyle.Render(StatusHealthy)
	case monitor.StateDegraded:
		dot = StatusDegradedStyle.Render(StatusDegraded)
	default:
		dot = StatusUnavailableStyle.Render(StatusUnavailable)
	}
	label := LabelStyle.Render(name)
	if status.State != monitor.StateHealthy && status.Reason != "" {
		label += MutedStyle.Render(" (" + status.Reason + ")")
	}
	return dot + " " + label
}

// renderRows draws the sensor table. In the default sort, a group header
// precedes each run of sensors of the same kind.
func (m Model) renderRows() string {
	var b strings.Builder

	var lastKind backend.Kind = -1
	showGroups := m.sortOrder == SortByDefault

	for i, id := range m.rows {
		view := m.snapshot.Sensor(id)
		if view == nil {
			continue
		}

		if showGroups && view.Meta.Kind != lastKind {
			lastKind = view.Meta.Kind
			b.WriteString(GroupHeaderStyle.Render("  " + strings.ToUpper(view.Meta.Kind.String())))
			b.WriteString("\n")
		}

		b.WriteString(m.renderRow(view, i == m.selected))
		b.WriteString("\n")
	}

	return b.String()
}

// renderRow draws one sensor line: cursor, name, current value, min, max,
// and a sparkline filling whatever width remains.
func (m Model) renderRow(view *monitor.SensorView, selected bool) string {
	cursor := "  "
	if selected {
		cursor = lipgloss.NewStyle().Foreground(ColorAccent).Render("▸ ")
	}

	name := pad(truncate(view.Meta.Name, nameColWidth), nameColWidth)
	if selected {
		name = SelectedRowStyle.Render(name)
	} else {
		name = SensorNameStyle.Render(name)
	}

	value := pad(formatSample(view.Last, view.Meta), valueColWidth)
	if view.Last.Valid && view.Meta.Kind == backend.KindTemperature {
		value = TempStyle(view.Last.Value).Render(value)
	} else if view.Last.Valid {
		value = ValueStyle.Render(value)
	} else {
		value = MutedStyle.Render(value)
	}

	minStr := pad("--", statColWidth)
	maxStr := pad("--", statColWidth)
	if view.HasData {
		minStr = pad(formatValue(view.Min, view.Meta), statColWidth)
		maxStr = pad(formatValue(view.Max, view.Meta), statColWidth)
	}

	fixed := 2 + nameColWidth + valueColWidth + statColWidth*2 + 2
	sparkWidth := m.width - fixed
	spark := ""
	if sparkWidth >= 8 {
		spark = ColoredSparkline(*view, sparkWidth)
	}

	row := cursor + name + value + MutedStyle.Render(minStr) + MutedStyle.Render(maxStr) + spark
	if m.width < minListWidth {
		row = cursor + name
	}
	return row
}

// renderFooter shows the key hints.
func (m Model) renderFooter() string {
	hints := "q quit · space pause · r refresh · R rescan · s sort: " + m.sortOrder.String() + " · ↑/↓ select · enter detail · ? help"
	return FooterStyle.Width(m.width).Render(truncate(hints, m.width-2))
}

// renderHelp draws the full-screen help overlay.
func (m Model) renderHelp() string {
	rows := []struct{ key, desc string }{
		{"q / ctrl+c", "quit"},
		{"space", "pause / resume sampling"},
		{"r", "refresh now"},
		{"R", "rescan for new sensors"},
		{"s", "cycle sort order"},
		{"↑ / k", "select previous sensor"},
		{"↓ / j", "select next sensor"},
		{"home / end", "jump to first / last"},
		{"enter", "sensor detail view"},
		{"esc", "back / close help"},
		{"?", "toggle this help"},
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("  sensortop keys"))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			ValueStyle.Render(pad(r.key, 12)),
			LabelStyle.Render(r.desc)))
	}
	return b.String()
}

// formatSample renders a sample for display, showing "--" when absent.
func formatSample(s monitor.Sample, meta backend.SensorMeta) string {
	if !s.Valid {
		return "--"
	}
	return formatValue(s.Value, meta)
}

// formatValue renders a reading with kind-appropriate precision and unit.
func formatValue(v float64, meta backend.SensorMeta) string {
	switch meta.Kind {
	case backend.KindFan:
		return fmt.Sprintf("%.0f %s", v, meta.Unit)
	case backend.KindVoltage:
		return fmt.Sprintf("%.2f %s", v, meta.Unit)
	case backend.KindUtilization:
		return fmt.Sprintf("%.0f%s", v, meta.Unit)
	default:
		return fmt.Sprintf("%.1f%s", v, meta.Unit)
	}
}

// sortedBackendNames returns backend names in stable alphabetical order.
func sortedBackendNames(statuses map[string]monitor.BackendStatus) []string {
	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// truncate cuts a string to at most width display cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// pad right-pads a string to the given display width.
func pad(s string, width int) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}
