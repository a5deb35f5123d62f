package dashboard

import (
	"fmt"
	"strings"

	"github.com/sensortop/sensortop/internal/monitor"
)

// renderDetail draws the full-screen view for the selected sensor.
func (m Model) renderDetail() string {
	view := m.SelectedSensor()
	if view == nil {
		return m.renderList()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(TitleStyle.Render("  " + view.Meta.Name))
	b.WriteString(MutedStyle.Render("  " + string(view.Meta.ID)))
	b.WriteString("\n")

	if m.viewportReady {
		b.WriteString(m.detailViewport.View())
	}
	b.WriteString("\n")
	b.WriteString(FooterStyle.Width(m.width).Render(truncate("esc back · ↑/↓ scroll · q quit", m.width-2)))

	return b.String()
}

// updateDetailViewportContent refreshes the scrollable body of the detail
// view from the current snapshot.
func (m *Model) updateDetailViewportContent() {
	if !m.viewportReady {
		return
	}
	view := m.SelectedSensor()
	if view == nil {
		m.detailViewport.SetContent("")
		return
	}
	m.detailViewport.SetContent(m.detailContent(view))
}

// detailContent builds the detail body: summary stats, a wide sparkline,
// and the most recent readings newest first.
func (m Model) detailContent(view *monitor.SensorView) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s %s\n",
		LabelStyle.Render(pad("Backend", 10)), ValueStyle.Render(view.Meta.Backend)))
	b.WriteString(fmt.Sprintf("  %s %s\n",
		LabelStyle.Render(pad("Kind", 10)), ValueStyle.Render(view.Meta.Kind.String())))

	current := formatSample(view.Last, view.Meta)
	b.WriteString(fmt.Sprintf("  %s %s\n",
		LabelStyle.Render(pad("Current", 10)), ValueStyle.Render(current)))
	if view.HasData {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			LabelStyle.Render(pad("Min", 10)), ValueStyle.Render(formatValue(view.Min, view.Meta))))
		b.WriteString(fmt.Sprintf("  %s %s\n",
			LabelStyle.Render(pad("Max", 10)), ValueStyle.Render(formatValue(view.Max, view.Meta))))
	}
	b.WriteString(fmt.Sprintf("  %s %s\n",
		LabelStyle.Render(pad("Samples", 10)), ValueStyle.Render(fmt.Sprintf("%d", len(view.Samples)))))

	sparkWidth := m.width - 4
	if sparkWidth > 8 {
		b.WriteString("\n  ")
		b.WriteString(ColoredSparkline(*view, sparkWidth))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(GroupHeaderStyle.Render("  RECENT"))
	b.WriteString("\n")
	for i := len(view.Samples) - 1; i >= 0 && i >= len(view.Samples)-20; i-- {
		s := view.Samples[i]
		value := formatSample(s, view.Meta)
		style := ValueStyle
		if !s.Valid {
			style = MutedStyle
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			MutedStyle.Render(s.Time.Format("15:04:05")),
			style.Render(value)))
	}

	return b.String()
}
