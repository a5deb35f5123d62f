// Package dashboard renders the live sensor view. It is driven entirely by
// immutable snapshots published by the poller; the renderer never touches
// live sampling state, so a slow repaint can never tear a frame or stall
// the sampling loop.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sensortop/sensortop/internal/backend"
	"github.com/sensortop/sensortop/internal/monitor"
)

// Model is the Bubble Tea model for the sensor dashboard.
type Model struct {
	poller   *monitor.Poller
	snapshot monitor.Snapshot
	hasData  bool

	rows     []backend.SensorID // display order of sensors
	selected int

	width      int
	height     int
	interval   time.Duration
	quitting   bool
	paused     bool
	sortOrder  SortOrder
	viewMode   ViewMode
	showHelp   bool

	// Detail view viewport for scrollable content
	detailViewport viewport.Model
	viewportReady  bool
}

// snapshotMsg carries a fresh snapshot from the poller.
type snapshotMsg monitor.Snapshot

// NewModel creates a dashboard model wired to the given poller.
func NewModel(poller *monitor.Poller, interval time.Duration) Model {
	return Model{
		poller:   poller,
		interval: interval,
		selected: 0,
	}
}

// Init starts waiting for the first snapshot. There is no repaint timer;
// the view only changes when a snapshot, resize, or key arrives.
func (m Model) Init() tea.Cmd {
	return m.waitForSnapshot()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Reserve space for header and footer
		headerHeight := 3
		footerHeight := 2
		viewportHeight := m.height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.viewportReady {
			m.detailViewport = viewport.New(m.width, viewportHeight)
			m.detailViewport.YPosition = headerHeight
			m.viewportReady = true
		} else {
			m.detailViewport.Width = m.width
			m.detailViewport.Height = viewportHeight
		}

		if m.viewMode == ViewDetail {
			m.updateDetailViewportContent()
		}

	case snapshotMsg:
		m.snapshot = monitor.Snapshot(msg)
		m.hasData = true
		m.sortRows()
		if m.viewMode == ViewDetail {
			m.updateDetailViewportContent()
		}
		return m, m.waitForSnapshot()
	}

	if m.viewMode == ViewDetail && m.viewportReady {
		var cmd tea.Cmd
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// waitForSnapshot returns a command that blocks until the poller publishes
// the next snapshot.
func (m Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.poller.Updates()
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

// SelectedSensor returns the view of the currently selected sensor, or nil.
func (m Model) SelectedSensor() *monitor.SensorView {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return nil
	}
	return m.snapshot.Sensor(m.rows[m.selected])
}

// SecondsSinceUpdate returns how many seconds have passed since the last snapshot.
func (m Model) SecondsSinceUpdate() int {
	if m.snapshot.Taken.IsZero() {
		return 0
	}
	return int(time.Since(m.snapshot.Taken).Seconds())
}

// sortRows rebuilds the display order from the current snapshot, keeping
// the selected sensor stable across re-sorts and new snapshots.
func (m *Model) sortRows() {
	var selectedID backend.SensorID
	if m.selected >= 0 && m.selected < len(m.rows) {
		selectedID = m.rows[m.selected]
	}

	m.rows = sortSensors(m.snapshot.Sensors, m.sortOrder)

	if selectedID != "" {
		for i, id := range m.rows {
			if id == selectedID {
				m.selected = i
				return
			}
		}
	}
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 && len(m.rows) > 0 {
		m.selected = 0
	}
}
