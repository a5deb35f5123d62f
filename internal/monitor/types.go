package monitor

import (
	"time"

	"github.com/sensortop/sensortop/internal/backend"
)

// DefaultHistorySize is the default number of samples retained per sensor.
// At the default 2s polling interval this covers about five minutes.
const DefaultHistorySize = 150

// Sample is one recorded reading. Valid=false marks an absent sample: the
// backend responded (or failed) but this sensor had no value that tick. An
// absent sample is distinguishable from a reading of 0.
type Sample struct {
	Time  time.Time
	Value float64
	Valid bool
}

// BackendState is the health of one backend as of the last sampling attempt.
type BackendState int

const (
	StateHealthy BackendState = iota
	StateDegraded
	StateUnavailable
)

// String returns a human-readable status label.
func (s BackendState) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// BackendStatus pairs a backend's state with the reason it is not healthy.
// Only the poller writes these; the renderer reads them from snapshots.
type BackendStatus struct {
	State  BackendState
	Reason string
}

// SensorView is one sensor's renderer-visible state: its immutable meta,
// a chronological copy of its history, and summary statistics computed over
// the valid samples.
type SensorView struct {
	Meta    backend.SensorMeta
	Samples []Sample
	Last    Sample  // most recent sample, valid or not
	Min     float64 // min over valid samples; 0 if none
	Max     float64 // max over valid samples; 0 if none
	HasData bool    // at least one valid sample recorded
}

// Snapshot is an immutable, internally consistent view of everything the
// dashboard currently knows. The renderer operates only on snapshots, never
// on live poller state.
type Snapshot struct {
	Taken    time.Time
	Sensors  []SensorView // registry order (first seen, stable)
	Backends map[string]BackendStatus
}

// Sensor returns the view for the given id, or nil if unknown.
func (s *Snapshot) Sensor(id backend.SensorID) *SensorView {
	for i := range s.Sensors {
		if s.Sensors[i].Meta.ID == id {
			return &s.Sensors[i]
		}
	}
	return nil
}
