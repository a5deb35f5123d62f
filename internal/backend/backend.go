// Package backend defines the adapter boundary between the dashboard core
// and native sensor libraries. Each adapter wraps one sensor source (the
// hwmon sysfs tree, NVML, ...) behind a small synchronous interface so the
// rest of the program never touches library-specific types or handles.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// SensorID is an opaque, stable handle for one physical sensor. It is
// namespaced by backend ("hwmon/k10temp-0/temp1", "nvml/gpu0/temp") so two
// backends reporting identically named sensors never collide. IDs are never
// reused for the lifetime of the process.
type SensorID string

// Kind classifies what physical quantity a sensor measures.
type Kind int

const (
	KindTemperature Kind = iota
	KindFan
	KindVoltage
	KindPower
	KindUtilization
)

// String returns a human-readable label for the sensor kind.
func (k Kind) String() string {
	switch k {
	case KindTemperature:
		return "temperature"
	case KindFan:
		return "fan"
	case KindVoltage:
		return "voltage"
	case KindPower:
		return "power"
	case KindUtilization:
		return "utilization"
	default:
		return "unknown"
	}
}

// Unit is the physical unit a sensor reports in.
type Unit string

const (
	UnitCelsius Unit = "°C"
	UnitRPM     Unit = "RPM"
	UnitVolts   Unit = "V"
	UnitWatts   Unit = "W"
	UnitPercent Unit = "%"
)

// UnitFor returns the canonical unit for a sensor kind.
func UnitFor(k Kind) Unit {
	switch k {
	case KindTemperature:
		return UnitCelsius
	case KindFan:
		return UnitRPM
	case KindVoltage:
		return UnitVolts
	case KindPower:
		return UnitWatts
	case KindUtilization:
		return UnitPercent
	default:
		return ""
	}
}

// SensorMeta describes one sensor. Metas are created at enumeration time and
// never mutated afterwards.
type SensorMeta struct {
	ID      SensorID
	Name    string // display name, e.g. "CPU Tctl" or "RTX 4070 Temp"
	Backend string // owning backend name, e.g. "hwmon"
	Kind    Kind
	Unit    Unit
}

// Backend is the adapter contract every sensor source implements.
//
// Enumerate is called once at startup and again on an explicit rescan (to
// pick up hot-plugged devices). Sample returns current values for the
// requested ids; an id omitted from the result map had no valid reading this
// cycle, which is distinct from the whole call failing. Implementations must
// honor ctx cancellation and never block past its deadline.
type Backend interface {
	Name() string
	Enumerate(ctx context.Context) ([]SensorMeta, error)
	Sample(ctx context.Context, ids []SensorID) (map[SensorID]float64, error)
	Close() error
}

// ErrorKind categorizes backend failures.
type ErrorKind int

const (
	// InitFailure means the underlying library or device could not be
	// opened at all.
	InitFailure ErrorKind = iota
	// IOFailure means the backend is present but a read failed this cycle.
	IOFailure
	// Timeout means the backend did not respond within the sample deadline.
	Timeout
)

// String returns a short label for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case InitFailure:
		return "init failure"
	case IOFailure:
		return "I/O failure"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is a backend-level failure. It is always recoverable: the poller
// surfaces it as a status indicator and retries on the next tick.
type Error struct {
	Kind    ErrorKind
	Backend string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Kind)
}

// Unwrap returns the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a backend Error of the given kind.
func NewError(kind ErrorKind, name string, err error) *Error {
	return &Error{Kind: kind, Backend: name, Err: err}
}

// Classify normalizes an arbitrary error from an adapter call into a
// *backend.Error. Context deadline expiry becomes a Timeout; anything else
// that is not already a backend Error becomes an IOFailure.
func Classify(err error, name string, ctx context.Context) *Error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	if errors.Is(err, context.DeadlineExceeded) || (ctx != nil && ctx.Err() != nil) {
		return NewError(Timeout, name, err)
	}
	return NewError(IOFailure, name, err)
}
