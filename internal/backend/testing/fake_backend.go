// Package testing provides test doubles for the backend package.
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/sensortop/sensortop/internal/backend"
)

// Step scripts the outcome of one Sample call.
type Step struct {
	Values map[backend.SensorID]float64 // Values to return; sensors not listed are omitted
	Err    error                        // If set, the call fails with this error
	Delay  time.Duration                // Simulated sampling latency
}

// FakeBackend is a scripted backend for testing. Each Sample call consumes
// the next Step; when the script runs out, the last step repeats.
type FakeBackend struct {
	mu      sync.Mutex
	name    string
	metas   []backend.SensorMeta
	steps   []Step
	stepIdx int

	enumerateErr   error
	enumerateDelay time.Duration

	// Tracking for assertions
	EnumerateCalls int
	SampleCalls    int
	Closed         bool
}

// NewFakeBackend creates a fake backend with the given name.
func NewFakeBackend(name string) *FakeBackend {
	return &FakeBackend{name: name}
}

// AddSensor registers a sensor the fake will enumerate.
func (f *FakeBackend) AddSensor(id backend.SensorID, name string, kind backend.Kind) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.metas = append(f.metas, backend.SensorMeta{
		ID:      id,
		Name:    name,
		Backend: f.name,
		Kind:    kind,
		Unit:    backend.UnitFor(kind),
	})
	return f
}

// Script sets the sequence of Sample outcomes.
func (f *FakeBackend) Script(steps ...Step) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.steps = steps
	f.stepIdx = 0
	return f
}

// FailEnumerate makes Enumerate return the given error.
func (f *FakeBackend) FailEnumerate(err error) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.enumerateErr = err
	return f
}

// SlowEnumerate makes Enumerate take the given time, bailing out early if
// the context expires first.
func (f *FakeBackend) SlowEnumerate(d time.Duration) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.enumerateDelay = d
	return f
}

// Name implements backend.Backend.
func (f *FakeBackend) Name() string {
	return f.name
}

// Enumerate implements backend.Backend.
func (f *FakeBackend) Enumerate(ctx context.Context) ([]backend.SensorMeta, error) {
	f.mu.Lock()
	f.EnumerateCalls++
	delay := f.enumerateDelay
	enumErr := f.enumerateErr
	metas := make([]backend.SensorMeta, len(f.metas))
	copy(metas, f.metas)
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if enumErr != nil {
		return nil, enumErr
	}
	return metas, nil
}

// Sample implements backend.Backend by consuming the next scripted step.
func (f *FakeBackend) Sample(ctx context.Context, ids []backend.SensorID) (map[backend.SensorID]float64, error) {
	f.mu.Lock()
	f.SampleCalls++
	var step Step
	if len(f.steps) > 0 {
		step = f.steps[f.stepIdx]
		if f.stepIdx < len(f.steps)-1 {
			f.stepIdx++
		}
	}
	f.mu.Unlock()

	if step.Delay > 0 {
		select {
		case <-time.After(step.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if step.Err != nil {
		return nil, step.Err
	}

	values := make(map[backend.SensorID]float64, len(ids))
	for _, id := range ids {
		if v, ok := step.Values[id]; ok {
			values[id] = v
		}
	}
	return values, nil
}

// Close implements backend.Backend.
func (f *FakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Closed = true
	return nil
}
