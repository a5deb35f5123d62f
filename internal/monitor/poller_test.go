package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensortop/sensortop/internal/backend"
	btesting "github.com/sensortop/sensortop/internal/backend/testing"
	"github.com/sensortop/sensortop/internal/logger"
)

// newTestPoller builds a poller over the given fakes without starting Run.
func newTestPoller(t *testing.T, backends ...backend.Backend) (*Poller, *Registry, *Store) {
	t.Helper()
	reg, statuses := BuildRegistry(context.Background(), backends, logger.Noop())
	store := NewStore(20)
	for name, status := range statuses {
		store.SetStatus(name, status)
	}
	p := NewPoller(backends, reg, store, time.Hour, 100*time.Millisecond, logger.Noop())
	return p, reg, store
}

func TestPollerTickRecordsValues(t *testing.T) {
	fake := btesting.NewFakeBackend("fake").
		AddSensor("fake/temp1", "CPU Temp", backend.KindTemperature).
		Script(btesting.Step{Values: map[backend.SensorID]float64{"fake/temp1": 45}})

	p, _, store := newTestPoller(t, fake)
	p.tick(context.Background())

	samples := store.Samples("fake/temp1")
	require.Len(t, samples, 1)
	assert.Equal(t, 45.0, samples[0].Value)
	assert.True(t, samples[0].Valid)

	status, ok := store.Status("fake")
	require.True(t, ok)
	assert.Equal(t, StateHealthy, status.State)
}

func TestPollerOmittedSensorRecordedAbsent(t *testing.T) {
	fake := btesting.NewFakeBackend("fake").
		AddSensor("fake/temp1", "CPU Temp", backend.KindTemperature).
		AddSensor("fake/fan1", "CPU Fan", backend.KindFan).
		Script(btesting.Step{Values: map[backend.SensorID]float64{"fake/temp1": 45}})

	p, _, store := newTestPoller(t, fake)
	p.tick(context.Background())

	// The backend succeeded but reported nothing for the fan
	fan := store.Samples("fake/fan1")
	require.Len(t, fan, 1)
	assert.False(t, fan[0].Valid)

	status, _ := store.Status("fake")
	assert.Equal(t, StateHealthy, status.State)
}

func TestPollerFailureIsolation(t *testing.T) {
	good := btesting.NewFakeBackend("good").
		AddSensor("good/temp1", "Temp", backend.KindTemperature).
		Script(btesting.Step{Values: map[backend.SensorID]float64{"good/temp1": 50}})
	bad := btesting.NewFakeBackend("bad").
		AddSensor("bad/temp1", "Temp", backend.KindTemperature).
		Script(btesting.Step{Err: backend.NewError(backend.IOFailure, "bad", errors.New("read failed"))})

	p, _, store := newTestPoller(t, good, bad)
	p.tick(context.Background())

	// The good backend is unaffected
	goodSamples := store.Samples("good/temp1")
	require.Len(t, goodSamples, 1)
	assert.True(t, goodSamples[0].Valid)

	// The bad backend's sensors get absent markers and a degraded status
	badSamples := store.Samples("bad/temp1")
	require.Len(t, badSamples, 1)
	assert.False(t, badSamples[0].Valid)

	status, _ := store.Status("bad")
	assert.Equal(t, StateDegraded, status.State)
	assert.Equal(t, "I/O failure", status.Reason)
}

func TestPollerTimeoutMarksUnavailableThenRecovers(t *testing.T) {
	fake := btesting.NewFakeBackend("fake").
		AddSensor("fake/temp1", "Temp", backend.KindTemperature).
		Script(
			btesting.Step{Delay: time.Second}, // exceeds the 100ms sample timeout
			btesting.Step{Values: map[backend.SensorID]float64{"fake/temp1": 46}},
		)

	p, _, store := newTestPoller(t, fake)

	p.tick(context.Background())
	status, _ := store.Status("fake")
	assert.Equal(t, StateUnavailable, status.State)
	assert.Equal(t, "timeout", status.Reason)

	// The very next tick retries and recovers
	p.tick(context.Background())
	status, _ = store.Status("fake")
	assert.Equal(t, StateHealthy, status.State)

	samples := store.Samples("fake/temp1")
	require.Len(t, samples, 2)
	assert.False(t, samples[0].Valid, "the timed-out tick left a gap")
	assert.True(t, samples[1].Valid)
	assert.Equal(t, 46.0, samples[1].Value)
}

func TestPollerTickBoundedByTimeoutNotSum(t *testing.T) {
	// Three slow backends sampled concurrently: one tick should take about
	// one timeout, nowhere near three.
	var backends []backend.Backend
	for _, name := range []string{"a", "b", "c"} {
		backends = append(backends, btesting.NewFakeBackend(name).
			AddSensor(backend.SensorID(name+"/temp1"), "Temp", backend.KindTemperature).
			Script(btesting.Step{Delay: time.Second}))
	}

	p, _, _ := newTestPoller(t, backends...)

	start := time.Now()
	p.tick(context.Background())
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestPollerHistorySequence(t *testing.T) {
	fake := btesting.NewFakeBackend("fake").
		AddSensor("fake/temp1", "Temp", backend.KindTemperature).
		Script(
			btesting.Step{Values: map[backend.SensorID]float64{"fake/temp1": 45}},
			btesting.Step{Values: map[backend.SensorID]float64{"fake/temp1": 46}},
			btesting.Step{}, // backend responds, sensor omitted
			btesting.Step{Values: map[backend.SensorID]float64{"fake/temp1": 47}},
		)

	p, reg, store := newTestPoller(t, fake)
	for i := 0; i < 4; i++ {
		p.tick(context.Background())
		status, _ := store.Status("fake")
		assert.Equal(t, StateHealthy, status.State, "healthy throughout")
	}

	snap := store.Snapshot(reg, time.Now())
	view := snap.Sensor("fake/temp1")
	require.NotNil(t, view)
	require.Len(t, view.Samples, 4)

	assert.Equal(t, 45.0, view.Samples[0].Value)
	assert.Equal(t, 46.0, view.Samples[1].Value)
	assert.False(t, view.Samples[2].Valid)
	assert.Equal(t, 47.0, view.Samples[3].Value)

	assert.Equal(t, 45.0, view.Min)
	assert.Equal(t, 47.0, view.Max)
	assert.Equal(t, StateHealthy, snap.Backends["fake"].State)
}

func TestPollerRunPublishesAndPauses(t *testing.T) {
	fake := btesting.NewFakeBackend("fake").
		AddSensor("fake/temp1", "Temp", backend.KindTemperature).
		Script(btesting.Step{Values: map[backend.SensorID]float64{"fake/temp1": 45}})

	p, _, store := newTestPoller(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)

	// The initial tick publishes a snapshot without waiting for the interval
	select {
	case snap := <-p.Updates():
		view := snap.Sensor("fake/temp1")
		require.NotNil(t, view)
		assert.True(t, view.HasData)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot published after start")
	}

	p.Pause()
	require.Eventually(t, func() bool {
		// Pause publishes a snapshot so the UI can show the badge
		select {
		case <-p.Updates():
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	countWhilePaused := store.Count("fake/temp1")
	p.Tick() // ignored while paused
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, countWhilePaused, store.Count("fake/temp1"))

	p.Resume()
	require.Eventually(t, func() bool {
		return store.Count("fake/temp1") > countWhilePaused
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	p.Wait()
}

func TestPollerRescanAddsSensors(t *testing.T) {
	fake := btesting.NewFakeBackend("fake").
		AddSensor("fake/temp1", "Temp", backend.KindTemperature).
		Script(btesting.Step{Values: map[backend.SensorID]float64{"fake/temp1": 45}})

	p, reg, _ := newTestPoller(t, fake)
	assert.Equal(t, 1, reg.Len())

	fake.AddSensor("fake/temp2", "New Temp", backend.KindTemperature)
	p.rescan(context.Background())

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, backend.SensorID("fake/temp1"), reg.All()[0], "existing order preserved")
}

func TestPollerSnapshotConflation(t *testing.T) {
	fake := btesting.NewFakeBackend("fake").
		AddSensor("fake/temp1", "Temp", backend.KindTemperature).
		Script(btesting.Step{Values: map[backend.SensorID]float64{"fake/temp1": 45}})

	p, _, _ := newTestPoller(t, fake)

	// Publish twice without a reader; the second snapshot replaces the first
	p.tick(context.Background())
	p.tick(context.Background())

	snap := <-p.Updates()
	view := snap.Sensor("fake/temp1")
	require.NotNil(t, view)
	assert.Len(t, view.Samples, 2, "reader sees the newest snapshot")

	select {
	case <-p.Updates():
		t.Fatal("stale snapshot should have been conflated away")
	default:
	}
}
