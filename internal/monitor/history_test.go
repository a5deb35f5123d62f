package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensortop/sensortop/internal/backend"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		expected int
	}{
		{"default capacity", 0, DefaultHistorySize},
		{"negative capacity", -1, DefaultHistorySize},
		{"custom capacity", 100, 100},
		{"small capacity", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.capacity)
			assert.NotNil(t, s)
			assert.Equal(t, tt.expected, s.Capacity())
		})
	}
}

func TestStoreRecord(t *testing.T) {
	s := NewStore(10)
	id := backend.SensorID("hwmon/chip/temp1")

	now := time.Now()
	s.Record(id, Sample{Time: now, Value: 42.5, Valid: true})

	assert.Equal(t, 1, s.Count(id))

	samples := s.Samples(id)
	require.Len(t, samples, 1)
	assert.Equal(t, 42.5, samples[0].Value)
	assert.True(t, samples[0].Valid)
}

func TestStoreRingBufferOverflow(t *testing.T) {
	s := NewStore(5)
	id := backend.SensorID("hwmon/chip/temp1")

	for i := 0; i < 8; i++ {
		s.Record(id, Sample{Time: time.Now(), Value: float64(i), Valid: true})
	}

	// Capacity caps the count; the oldest samples were evicted
	assert.Equal(t, 5, s.Count(id))

	samples := s.Samples(id)
	require.Len(t, samples, 5)
	values := make([]float64, len(samples))
	for i, smp := range samples {
		values[i] = smp.Value
	}
	assert.Equal(t, []float64{3, 4, 5, 6, 7}, values)
}

func TestStoreAbsentSampleIsNotZeroReading(t *testing.T) {
	s := NewStore(10)
	id := backend.SensorID("hwmon/chip/fan1")

	s.Record(id, Sample{Time: time.Now(), Value: 0, Valid: true})
	s.Record(id, Sample{Time: time.Now()})

	samples := s.Samples(id)
	require.Len(t, samples, 2)
	assert.True(t, samples[0].Valid, "a real 0 RPM reading is valid")
	assert.False(t, samples[1].Valid, "an absent sample is not")
}

func TestStoreSnapshotStats(t *testing.T) {
	reg := NewRegistry()
	reg.Merge([]backend.SensorMeta{
		{ID: "fake/temp1", Name: "CPU Temp", Backend: "fake", Kind: backend.KindTemperature, Unit: backend.UnitCelsius},
		{ID: "fake/temp2", Name: "GPU Temp", Backend: "fake", Kind: backend.KindTemperature, Unit: backend.UnitCelsius},
	})

	s := NewStore(10)
	now := time.Now()
	s.Record("fake/temp1", Sample{Time: now, Value: 45, Valid: true})
	s.Record("fake/temp1", Sample{Time: now, Value: 47, Valid: true})
	s.Record("fake/temp1", Sample{Time: now}) // absent gap
	s.Record("fake/temp1", Sample{Time: now, Value: 44, Valid: true})
	s.SetStatus("fake", BackendStatus{State: StateHealthy})

	snap := s.Snapshot(reg, now)

	require.Len(t, snap.Sensors, 2)
	assert.Equal(t, now, snap.Taken)

	view := snap.Sensor("fake/temp1")
	require.NotNil(t, view)
	assert.True(t, view.HasData)
	assert.Equal(t, 44.0, view.Min)
	assert.Equal(t, 47.0, view.Max)
	assert.Equal(t, 44.0, view.Last.Value)
	require.Len(t, view.Samples, 4)
	assert.False(t, view.Samples[2].Valid)

	// A sensor with no samples still appears, just without data
	empty := snap.Sensor("fake/temp2")
	require.NotNil(t, empty)
	assert.False(t, empty.HasData)
	assert.Empty(t, empty.Samples)

	assert.Equal(t, StateHealthy, snap.Backends["fake"].State)
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	reg := NewRegistry()
	reg.Merge([]backend.SensorMeta{
		{ID: "fake/temp1", Name: "CPU Temp", Backend: "fake", Kind: backend.KindTemperature},
	})

	s := NewStore(10)
	now := time.Now()
	s.Record("fake/temp1", Sample{Time: now, Value: 50, Valid: true})

	snap := s.Snapshot(reg, now)

	// Mutating the store after the snapshot must not change the snapshot
	s.Record("fake/temp1", Sample{Time: now, Value: 99, Valid: true})
	s.SetStatus("fake", BackendStatus{State: StateDegraded})

	view := snap.Sensor("fake/temp1")
	require.Len(t, view.Samples, 1)
	assert.Equal(t, 50.0, view.Samples[0].Value)
	_, hasStatus := snap.Backends["fake"]
	assert.False(t, hasStatus)
}

func TestStoreConcurrentRecordAndSnapshot(t *testing.T) {
	reg := NewRegistry()
	reg.Merge([]backend.SensorMeta{
		{ID: "fake/temp1", Name: "CPU Temp", Backend: "fake", Kind: backend.KindTemperature},
	})

	s := NewStore(50)
	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.Record("fake/temp1", Sample{Time: time.Now(), Value: float64(i), Valid: true})
		}
		close(done)
	}()

	// Every snapshot taken concurrently must be internally consistent:
	// chronological values with no torn reads.
	for {
		snap := s.Snapshot(reg, time.Now())
		view := snap.Sensor("fake/temp1")
		require.NotNil(t, view)
		for i := 1; i < len(view.Samples); i++ {
			assert.Equal(t, view.Samples[i-1].Value+1, view.Samples[i].Value)
		}
		select {
		case <-done:
			wg.Wait()
			return
		default:
		}
	}
}
