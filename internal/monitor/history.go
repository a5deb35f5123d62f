package monitor

import (
	"sync"
	"time"

	"github.com/sensortop/sensortop/internal/backend"
)

// Store holds the bounded history for every sensor plus the per-backend
// health statuses. It is the single shared mutable resource between the
// poller and the renderer: the poller is the sole writer, the renderer only
// ever reads through Snapshot, which copies everything out under the read
// lock so no in-progress append is ever observed.
type Store struct {
	mu       sync.RWMutex
	capacity int
	buffers  map[backend.SensorID]*ringBuffer
	statuses map[string]BackendStatus
}

// ringBuffer is a fixed-size circular buffer of samples.
type ringBuffer struct {
	data  []Sample
	head  int
	count int
	size  int
}

// NewStore creates a store with the given per-sensor capacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &Store{
		capacity: capacity,
		buffers:  make(map[backend.SensorID]*ringBuffer),
		statuses: make(map[string]BackendStatus),
	}
}

// Capacity returns the per-sensor buffer capacity.
func (s *Store) Capacity() int {
	return s.capacity
}

// Record appends one sample to a sensor's history, evicting the oldest
// sample once the buffer is full. O(1).
func (s *Store) Record(id backend.SensorID, sample Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, ok := s.buffers[id]
	if !ok {
		buf = newRingBuffer(s.capacity)
		s.buffers[id] = buf
	}
	buf.push(sample)
}

// SetStatus updates one backend's health. Called only by the poller.
func (s *Store) SetStatus(name string, status BackendStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[name] = status
}

// Status returns the current status for a backend.
func (s *Store) Status(name string) (BackendStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[name]
	return st, ok
}

// Count returns the number of samples stored for a sensor.
func (s *Store) Count(id backend.SensorID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if buf, ok := s.buffers[id]; ok {
		return buf.count
	}
	return 0
}

// Samples returns a chronological copy of one sensor's history.
func (s *Store) Samples(id backend.SensorID) []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if buf, ok := s.buffers[id]; ok {
		return buf.getLast(buf.count)
	}
	return nil
}

// Snapshot produces an immutable point-in-time view of every registered
// sensor and backend status, in registry order. O(number of sensors).
func (s *Store) Snapshot(reg *Registry, taken time.Time) Snapshot {
	ids := reg.All()

	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Taken:    taken,
		Sensors:  make([]SensorView, 0, len(ids)),
		Backends: make(map[string]BackendStatus, len(s.statuses)),
	}
	for name, st := range s.statuses {
		snap.Backends[name] = st
	}

	for _, id := range ids {
		meta, ok := reg.Lookup(id)
		if !ok {
			continue
		}
		view := SensorView{Meta: meta}
		if buf, ok := s.buffers[id]; ok && buf.count > 0 {
			view.Samples = buf.getLast(buf.count)
			view.Last = view.Samples[len(view.Samples)-1]
			for _, smp := range view.Samples {
				if !smp.Valid {
					continue
				}
				if !view.HasData {
					view.Min, view.Max = smp.Value, smp.Value
					view.HasData = true
					continue
				}
				if smp.Value < view.Min {
					view.Min = smp.Value
				}
				if smp.Value > view.Max {
					view.Max = smp.Value
				}
			}
		}
		snap.Sensors = append(snap.Sensors, view)
	}

	return snap
}

// newRingBuffer creates a ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]Sample, size),
		size: size,
	}
}

// push adds a sample, overwriting the oldest once full.
func (r *ringBuffer) push(s Sample) {
	r.data[r.head] = s
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count samples in chronological order.
func (r *ringBuffer) getLast(count int) []Sample {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]Sample, count)
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
