package monitor

import (
	"context"
	"sync"

	"github.com/sensortop/sensortop/internal/backend"
	"github.com/sensortop/sensortop/internal/logger"
)

// Registry is the merged catalog of every sensor enumerated across all
// backends. IDs are handed out once and stay stable for the process
// lifetime: a rescan may append new sensors but never removes, reorders, or
// reuses an existing handle. Row order in the dashboard is first-seen order.
type Registry struct {
	mu        sync.RWMutex
	metas     map[backend.SensorID]backend.SensorMeta
	order     []backend.SensorID
	byBackend map[string][]backend.SensorID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		metas:     make(map[backend.SensorID]backend.SensorMeta),
		byBackend: make(map[string][]backend.SensorID),
	}
}

// BuildRegistry enumerates every backend and merges the results. A backend
// that fails to enumerate contributes no sensors but does not abort the
// build; the poller will re-probe it on rescan. The returned map carries the
// initial status for each backend.
func BuildRegistry(ctx context.Context, backends []backend.Backend, log logger.Logger) (*Registry, map[string]BackendStatus) {
	reg := NewRegistry()
	statuses := make(map[string]BackendStatus, len(backends))

	for _, b := range backends {
		metas, err := b.Enumerate(ctx)
		if err != nil {
			be := backend.Classify(err, b.Name(), ctx)
			log.Warn("backend %s failed to enumerate: %v", b.Name(), be)
			statuses[b.Name()] = BackendStatus{State: StateUnavailable, Reason: be.Kind.String()}
			continue
		}
		added := reg.Merge(metas)
		log.Debug("backend %s enumerated %d sensors (%d new)", b.Name(), len(metas), added)
		statuses[b.Name()] = BackendStatus{State: StateHealthy}
	}

	return reg, statuses
}

// Merge adds metas the registry has not seen before, preserving first-seen
// order. Duplicate IDs (same backend, same native id) are ignored; sensors
// with identical display names but different backends remain distinct.
// Returns the number of sensors added.
func (r *Registry) Merge(metas []backend.SensorMeta) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, m := range metas {
		if _, seen := r.metas[m.ID]; seen {
			continue
		}
		r.metas[m.ID] = m
		r.order = append(r.order, m.ID)
		r.byBackend[m.Backend] = append(r.byBackend[m.Backend], m.ID)
		added++
	}
	return added
}

// Lookup returns the meta for an id.
func (r *Registry) Lookup(id backend.SensorID) (backend.SensorMeta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.metas[id]
	return m, ok
}

// All returns every sensor id in stable first-seen order.
func (r *Registry) All() []backend.SensorID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]backend.SensorID, len(r.order))
	copy(out, r.order)
	return out
}

// IDsFor returns the ids owned by one backend, in first-seen order.
func (r *Registry) IDsFor(name string) []backend.SensorID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byBackend[name]
	out := make([]backend.SensorID, len(ids))
	copy(out, ids)
	return out
}

// Len returns the number of registered sensors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
