package monitor

import (
	"context"
	"time"

	"github.com/sensortop/sensortop/internal/backend"
	"github.com/sensortop/sensortop/internal/logger"
)

// DefaultInterval is the default polling cadence.
const DefaultInterval = 2 * time.Second

// DefaultSampleTimeout is the hard per-backend deadline for one Sample call.
const DefaultSampleTimeout = 1 * time.Second

// commandKind enumerates poller control commands.
type commandKind int

const (
	cmdPause commandKind = iota
	cmdResume
	cmdRescan
	cmdTick
)

// Poller owns the fixed-interval sampling loop. Every tick it samples all
// backends concurrently, each under a hard deadline, records results (and
// absent markers) into the store, updates backend statuses, and publishes a
// fresh snapshot. Backend failures are isolated: one bad backend never
// stalls the others or the loop, and an unavailable backend is cheaply
// re-probed on every subsequent tick.
type Poller struct {
	backends      []backend.Backend
	registry      *Registry
	store         *Store
	interval      time.Duration
	sampleTimeout time.Duration
	log           logger.Logger

	commands chan commandKind
	updates  chan Snapshot
	done     chan struct{}
}

// backendResult is one backend's outcome for a single tick.
type backendResult struct {
	name   string
	values map[backend.SensorID]float64
	err    *backend.Error
}

// NewPoller creates a poller. The store's statuses are seeded from the
// registry build so backends that failed enumeration start out unavailable.
func NewPoller(backends []backend.Backend, reg *Registry, store *Store, interval, sampleTimeout time.Duration, log logger.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if sampleTimeout <= 0 {
		sampleTimeout = DefaultSampleTimeout
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Poller{
		backends:      backends,
		registry:      reg,
		store:         store,
		interval:      interval,
		sampleTimeout: sampleTimeout,
		log:           log,
		commands:      make(chan commandKind, 8),
		updates:       make(chan Snapshot, 1),
		done:          make(chan struct{}),
	}
}

// Updates returns the snapshot channel. It holds at most one snapshot;
// stale snapshots are replaced by newer ones so a slow reader never backs
// up the poller.
func (p *Poller) Updates() <-chan Snapshot {
	return p.updates
}

// Pause suspends sampling. Ticks still fire but record nothing.
func (p *Poller) Pause() { p.send(cmdPause) }

// Resume restarts sampling after a pause.
func (p *Poller) Resume() { p.send(cmdResume) }

// Rescan re-enumerates all backends, picking up hot-plugged sensors.
func (p *Poller) Rescan() { p.send(cmdRescan) }

// Tick forces an immediate sampling cycle without waiting for the timer.
func (p *Poller) Tick() { p.send(cmdTick) }

// send enqueues a command without ever blocking the caller. The command
// buffer is small; dropping a duplicate pause/refresh under burst is fine.
func (p *Poller) send(c commandKind) {
	select {
	case p.commands <- c:
	default:
	}
}

// Wait blocks until the run loop has exited.
func (p *Poller) Wait() {
	<-p.done
}

// Run executes the polling loop until ctx is cancelled. An initial tick
// fires immediately so the dashboard has data before the first interval
// elapses. In-flight sample calls are bounded by the sample timeout, so
// shutdown completes within roughly one timeout of cancellation.
func (p *Poller) Run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	paused := false

	p.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if paused {
				continue
			}
			p.tick(ctx)

		case cmd := <-p.commands:
			switch cmd {
			case cmdPause:
				paused = true
				p.log.Debug("polling paused")
				p.publish(p.store.Snapshot(p.registry, time.Now()))
			case cmdResume:
				if paused {
					paused = false
					p.log.Debug("polling resumed")
					p.tick(ctx)
				}
			case cmdRescan:
				p.rescan(ctx)
				if !paused {
					p.tick(ctx)
				}
			case cmdTick:
				if !paused {
					p.tick(ctx)
				}
			}
		}
	}
}

// tick runs one full sampling cycle across all backends concurrently and
// publishes the resulting snapshot. Wall-clock time is bounded by the
// per-backend sample timeout, not the sum across backends.
func (p *Poller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	now := time.Now()
	results := make(chan backendResult, len(p.backends))

	for _, b := range p.backends {
		go func(b backend.Backend) {
			results <- p.sampleOne(ctx, b)
		}(b)
	}

	for range p.backends {
		res := <-results
		p.recordResult(res, now)
	}

	p.publish(p.store.Snapshot(p.registry, now))
}

// sampleOne calls one backend's Sample under a hard deadline. The native
// call runs in its own goroutine raced against the deadline so a stuck
// library call cannot stall the tick; an expired deadline counts as that
// backend's failure for this tick only.
func (p *Poller) sampleOne(ctx context.Context, b backend.Backend) backendResult {
	ids := p.registry.IDsFor(b.Name())

	callCtx, cancel := context.WithTimeout(ctx, p.sampleTimeout)
	defer cancel()

	type sampleOutcome struct {
		values map[backend.SensorID]float64
		err    error
	}
	outcome := make(chan sampleOutcome, 1)

	go func() {
		values, err := b.Sample(callCtx, ids)
		outcome <- sampleOutcome{values, err}
	}()

	select {
	case <-callCtx.Done():
		return backendResult{
			name: b.Name(),
			err:  backend.NewError(backend.Timeout, b.Name(), callCtx.Err()),
		}
	case out := <-outcome:
		if out.err != nil {
			return backendResult{
				name: b.Name(),
				err:  backend.Classify(out.err, b.Name(), callCtx),
			}
		}
		return backendResult{name: b.Name(), values: out.values}
	}
}

// recordResult writes one backend's tick outcome into the store. On success
// every enumerated sensor gets a sample: real values for ids the backend
// returned, absent markers for ids it omitted. On failure every sensor gets
// an absent marker so gaps stay visible instead of going silently stale.
func (p *Poller) recordResult(res backendResult, now time.Time) {
	ids := p.registry.IDsFor(res.name)

	if res.err != nil {
		state := StateDegraded
		if res.err.Kind == backend.Timeout || res.err.Kind == backend.InitFailure {
			state = StateUnavailable
		}
		p.store.SetStatus(res.name, BackendStatus{State: state, Reason: res.err.Kind.String()})
		p.log.Debug("backend %s failed this tick: %v", res.name, res.err)
		for _, id := range ids {
			p.store.Record(id, Sample{Time: now})
		}
		return
	}

	p.store.SetStatus(res.name, BackendStatus{State: StateHealthy})
	for _, id := range ids {
		if v, ok := res.values[id]; ok {
			p.store.Record(id, Sample{Time: now, Value: v, Valid: true})
		} else {
			p.store.Record(id, Sample{Time: now})
		}
	}
}

// rescan re-enumerates every backend and merges new sensors into the
// registry. Enumeration failures only affect status; existing sensors and
// their histories are untouched.
func (p *Poller) rescan(ctx context.Context) {
	for _, b := range p.backends {
		callCtx, cancel := context.WithTimeout(ctx, p.sampleTimeout)
		metas, err := b.Enumerate(callCtx)
		cancel()
		if err != nil {
			be := backend.Classify(err, b.Name(), callCtx)
			p.store.SetStatus(b.Name(), BackendStatus{State: StateUnavailable, Reason: be.Kind.String()})
			p.log.Warn("rescan: backend %s failed to enumerate: %v", b.Name(), be)
			continue
		}
		if added := p.registry.Merge(metas); added > 0 {
			p.log.Info("rescan: backend %s added %d sensors", b.Name(), added)
		}
	}
}

// publish replaces any unconsumed snapshot with the newest one.
func (p *Poller) publish(snap Snapshot) {
	for {
		select {
		case p.updates <- snap:
			return
		default:
			select {
			case <-p.updates:
			default:
			}
		}
	}
}
