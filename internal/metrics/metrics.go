package metrics

import (
	"sync"
	"time"
)

type backendStats struct {
	calls           int
	errors          int
	lastCallLatency time.Duration
}

// Recorder captures lightweight in-memory counters and forwards them to
// OpenTelemetry instruments when telemetry is enabled.
type Recorder struct {
	mu               sync.Mutex
	stores           map[string]*backendStats
	sinks            map[string]*backendStats
	submissions      map[string]int
	published        int
	drops            int
	checkpoints      int
	checkpointErrors int
	otel             *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stores:      make(map[string]*backendStats),
		sinks:       make(map[string]*backendStats),
		submissions: make(map[string]int),
		otel:        otel,
	}
}

// RecordSubmission counts a scorer submission by outcome and tracks its latency.
func (r *Recorder) RecordSubmission(outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.submissions[outcome]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordSubmission(outcome, duration)
	}
}

// RecordStoreAppend tracks a write to the event log backend.
func (r *Recorder) RecordStoreAppend(store string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.track(r.stores, store, duration, err)
	if r.otel != nil {
		r.otel.recordStoreAppend(store, duration, err)
	}
}

// RecordSinkPublish tracks a live-state publish to an external sink.
func (r *Recorder) RecordSinkPublish(sink string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.track(r.sinks, sink, duration, err)
	if r.otel != nil {
		r.otel.recordSinkPublish(sink, duration, err)
	}
}

// RecordSnapshotPublished counts a live-state snapshot swap.
func (r *Recorder) RecordSnapshotPublished() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.published++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.snapshotsPublished, 1)
	}
}

// RecordSubscriberDrop counts an update coalesced away for a slow subscriber.
func (r *Recorder) RecordSubscriberDrop() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.drops++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.subscriberDrops, 1)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordCheckpointCycle tracks checkpoint cycles and errors.
func (r *Recorder) RecordCheckpointCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.checkpoints++
	if err != nil {
		r.checkpointErrors++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCheckpoint(duration, err)
	}
}

// Snapshot is a copy of the stats kept for one backend.
type Snapshot struct {
	Calls           int
	Errors          int
	LastCallLatency time.Duration
}

// StoreSnapshot returns the append stats for an event log backend.
func (r *Recorder) StoreSnapshot(store string) Snapshot {
	return r.snapshot(func() map[string]*backendStats { return r.stores }, store)
}

// SinkSnapshot returns the publish stats for a live-state sink.
func (r *Recorder) SinkSnapshot(sink string) Snapshot {
	return r.snapshot(func() map[string]*backendStats { return r.sinks }, sink)
}

// Submissions returns how many submissions ended with the outcome.
func (r *Recorder) Submissions(outcome string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submissions[outcome]
}

// SnapshotsPublished returns the number of live-state swaps recorded.
func (r *Recorder) SnapshotsPublished() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.published
}

// SubscriberDrops returns the number of coalesced subscriber updates.
func (r *Recorder) SubscriberDrops() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drops
}

// CheckpointCycles returns the number of checkpoint cycles and failed cycles recorded.
func (r *Recorder) CheckpointCycles() (cycles, failures int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checkpoints, r.checkpointErrors
}

func (r *Recorder) track(m map[string]*backendStats, name string, duration time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := m[name]
	if !ok {
		stats = &backendStats{}
		m[name] = stats
	}
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
}

func (r *Recorder) snapshot(pick func() map[string]*backendStats, name string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := pick()[name]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		LastCallLatency: stats.lastCallLatency,
	}
}
