package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/logging"
	"github.com/preston-bernstein/cricket-scoring-service/internal/metrics"
)

const (
	fanoutBuffer   = 256
	publishTimeout = 2 * time.Second
)

var errQueueFull = errors.New("sink queue full")

// Fanout forwards published snapshots to external sinks on its own goroutine
// so a slow sink never holds up a scorer. When the buffer is full the update
// is dropped; the next snapshot for the match supersedes it anyway.
type Fanout struct {
	sinks   []Sink
	logger  *slog.Logger
	metrics *metrics.Recorder

	queue  chan matches.MatchState
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewFanout builds a fanout over the given sinks.
func NewFanout(logger *slog.Logger, recorder *metrics.Recorder, sinks ...Sink) *Fanout {
	return &Fanout{
		sinks:   sinks,
		logger:  logger,
		metrics: recorder,
		queue:   make(chan matches.MatchState, fanoutBuffer),
	}
}

// Start launches the worker. Calling Start twice is a no-op.
func (f *Fanout) Start(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil || len(f.sinks) == 0 {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.done = make(chan struct{})
	go f.loop(ctx, f.done)
}

// Stop halts the worker and waits for it to exit. Queued updates are discarded.
func (f *Fanout) Stop() {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// Publish enqueues the snapshot without blocking.
func (f *Fanout) Publish(state matches.MatchState) {
	if f == nil || len(f.sinks) == 0 {
		return
	}
	select {
	case f.queue <- state:
	default:
		for _, sink := range f.sinks {
			f.metrics.RecordSinkPublish(sink.Name(), 0, errQueueFull)
		}
		logging.Warn(f.logger, "sink queue full, dropping update",
			logging.FieldMatchID, state.ID,
			"version", state.Version,
		)
	}
}

func (f *Fanout) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case state := <-f.queue:
			f.deliver(ctx, state)
		}
	}
}

func (f *Fanout) deliver(ctx context.Context, state matches.MatchState) {
	for _, sink := range f.sinks {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		start := time.Now()
		err := sink.Publish(pubCtx, state)
		cancel()
		f.metrics.RecordSinkPublish(sink.Name(), time.Since(start), err)
		if err != nil {
			logging.Warn(f.logger, "sink publish failed",
				"sink", sink.Name(),
				logging.FieldMatchID, state.ID,
				"error", err,
			)
		}
	}
}
