package checkpoint

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/logging"
	"github.com/preston-bernstein/cricket-scoring-service/internal/metrics"
)

const defaultInterval = 30 * time.Second

// Source exposes the latest published state of every match.
type Source interface {
	Snapshots() []domainmatches.MatchState
}

// SnapshotWriter persists match checkpoints to disk.
type SnapshotWriter interface {
	WriteMatchSnapshot(state domainmatches.MatchState) error
}

// Checkpointer writes every match whose version moved since the last cycle.
// Checkpoints only speed up reads after a restart; the match log stays
// authoritative.
type Checkpointer struct {
	source   Source
	writer   SnapshotWriter
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration

	ticker   *time.Ticker
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	cycleMu sync.Mutex
	written map[string]int64

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the checkpoint loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the last cycle ran and writes are not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Checkpointer.
func New(source Source, writer SnapshotWriter, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Checkpointer {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Checkpointer{
		source:   source,
		writer:   writer,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		written:  make(map[string]int64),
	}
}

// Start runs a cycle immediately and then on every tick until the context is
// cancelled or Stop is called.
func (c *Checkpointer) Start(ctx context.Context) {
	c.startMu.Lock()
	if c.started {
		c.startMu.Unlock()
		return
	}
	c.started = true
	c.startMu.Unlock()

	c.ticker = time.NewTicker(c.interval)

	go func() {
		defer close(c.stopped)
		logging.Info(c.logger, "checkpointer started", logging.FieldDurationMS, c.interval.Milliseconds())
		c.RunOnce()

		for {
			select {
			case <-ctx.Done():
				c.ticker.Stop()
				logging.Info(c.logger, "checkpointer stopped")
				return
			case <-c.done:
				c.ticker.Stop()
				logging.Info(c.logger, "checkpointer stopped")
				return
			case <-c.ticker.C:
				c.RunOnce()
			}
		}
	}()
}

// Stop halts the loop and writes a final checkpoint.
func (c *Checkpointer) Stop(ctx context.Context) error {
	c.stopOnce.Do(func() {
		close(c.done)
	})

	c.startMu.Lock()
	started := c.started
	c.startMu.Unlock()
	if started {
		select {
		case <-c.stopped:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return c.RunOnce()
}

// RunOnce checkpoints every changed match and returns the joined write errors.
func (c *Checkpointer) RunOnce() error {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	start := time.Now()
	c.recordAttempt(start)

	var (
		errs    []error
		written int
	)
	for _, state := range c.source.Snapshots() {
		if v, ok := c.written[state.ID]; ok && v == state.Version {
			continue
		}
		if err := c.writer.WriteMatchSnapshot(state); err != nil {
			logging.Error(c.logger, "checkpoint write failed", err, logging.FieldMatchID, state.ID)
			errs = append(errs, err)
			continue
		}
		c.written[state.ID] = state.Version
		written++
	}

	err := errors.Join(errs...)
	c.metrics.RecordCheckpointCycle(time.Since(start), err)
	if err != nil {
		c.recordFailure(err, start)
		return err
	}
	c.recordSuccess(start)
	if written > 0 {
		logging.Info(c.logger, "checkpoint written",
			logging.FieldCount, written,
			logging.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}
	return nil
}

func (c *Checkpointer) recordAttempt(at time.Time) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	c.status.LastAttempt = at
}

func (c *Checkpointer) recordSuccess(at time.Time) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	c.status.ConsecutiveFailures = 0
	c.status.LastError = ""
	c.status.LastSuccess = at
}

func (c *Checkpointer) recordFailure(err error, at time.Time) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	c.status.ConsecutiveFailures++
	if err != nil {
		c.status.LastError = err.Error()
	}
	c.status.LastAttempt = at
}

// Status returns a snapshot of the loop's recent health.
func (c *Checkpointer) Status() Status {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.status
}
