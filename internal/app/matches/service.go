package matches

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/cricket-scoring-service/internal/broadcast"
	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	domainscoring "github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
	"github.com/preston-bernstein/cricket-scoring-service/internal/logging"
	"github.com/preston-bernstein/cricket-scoring-service/internal/metrics"
	"github.com/preston-bernstein/cricket-scoring-service/internal/scoring"
)

var (
	// ErrMatchNotFound is returned for an unknown match id.
	ErrMatchNotFound = errors.New("match not found")
	// ErrMatchExists is returned when creating a match whose id is taken.
	ErrMatchExists = errors.New("match already exists")
	// ErrUnavailable is returned when the match writer could not be acquired in
	// time or the log could not be written. Nothing was applied; retry.
	ErrUnavailable = errors.New("match temporarily unavailable")
)

const defaultLockTimeout = 2 * time.Second

// Store is the append-only match log the service persists to.
type Store interface {
	Append(ctx context.Context, entry domainmatches.Entry) error
	Load(ctx context.Context, matchID string) ([]domainmatches.Entry, error)
	MatchIDs(ctx context.Context) ([]string, error)
}

// Publisher receives every snapshot after it has been persisted.
type Publisher interface {
	Publish(state domainmatches.MatchState)
}

// Options wires the service's collaborators. Zero values are usable.
type Options struct {
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
	Hub         *broadcast.Hub
	Publishers  []Publisher
	LockTimeout time.Duration
	Now         func() time.Time
}

// Service owns every match in the process. Writes to one match are serialized;
// reads of the latest snapshot never wait for a writer.
type Service struct {
	store       Store
	logger      *slog.Logger
	metrics     *metrics.Recorder
	hub         *broadcast.Hub
	publishers  []Publisher
	lockTimeout time.Duration
	now         func() time.Time

	matches sync.Map // match id -> *matchEntry
}

type matchEntry struct {
	sem   chan struct{}
	match atomic.Pointer[scoring.Match]
	live  atomic.Pointer[domainmatches.MatchState]
}

func newMatchEntry() *matchEntry {
	return &matchEntry{sem: make(chan struct{}, 1)}
}

func (e *matchEntry) acquire(ctx context.Context) error {
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
}

func (e *matchEntry) release() {
	<-e.sem
}

// NewService constructs a Service over the given log store.
func NewService(store Store, opts Options) *Service {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = defaultLockTimeout
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	publishers := append([]Publisher(nil), opts.Publishers...)
	if opts.Hub != nil {
		publishers = append([]Publisher{opts.Hub}, publishers...)
	}
	return &Service{
		store:       store,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		hub:         opts.Hub,
		publishers:  publishers,
		lockTimeout: opts.LockTimeout,
		now:         opts.Now,
	}
}

// CreateMatch registers a new match. An empty id is replaced with a UUID.
func (s *Service) CreateMatch(ctx context.Context, setup domainmatches.Setup) (domainmatches.MatchState, error) {
	if setup.ID == "" {
		setup.ID = uuid.NewString()
	}

	e := newMatchEntry()
	e.sem <- struct{}{}
	if _, loaded := s.matches.LoadOrStore(setup.ID, e); loaded {
		return domainmatches.MatchState{}, fmt.Errorf("%w: %s", ErrMatchExists, setup.ID)
	}
	defer e.release()

	m, err := scoring.NewMatch(setup, s.now())
	if err == nil {
		err = s.commit(ctx, e, m)
	}
	if err != nil {
		s.matches.Delete(setup.ID)
		return domainmatches.MatchState{}, err
	}

	logging.Info(logging.FromContext(ctx, s.logger), "match created",
		logging.FieldMatchID, setup.ID,
		"format", m.State().Format,
	)
	return m.State(), nil
}

// StartInnings opens innings 1 or 2.
func (s *Service) StartInnings(ctx context.Context, matchID string, start domainmatches.InningsStart) (domainmatches.MatchState, error) {
	m, err := s.mutate(ctx, matchID, func(m *scoring.Match) (*scoring.Match, error) {
		return m.StartInnings(start, s.now())
	})
	if err != nil {
		return domainmatches.MatchState{}, err
	}
	logging.Info(logging.FromContext(ctx, s.logger), "innings started",
		logging.FieldMatchID, matchID,
		logging.FieldInnings, start.InningsNumber,
	)
	return m.State(), nil
}

// SubmitBallEvent applies the delivery carrying the given sequence number and
// returns the innings state it produced. Resubmitting an accepted delivery
// returns the same state without applying it twice.
func (s *Service) SubmitBallEvent(ctx context.Context, matchID string, sequence int64, ev domainscoring.BallEvent) (scoring.Receipt, error) {
	start := time.Now()
	var receipt scoring.Receipt
	_, err := s.mutate(ctx, matchID, func(m *scoring.Match) (*scoring.Match, error) {
		next, r, err := m.SubmitBall(sequence, ev, s.now())
		receipt = r
		return next, err
	})

	outcome := submissionOutcome(err, receipt.Duplicate)
	s.metrics.RecordSubmission(outcome, time.Since(start))

	logger := logging.FromContext(ctx, s.logger)
	if err != nil {
		logging.Warn(logger, "ball rejected",
			logging.FieldMatchID, matchID,
			logging.FieldSequence, sequence,
			"outcome", outcome,
			"error", err,
		)
		return scoring.Receipt{}, err
	}
	if logger != nil {
		logger.Debug("ball accepted",
			logging.FieldMatchID, matchID,
			logging.FieldSequence, sequence,
			logging.FieldInnings, receipt.Innings.Number,
			"duplicate", receipt.Duplicate,
			"score", fmt.Sprintf("%d/%d", receipt.Innings.TotalRuns, receipt.Innings.TotalWickets),
		)
	}
	return receipt, nil
}

// SubstituteBatter sends the next batter in after a wicket.
func (s *Service) SubstituteBatter(ctx context.Context, matchID, batterID string) (domainmatches.MatchState, error) {
	m, err := s.mutate(ctx, matchID, func(m *scoring.Match) (*scoring.Match, error) {
		return m.SubstituteBatter(batterID, s.now())
	})
	if err != nil {
		return domainmatches.MatchState{}, err
	}
	return m.State(), nil
}

// DeclareInnings closes the innings in progress.
func (s *Service) DeclareInnings(ctx context.Context, matchID string) (domainmatches.MatchState, error) {
	m, err := s.mutate(ctx, matchID, func(m *scoring.Match) (*scoring.Match, error) {
		cur, _ := m.State().CurrentInnings()
		return m.Declare(cur.Number, s.now())
	})
	if err != nil {
		return domainmatches.MatchState{}, err
	}
	logging.Info(logging.FromContext(ctx, s.logger), "innings declared", logging.FieldMatchID, matchID)
	return m.State(), nil
}

// LiveMatchState returns the latest published snapshot without waiting on writers.
func (s *Service) LiveMatchState(matchID string) (domainmatches.MatchState, error) {
	e, ok := s.lookup(matchID)
	if !ok {
		return domainmatches.MatchState{}, ErrMatchNotFound
	}
	state := e.live.Load()
	if state == nil {
		return domainmatches.MatchState{}, ErrMatchNotFound
	}
	return state.Clone(), nil
}

// Matches lists a summary of every published match, ordered by id.
func (s *Service) Matches() []domainmatches.Summary {
	var out []domainmatches.Summary
	s.matches.Range(func(_, value any) bool {
		if state := value.(*matchEntry).live.Load(); state != nil {
			out = append(out, domainmatches.NewSummary(*state))
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Snapshots returns the latest published state of every match.
func (s *Service) Snapshots() []domainmatches.MatchState {
	var out []domainmatches.MatchState
	s.matches.Range(func(_, value any) bool {
		if state := value.(*matchEntry).live.Load(); state != nil {
			out = append(out, *state)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Scorecard derives batting and bowling cards from the match log.
func (s *Service) Scorecard(matchID string) (domainmatches.Scorecard, error) {
	m, err := s.current(matchID)
	if err != nil {
		return domainmatches.Scorecard{}, err
	}
	return m.Scorecard(), nil
}

// Log returns the match's ordered log.
func (s *Service) Log(matchID string) ([]domainmatches.Entry, error) {
	m, err := s.current(matchID)
	if err != nil {
		return nil, err
	}
	return m.Entries(), nil
}

// Subscribe streams every snapshot published for the match from now on.
func (s *Service) Subscribe(matchID string) (*broadcast.Subscription, error) {
	if s.hub == nil {
		return nil, errors.New("live updates are not configured")
	}
	if _, err := s.current(matchID); err != nil {
		return nil, err
	}
	return s.hub.Subscribe(matchID), nil
}

// Restore rebuilds every match by replaying its log from the store.
func (s *Service) Restore(ctx context.Context) (int, error) {
	ids, err := s.store.MatchIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing match logs: %w", err)
	}
	restored := 0
	for _, id := range ids {
		entries, err := s.store.Load(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("loading match %s: %w", id, err)
		}
		if len(entries) == 0 {
			continue
		}
		m, err := scoring.Replay(entries)
		if err != nil {
			return 0, fmt.Errorf("replaying match %s: %w", id, err)
		}
		e := newMatchEntry()
		e.match.Store(m)
		state := m.State()
		e.live.Store(&state)
		s.matches.Store(id, e)
		restored++
	}
	logging.Info(s.logger, "matches restored", logging.FieldCount, restored)
	return restored, nil
}

func (s *Service) lookup(matchID string) (*matchEntry, bool) {
	v, ok := s.matches.Load(matchID)
	if !ok {
		return nil, false
	}
	return v.(*matchEntry), true
}

func (s *Service) current(matchID string) (*scoring.Match, error) {
	e, ok := s.lookup(matchID)
	if !ok {
		return nil, ErrMatchNotFound
	}
	m := e.match.Load()
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

// mutate runs fn under the match's writer slot and commits the result when it
// produced a new match value.
func (s *Service) mutate(ctx context.Context, matchID string, fn func(*scoring.Match) (*scoring.Match, error)) (*scoring.Match, error) {
	e, ok := s.lookup(matchID)
	if !ok {
		return nil, ErrMatchNotFound
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	err := e.acquire(lockCtx)
	cancel()
	if err != nil {
		return nil, err
	}
	defer e.release()

	cur := e.match.Load()
	if cur == nil {
		return nil, ErrMatchNotFound
	}
	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	if next == cur {
		return cur, nil
	}
	if err := s.commit(ctx, e, next); err != nil {
		return nil, err
	}
	return next, nil
}

// commit persists the newest log entry and only then publishes the snapshot.
// Callers must hold the entry's writer slot.
func (s *Service) commit(ctx context.Context, e *matchEntry, next *scoring.Match) error {
	if err := s.store.Append(ctx, next.LastEntry()); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	e.match.Store(next)
	state := next.State()
	e.live.Store(&state)
	s.metrics.RecordSnapshotPublished()
	for _, p := range s.publishers {
		p.Publish(state)
	}
	return nil
}

func submissionOutcome(err error, duplicate bool) string {
	var (
		validation *scoring.ValidationError
		conflict   *scoring.SequenceConflictError
		closed     *scoring.InningsClosedError
		completed  *scoring.MatchCompletedError
		awaiting   *scoring.AwaitingNextBatterError
	)
	switch {
	case err == nil && duplicate:
		return metrics.OutcomeDuplicate
	case err == nil:
		return metrics.OutcomeAccepted
	case errors.As(err, &conflict):
		return metrics.OutcomeConflict
	case errors.As(err, &closed), errors.As(err, &completed):
		return metrics.OutcomeClosed
	case errors.As(err, &validation), errors.As(err, &awaiting):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeUnavailable
	}
}
