package broadcast

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/logging"
	"github.com/preston-bernstein/cricket-scoring-service/internal/metrics"
)

// Subscription receives published snapshots for one match. C holds at most
// one pending snapshot: a slow reader skips intermediate states and always
// sees the latest one next.
type Subscription struct {
	ID      string
	MatchID string
	C       <-chan matches.MatchState

	ch     chan matches.MatchState
	mu     sync.Mutex
	closed bool
	hub    *Hub
}

// Cancel detaches the subscription and closes C. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.hub.remove(s)
}

// offer delivers state without blocking, replacing any undelivered snapshot.
// It reports whether an older snapshot was dropped.
func (s *Subscription) offer(state matches.MatchState) (dropped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- state:
		return false
	default:
	}
	select {
	case <-s.ch:
		dropped = true
	default:
	}
	s.ch <- state
	return dropped
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Hub fans published match snapshots out to subscribers. Publish never blocks
// on a subscriber.
type Hub struct {
	logger  *slog.Logger
	metrics *metrics.Recorder

	mu     sync.RWMutex
	subs   map[string]map[string]*Subscription
	closed bool
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger, recorder *metrics.Recorder) *Hub {
	return &Hub{
		logger:  logger,
		metrics: recorder,
		subs:    make(map[string]map[string]*Subscription),
	}
}

// Subscribe registers interest in a match. If the hub is closed the returned
// subscription's channel is already closed.
func (h *Hub) Subscribe(matchID string) *Subscription {
	ch := make(chan matches.MatchState, 1)
	sub := &Subscription{
		ID:      uuid.NewString(),
		MatchID: matchID,
		C:       ch,
		ch:      ch,
		hub:     h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.close()
		return sub
	}
	byMatch, ok := h.subs[matchID]
	if !ok {
		byMatch = make(map[string]*Subscription)
		h.subs[matchID] = byMatch
	}
	byMatch[sub.ID] = sub

	logging.Info(h.logger, "subscriber attached",
		logging.FieldMatchID, matchID,
		logging.FieldClientID, sub.ID,
		logging.FieldCount, len(byMatch),
	)
	return sub
}

// Publish offers the snapshot to every subscriber of its match.
func (h *Hub) Publish(state matches.MatchState) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs[state.ID] {
		if sub.offer(state) {
			h.metrics.RecordSubscriberDrop()
		}
	}
}

// SubscriberCount returns the number of live subscriptions for a match.
func (h *Hub) SubscriberCount(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[matchID])
}

// Close detaches and closes every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for matchID, byMatch := range h.subs {
		for _, sub := range byMatch {
			sub.close()
		}
		delete(h.subs, matchID)
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	byMatch := h.subs[sub.MatchID]
	if _, ok := byMatch[sub.ID]; ok {
		delete(byMatch, sub.ID)
		if len(byMatch) == 0 {
			delete(h.subs, sub.MatchID)
		}
	}
	h.mu.Unlock()
	sub.close()

	logging.Info(h.logger, "subscriber detached",
		logging.FieldMatchID, sub.MatchID,
		logging.FieldClientID, sub.ID,
	)
}
