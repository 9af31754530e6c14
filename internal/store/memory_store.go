package store

import (
	"context"
	"sort"
	"sync"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
)

// MemoryStore keeps match logs in memory. Logs are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[string][]matches.Entry
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logs: make(map[string][]matches.Entry),
	}
}

func (s *MemoryStore) Name() string { return "memory" }

// Append adds the entry at the end of its match log.
func (s *MemoryStore) Append(ctx context.Context, entry matches.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logs[entry.MatchID]
	if want := int64(len(log)) + 1; entry.Position != want {
		return positionConflict(entry.MatchID, entry.Position, want)
	}
	s.logs[entry.MatchID] = append(log, entry)
	return nil
}

// Load returns a copy of the match log in position order.
func (s *MemoryStore) Load(ctx context.Context, matchID string) ([]matches.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]matches.Entry(nil), s.logs[matchID]...), nil
}

// MatchIDs lists every match with a log, sorted.
func (s *MemoryStore) MatchIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.logs))
	for id := range s.logs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }
