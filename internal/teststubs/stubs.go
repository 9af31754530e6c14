package teststubs

import (
	"errors"
	"sync"
	"sync/atomic"

	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
)

// StubSource is a test double for checkpoint.Source.
type StubSource struct {
	mu     sync.Mutex
	States []domainmatches.MatchState
	Calls  atomic.Int32
	Notify chan struct{}
}

// Snapshots returns the configured states while tracking calls.
func (s *StubSource) Snapshots() []domainmatches.MatchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	s.Calls.Add(1)
	return append([]domainmatches.MatchState(nil), s.States...)
}

// Set replaces the configured states.
func (s *StubSource) Set(states ...domainmatches.MatchState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.States = states
}

// StubSnapshotStore is a test double for snapshots.Store.
type StubSnapshotStore struct {
	Matches map[string]domainmatches.MatchState
	LoadErr error
}

// LoadMatch returns the checkpoint for the id if present.
func (s *StubSnapshotStore) LoadMatch(matchID string) (domainmatches.MatchState, error) {
	if s.LoadErr != nil {
		return domainmatches.MatchState{}, s.LoadErr
	}
	state, ok := s.Matches[matchID]
	if !ok {
		return domainmatches.MatchState{}, errors.New("snapshot not found")
	}
	return state, nil
}

// StubSnapshotWriter is a test double for checkpoint.SnapshotWriter.
type StubSnapshotWriter struct {
	mu      sync.Mutex
	Written map[string]domainmatches.MatchState
	Writes  int
	Err     error
}

// WriteMatchSnapshot records the checkpoint for verification in tests.
func (w *StubSnapshotWriter) WriteMatchSnapshot(state domainmatches.MatchState) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	if w.Written == nil {
		w.Written = make(map[string]domainmatches.MatchState)
	}
	w.Written[state.ID] = state
	w.Writes++
	return nil
}

// Count returns the number of successful writes.
func (w *StubSnapshotWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Writes
}

// SetErr changes the error returned by subsequent writes.
func (w *StubSnapshotWriter) SetErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Err = err
}

// Get returns the last checkpoint written for the id.
func (w *StubSnapshotWriter) Get(matchID string) (domainmatches.MatchState, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	state, ok := w.Written[matchID]
	return state, ok
}
