package testutil

import (
	"testing"
	"time"

	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/snapshots"
)

// NewTempWriter returns a checkpoint writer rooted in a temp dir.
func NewTempWriter(t *testing.T, retention int) *snapshots.Writer {
	t.Helper()
	return snapshots.NewWriter(t.TempDir(), retention)
}

// WriteCheckpoint writes a live checkpoint for the sample match.
func WriteCheckpoint(t *testing.T, w *snapshots.Writer, id string) domainmatches.MatchState {
	t.Helper()
	state := domainmatches.MatchState{
		Setup:     SampleSetup(id),
		Status:    domainmatches.StatusLive,
		Version:   2,
		UpdatedAt: time.Now().UTC(),
	}
	if err := w.WriteMatchSnapshot(state); err != nil {
		t.Fatalf("failed to write checkpoint %s: %v", id, err)
	}
	return state
}

// CheckpointPath returns the expected file path for a match checkpoint.
func CheckpointPath(w *snapshots.Writer, id string) string {
	return snapshots.MatchSnapshotPath(w.BasePath(), id)
}
