package snapshots

import (
	"os"
	"testing"
	"time"

	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
)

func sampleState(id string, status domainmatches.Status, updated time.Time) domainmatches.MatchState {
	return domainmatches.MatchState{
		Setup: domainmatches.Setup{
			ID:       id,
			Title:    "Hawks v Owls",
			Format:   domainmatches.FormatT20,
			MaxOvers: 20,
			Team1:    domainmatches.Team{ID: "hawks", Name: "Hawks"},
			Team2:    domainmatches.Team{ID: "owls", Name: "Owls"},
		},
		Status:    status,
		Version:   3,
		UpdatedAt: updated,
	}
}

func writeState(t *testing.T, w *Writer, state domainmatches.MatchState) {
	t.Helper()
	if err := w.WriteMatchSnapshot(state); err != nil {
		t.Fatalf("failed to write checkpoint %s: %v", state.ID, err)
	}
}

func requireCheckpointExists(t *testing.T, w *Writer, id string) {
	t.Helper()
	if _, err := os.Stat(MatchSnapshotPath(w.BasePath(), id)); err != nil {
		t.Fatalf("expected checkpoint for %s to be written: %v", id, err)
	}
}
