package snapshots

import (
	"os"
	"testing"
	"time"

	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
)

func TestWriterWritesCheckpointAndManifest(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 10)

	writeState(t, w, sampleState("m1", domainmatches.StatusLive, time.Now()))
	requireCheckpointExists(t, w, "m1")

	m, err := readManifest(ManifestPath(dir), 10)
	if err != nil {
		t.Fatalf("expected manifest, got err %v", err)
	}
	meta, ok := m.Matches.Entries["m1"]
	if !ok || meta.Status != domainmatches.StatusLive || meta.Version != 3 {
		t.Fatalf("unexpected manifest entry %+v", meta)
	}
	if m.Matches.LastRefreshed.IsZero() {
		t.Fatalf("expected last refreshed to be set")
	}
}

func TestWriterSkipsIdenticalPayload(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 10)
	state := sampleState("m1", domainmatches.StatusLive, time.Now())
	writeState(t, w, state)

	path := MatchSnapshotPath(dir, "m1")
	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	old := before.ModTime().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	writeState(t, w, state)
	after, _ := os.Stat(path)
	if !after.ModTime().Equal(old) {
		t.Fatalf("expected identical checkpoint not to be rewritten")
	}
}

func TestWriterPrunesOldCompletedMatches(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	w := NewWriter(dir, 2)
	w.now = func() time.Time { return now }

	old := now.AddDate(0, 0, -5)
	writeState(t, w, sampleState("done-old", domainmatches.StatusCompleted, old))
	writeState(t, w, sampleState("live-old", domainmatches.StatusLive, old))
	writeState(t, w, sampleState("done-new", domainmatches.StatusCompleted, now))

	if _, err := os.Stat(MatchSnapshotPath(dir, "done-old")); !os.IsNotExist(err) {
		t.Fatalf("expected old completed checkpoint pruned, got %v", err)
	}
	requireCheckpointExists(t, w, "live-old")
	requireCheckpointExists(t, w, "done-new")

	ids, err := NewFSStore(dir).MatchIDs()
	if err != nil {
		t.Fatalf("match ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "done-new" || ids[1] != "live-old" {
		t.Fatalf("unexpected manifest ids %v", ids)
	}
}

func TestWriterRejectsUnsafeIDs(t *testing.T) {
	w := NewWriter(t.TempDir(), 1)
	if err := w.WriteMatchSnapshot(sampleState("../escape", domainmatches.StatusLive, time.Now())); err == nil {
		t.Fatalf("expected unsafe id to be rejected")
	}
	var nilWriter *Writer
	if err := nilWriter.WriteMatchSnapshot(sampleState("m1", domainmatches.StatusLive, time.Now())); err == nil {
		t.Fatalf("expected nil writer to error")
	}
}
