package snapshots

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/timeutil"
)

// Writer persists match checkpoints and the manifest, pruning completed
// matches that fall outside the retention window.
type Writer struct {
	basePath      string
	retentionDays int
	now           func() time.Time
}

// NewWriter constructs a writer rooted at basePath.
func NewWriter(basePath string, retentionDays int) *Writer {
	if retentionDays <= 0 {
		retentionDays = 14
	}
	return &Writer{
		basePath:      basePath,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// BasePath exposes the writer root path (primarily for testing).
func (w *Writer) BasePath() string {
	if w == nil {
		return ""
	}
	return w.basePath
}

// WriteMatchSnapshot atomically replaces the checkpoint for the match.
func (w *Writer) WriteMatchSnapshot(state domainmatches.MatchState) error {
	if w == nil {
		return fmt.Errorf("snapshot writer not configured")
	}
	if !domainmatches.ValidID(state.ID) {
		return fmt.Errorf("invalid match id %q", state.ID)
	}

	target := MatchSnapshotPath(w.basePath, state.ID)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		return w.updateManifest(state)
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		return err
	}
	return w.updateManifest(state)
}

func (w *Writer) updateManifest(state domainmatches.MatchState) error {
	m, _ := readManifest(ManifestPath(w.basePath), w.retentionDays)

	date := state.UpdatedAt
	if date.IsZero() {
		date = w.now()
	}
	m.Matches.Entries[state.ID] = MatchMeta{
		Status:  state.Status,
		Version: state.Version,
		Date:    timeutil.FormatDate(date.UTC()),
	}
	w.pruneCompleted(m.Matches.Entries)
	m.Matches.LastRefreshed = w.now().UTC()
	m.Retention.CompletedDays = w.retentionDays

	return writeManifest(w.basePath, m)
}

// pruneCompleted removes checkpoints of completed matches older than the
// retention window. Live and upcoming matches are never pruned.
func (w *Writer) pruneCompleted(entries map[string]MatchMeta) {
	cutoff := timeutil.RetentionCutoff(w.now(), w.retentionDays)
	for id, meta := range entries {
		if meta.Status != domainmatches.StatusCompleted {
			continue
		}
		parsed, err := timeutil.ParseDate(meta.Date)
		if err != nil || !parsed.Before(cutoff) {
			continue
		}
		_ = os.Remove(MatchSnapshotPath(w.basePath, id))
		delete(entries, id)
	}
}
