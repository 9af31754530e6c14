package snapshots

import (
	"encoding/json"
	"os"
	"time"

	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
)

// Manifest tracks which matches have a checkpoint on disk.
type Manifest struct {
	Version     int         `json:"version"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Retention   Retention   `json:"retention"`
	Matches     MatchesMeta `json:"matches"`
}

type Retention struct {
	CompletedDays int `json:"completedDays"`
}

type MatchesMeta struct {
	Entries       map[string]MatchMeta `json:"entries"`
	LastRefreshed time.Time            `json:"lastRefreshed"`
}

// MatchMeta describes one checkpoint. Date is the day the match last changed.
type MatchMeta struct {
	Status  domainmatches.Status `json:"status"`
	Version int64                `json:"version"`
	Date    string               `json:"date"`
}

func defaultManifest(retentionDays int) Manifest {
	return Manifest{
		Version:     1,
		GeneratedAt: time.Now().UTC(),
		Retention: Retention{
			CompletedDays: retentionDays,
		},
		Matches: MatchesMeta{
			Entries: map[string]MatchMeta{},
		},
	}
}

func readManifest(path string, retentionDays int) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return defaultManifest(retentionDays), err
	}
	defer f.Close()
	var m Manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return defaultManifest(retentionDays), err
	}
	if m.Matches.Entries == nil {
		m.Matches.Entries = map[string]MatchMeta{}
	}
	return m, nil
}

func writeManifest(basePath string, m Manifest) error {
	m.GeneratedAt = time.Now().UTC()
	path := ManifestPath(basePath)
	tmp := path + ".tmp"
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
