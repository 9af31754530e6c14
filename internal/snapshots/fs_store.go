package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
)

// Store defines how checkpoints are loaded.
type Store interface {
	LoadMatch(matchID string) (domainmatches.MatchState, error)
}

// FSStore loads checkpoints from the filesystem.
type FSStore struct {
	basePath string
}

// NewFSStore constructs an FS-backed checkpoint store rooted at basePath.
func NewFSStore(basePath string) *FSStore {
	return &FSStore{basePath: basePath}
}

// LoadMatch reads {basePath}/matches/{id}.json.
func (s *FSStore) LoadMatch(matchID string) (domainmatches.MatchState, error) {
	if s == nil {
		return domainmatches.MatchState{}, errors.New("snapshot store not configured")
	}
	if !domainmatches.ValidID(matchID) {
		return domainmatches.MatchState{}, fmt.Errorf("invalid match id %q", matchID)
	}
	var state domainmatches.MatchState
	if err := decodeFile(MatchSnapshotPath(s.basePath, matchID), &state); err != nil {
		return domainmatches.MatchState{}, err
	}
	return state, nil
}

// MatchIDs lists the matches recorded in the manifest.
func (s *FSStore) MatchIDs() ([]string, error) {
	if s == nil {
		return nil, errors.New("snapshot store not configured")
	}
	m, err := readManifest(ManifestPath(s.basePath), 0)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	ids := make([]string, 0, len(m.Matches.Entries))
	for id := range m.Matches.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func decodeFile(path string, payload any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(payload)
}
