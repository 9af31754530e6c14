package snapshots

import (
	"fmt"
	"path/filepath"
)

const matchesDir = "matches"

// MatchSnapshotPath builds the path to a match checkpoint.
func MatchSnapshotPath(basePath, matchID string) string {
	return filepath.Join(basePath, matchesDir, fmt.Sprintf("%s.json", matchID))
}

// ManifestPath builds the path to the checkpoint manifest.
func ManifestPath(basePath string) string {
	return filepath.Join(basePath, "manifest.json")
}
