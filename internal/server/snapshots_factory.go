package server

import (
	"github.com/preston-bernstein/cricket-scoring-service/internal/config"
	"github.com/preston-bernstein/cricket-scoring-service/internal/snapshots"
)

type snapshotComponents struct {
	store  snapshots.Store
	writer *snapshots.Writer
}

func buildSnapshots(cfg config.SnapshotConfig) snapshotComponents {
	if !cfg.Enabled {
		return snapshotComponents{}
	}
	return snapshotComponents{
		store:  snapshots.NewFSStore(cfg.Folder),
		writer: snapshots.NewWriter(cfg.Folder, cfg.RetentionDays),
	}
}
