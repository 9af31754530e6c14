package config

// SnapshotConfig controls the checkpoint files written for fast reads.
type SnapshotConfig struct {
	Enabled       bool
	Folder        string // base path for snapshots
	RetentionDays int    // completed matches older than this are pruned
	AdminToken    string // enables POST /admin/checkpoint; env only
}

func loadSnapshots(file fileSnapshots) SnapshotConfig {
	return SnapshotConfig{
		Enabled:       boolEnvOrDefault(envSnapshotsEnabled, orBool(file.Enabled, defaultSnapshotsEnabled)),
		Folder:        envOrDefault(envSnapshotFolder, orString(file.Folder, defaultSnapshotFolder)),
		RetentionDays: intEnvOrDefault(envSnapshotRetention, orInt(file.RetentionDays, defaultSnapshotRetention)),
		AdminToken:    envOrDefault(envAdminToken, ""),
	}
}
