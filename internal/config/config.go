package config

import "strings"

// Config holds runtime configuration for the server.
type Config struct {
	Port               string
	CORSOrigins        []string
	SubmitTimeout      Duration
	CheckpointInterval Duration
	Log                LogConfig
	EventLog           EventLogConfig
	Redis              RedisConfig
	Snapshots          SnapshotConfig
	Metrics            MetricsConfig
}

// LogConfig selects the slog handler and level.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads an optional YAML file named by CONFIG_FILE, then applies
// environment variables on top, falling back to defaults.
func Load() (Config, error) {
	file, err := loadFile(envOrDefault(envConfigFile, ""))
	if err != nil {
		return Config{}, err
	}

	return Config{
		Port:               envOrDefault(envPort, orString(file.Port, defaultPort)),
		CORSOrigins:        splitList(envOrDefault(envCORSOrigins, strings.Join(file.CORSOrigins, ","))),
		SubmitTimeout:      durationEnvOrDefault(envSubmitTimeout, orDuration(file.SubmitTimeout, defaultSubmitTimeout)),
		CheckpointInterval: durationEnvOrDefault(envCheckpointInterval, orDuration(file.CheckpointInterval, defaultCheckpointInterval)),
		Log: LogConfig{
			Level:  envOrDefault(envLogLevel, orString(file.Log.Level, defaultLogLevel)),
			Format: envOrDefault(envLogFormat, orString(file.Log.Format, defaultLogFormat)),
		},
		EventLog:  loadEventLog(file.EventLog),
		Redis:     loadRedis(file.Redis),
		Snapshots: loadSnapshots(file.Snapshots),
		Metrics:   loadMetrics(file.Metrics),
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func orString(val, fallback string) string {
	if val != "" {
		return val
	}
	return fallback
}

func orDuration(val, fallback Duration) Duration {
	if val > 0 {
		return val
	}
	return fallback
}

func orInt(val, fallback int) int {
	if val > 0 {
		return val
	}
	return fallback
}

func orBool(val *bool, fallback bool) bool {
	if val != nil {
		return *val
	}
	return fallback
}
