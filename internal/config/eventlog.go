package config

// EventLogConfig selects where match logs are persisted.
type EventLogConfig struct {
	Backend string // memory, fs or postgres
	Path    string // directory for the fs backend
	DSN     string // connection string for the postgres backend
}

func loadEventLog(file fileEventLog) EventLogConfig {
	return EventLogConfig{
		Backend: envOrDefault(envEventLogBackend, orString(file.Backend, defaultEventLogBackend)),
		Path:    envOrDefault(envEventLogPath, orString(file.Path, defaultEventLogPath)),
		DSN:     envOrDefault(envPostgresDSN, file.DSN),
	}
}

// RedisConfig controls the optional live-state sink. An empty URL disables it.
type RedisConfig struct {
	URL     string
	Stream  string
	LiveTTL Duration
}

func loadRedis(file fileRedis) RedisConfig {
	return RedisConfig{
		URL:     envOrDefault(envRedisURL, file.URL),
		Stream:  envOrDefault(envRedisStream, orString(file.Stream, defaultRedisStream)),
		LiveTTL: durationEnvOrDefault(envRedisLiveTTL, orDuration(file.LiveTTL, defaultRedisLiveTTL)),
	}
}
