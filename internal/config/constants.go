package config

import "time"

const (
	envConfigFile         = "CONFIG_FILE"
	envPort               = "PORT"
	envCORSOrigins        = "CORS_ALLOWED_ORIGINS"
	envSubmitTimeout      = "SUBMIT_TIMEOUT"
	envCheckpointInterval = "CHECKPOINT_INTERVAL"
	envLogLevel           = "LOG_LEVEL"
	envLogFormat          = "LOG_FORMAT"
	envEventLogBackend    = "EVENTLOG_BACKEND"
	envEventLogPath       = "EVENTLOG_PATH"
	envPostgresDSN        = "POSTGRES_DSN"
	envRedisURL           = "REDIS_URL"
	envRedisStream        = "REDIS_STREAM"
	envRedisLiveTTL       = "REDIS_LIVE_TTL"
	envMetricsPort        = "METRICS_PORT"
	envMetricsOn          = "METRICS_ENABLED"
	envOtelEndpoint       = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService        = "OTEL_SERVICE_NAME"
	envOtelInsecure       = "OTEL_EXPORTER_OTLP_INSECURE"
	envSnapshotsEnabled   = "SNAPSHOTS_ENABLED"
	envSnapshotFolder     = "SNAPSHOT_FOLDER"
	envSnapshotRetention  = "SNAPSHOT_RETENTION_DAYS"
	envAdminToken         = "ADMIN_TOKEN"

	defaultPort = "4000"
	// Long enough to queue behind a slow log append, short enough for a scorer to retry.
	defaultSubmitTimeout      = 2 * Duration(time.Second)
	defaultCheckpointInterval = 30 * Duration(time.Second)
	defaultLogLevel           = "info"
	defaultLogFormat          = "text"
	defaultEventLogBackend    = "memory"
	defaultEventLogPath       = "data/eventlog"
	defaultRedisStream        = "cricket:live"
	defaultRedisLiveTTL       = 6 * Duration(time.Hour)
	defaultMetricsPort        = "9090"
	defaultServiceName        = "cricket-scoring-service"
	defaultSnapshotsEnabled   = true
	defaultSnapshotFolder     = "data/snapshots"
	defaultSnapshotRetention  = 14
)
