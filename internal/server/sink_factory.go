package server

import (
	"log/slog"

	"github.com/preston-bernstein/cricket-scoring-service/internal/broadcast"
	"github.com/preston-bernstein/cricket-scoring-service/internal/config"
)

type sinkComponents struct {
	sinks  []broadcast.Sink
	closer func() error
}

// buildSinks returns the external live-state sinks. Redis is optional: when
// it is not configured or its URL is invalid the service runs without it.
func buildSinks(cfg config.RedisConfig, logger *slog.Logger) sinkComponents {
	if cfg.URL == "" {
		return sinkComponents{}
	}
	client, err := broadcast.NewRedisClient(cfg.URL)
	if err != nil {
		if logger != nil {
			logger.Warn("redis sink disabled", "error", err)
		}
		return sinkComponents{}
	}
	if logger != nil {
		logger.Info("redis sink enabled", slog.String("stream", cfg.Stream))
	}
	return sinkComponents{
		sinks:  []broadcast.Sink{broadcast.NewRedisSink(client, cfg.Stream, cfg.LiveTTL)},
		closer: client.Close,
	}
}
