package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/preston-bernstein/cricket-scoring-service/internal/config"
	"github.com/preston-bernstein/cricket-scoring-service/internal/metrics"
	"github.com/preston-bernstein/cricket-scoring-service/internal/store"
)

// storeFactory assembles the match log store with shared instrumentation.
type storeFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newStoreFactory(logger *slog.Logger, metrics *metrics.Recorder) storeFactory {
	return storeFactory{logger: logger, metrics: metrics}
}

func (f storeFactory) build(ctx context.Context, cfg config.EventLogConfig) (store.Store, error) {
	base, err := selectStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return store.NewInstrumentedStore(base, f.logger, f.metrics), nil
}

func selectStore(ctx context.Context, cfg config.EventLogConfig) (store.Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "memory", "":
		return store.NewMemoryStore(), nil
	case "fs":
		return store.NewFSStore(cfg.Path)
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres event log requires POSTGRES_DSN")
		}
		return store.NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown event log backend %q", cfg.Backend)
	}
}
