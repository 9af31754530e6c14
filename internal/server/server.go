package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/cricket-scoring-service/internal/app/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/broadcast"
	"github.com/preston-bernstein/cricket-scoring-service/internal/checkpoint"
	"github.com/preston-bernstein/cricket-scoring-service/internal/config"
	httpserver "github.com/preston-bernstein/cricket-scoring-service/internal/http"
	"github.com/preston-bernstein/cricket-scoring-service/internal/http/handlers"
	"github.com/preston-bernstein/cricket-scoring-service/internal/logging"
	"github.com/preston-bernstein/cricket-scoring-service/internal/metrics"
	"github.com/preston-bernstein/cricket-scoring-service/internal/store"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	eventLog      store.Store
	service       *matches.Service
	hub           *broadcast.Hub
	fanout        *broadcast.Fanout
	httpServer    httpServer
	metricsServer httpServer
	checkpointer  Checkpointer
	metricsStop   func(context.Context) error
	closers       []func() error
}

// New wires the event log, match service, live fan-out, checkpoints and HTTP
// server, then restores every match from the log.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithMetrics(ctx, cfg, logger, nil)
}

func newServerWithMetrics(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	eventLog, err := newStoreFactory(logger, recorder).build(ctx, cfg.EventLog)
	if err != nil {
		return nil, fmt.Errorf("event log: %w", err)
	}

	sinks := buildSinks(cfg.Redis, logger)
	hub := broadcast.NewHub(logger, recorder)
	fanout := broadcast.NewFanout(logger, recorder, sinks.sinks...)

	svc := matches.NewService(eventLog, matches.Options{
		Logger:      logger,
		Metrics:     recorder,
		Hub:         hub,
		Publishers:  []matches.Publisher{fanout},
		LockTimeout: cfg.SubmitTimeout,
	})
	if _, err := svc.Restore(ctx); err != nil {
		_ = eventLog.Close()
		return nil, fmt.Errorf("restore: %w", err)
	}

	snaps := buildSnapshots(cfg.Snapshots)
	var ckpt Checkpointer
	if snaps.writer != nil {
		ckpt = checkpoint.New(svc, snaps.writer, logger, recorder, cfg.CheckpointInterval)
	}

	s := &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		eventLog:      eventLog,
		service:       svc,
		hub:           hub,
		fanout:        fanout,
		metricsServer: metricsSrv,
		checkpointer:  ckpt,
		metricsStop:   metricsShutdown,
	}
	if sinks.closer != nil {
		s.closers = append(s.closers, sinks.closer)
	}
	s.httpServer = newNetHTTPServer(":"+cfg.Port, s.buildRouter(snaps))
	return s, nil
}

func (s *Server) buildRouter(snaps snapshotComponents) http.Handler {
	var statusFn func() checkpoint.Status
	var admin *handlers.AdminHandler
	if s.checkpointer != nil {
		statusFn = s.checkpointer.Status
		if s.cfg.Snapshots.AdminToken != "" {
			admin = handlers.NewAdminHandler(s.checkpointer, s.cfg.Snapshots.AdminToken, s.logger)
		}
	}
	h := handlers.NewHandler(s.service, snaps.store, s.logger, statusFn)
	return httpserver.NewRouter(h, httpserver.RouterConfig{
		Logger:      s.logger,
		Metrics:     s.metrics,
		CORSOrigins: s.cfg.CORSOrigins,
		Live:        handlers.NewLiveHandler(s.service, s.logger, s.cfg.CORSOrigins),
		Admin:       admin,
	})
}

// Run starts background work and the HTTP server, then waits for context
// cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.fanout.Start(ctx)
	if s.checkpointer != nil {
		s.checkpointer.Start(ctx)
	}
	s.startServer(stop)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

// gracefulShutdown stops accepting writes first, then flushes checkpoints and
// the live fan-out before closing the log.
func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.checkpointer != nil {
		if err := s.checkpointer.Stop(shutdownCtx); err != nil {
			logging.Error(s.logger, "failed to stop checkpointer", err)
		}
	}

	if s.fanout != nil {
		s.fanout.Stop()
	}
	if s.hub != nil {
		s.hub.Close()
	}

	if s.eventLog != nil {
		if err := s.eventLog.Close(); err != nil {
			logging.Warn(s.logger, "event log close failed", "error", err)
		}
	}
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			logging.Warn(s.logger, "sink close failed", "error", err)
		}
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = newNetHTTPServer(":"+recCfg.Port, handler)
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
