package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/preston-bernstein/cricket-scoring-service/internal/http/handlers"
	"github.com/preston-bernstein/cricket-scoring-service/internal/http/middleware"
	"github.com/preston-bernstein/cricket-scoring-service/internal/metrics"
)

// RouterConfig carries the cross-cutting pieces the router wraps every route with.
type RouterConfig struct {
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
	CORSOrigins []string
	Live        *handlers.LiveHandler
	Admin       *handlers.AdminHandler
}

// NewRouter registers HTTP routes on a chi router.
func NewRouter(h *handlers.Handler, cfg RouterConfig) nethttp.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Middleware(cfg.Logger, cfg.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", handlers.SnapshotSourceHeader},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/api/matches", func(r chi.Router) {
		r.Get("/", h.ListMatches)
		r.Post("/", h.CreateMatch)
		r.Route("/{matchID}", func(r chi.Router) {
			r.Post("/innings", h.StartInnings)
			r.Post("/ball-entry", h.SubmitBall)
			r.Post("/substitute", h.SubstituteBatter)
			r.Post("/declare", h.DeclareInnings)
			r.Get("/live-score", h.LiveScore)
			r.Get("/scorecard", h.Scorecard)
			r.Get("/log", h.Log)
			if cfg.Live != nil {
				r.Get("/live", cfg.Live.Stream)
			}
		})
	})

	if cfg.Admin != nil {
		r.Post("/admin/checkpoint", cfg.Admin.Checkpoint)
	}
	return r
}
