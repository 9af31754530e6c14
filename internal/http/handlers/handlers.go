package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/cricket-scoring-service/internal/app/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/checkpoint"
	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/logging"
	"github.com/preston-bernstein/cricket-scoring-service/internal/snapshots"
)

// SnapshotSourceHeader marks responses served from an on-disk checkpoint.
const SnapshotSourceHeader = "X-Snapshot-Source"

// Handler wires HTTP routes to the match service.
type Handler struct {
	svc      *matches.Service
	snaps    snapshots.Store
	logger   *slog.Logger
	statusFn func() checkpoint.Status
}

// NewHandler constructs a Handler.
func NewHandler(svc *matches.Service, snaps snapshots.Store, logger *slog.Logger, statusFn func() checkpoint.Status) *Handler {
	return &Handler{
		svc:      svc,
		snaps:    snaps,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic. With checkpoints enabled it follows
// the checkpoint loop's health.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// ListMatches returns a summary of every match.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	list := h.svc.Matches()
	if list == nil {
		list = []domainmatches.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": list}, h.logger)
}

// CreateMatch registers a new match from its setup.
func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	var setup domainmatches.Setup
	if err := decodeJSON(w, r, &setup); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
		return
	}
	state, err := h.svc.CreateMatch(r.Context(), setup)
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	w.Header().Set("Location", "/api/matches/"+state.ID)
	writeJSON(w, http.StatusCreated, state, logger)
}

// StartInnings opens an innings with its opening pair and bowler.
func (h *Handler) StartInnings(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	var start domainmatches.InningsStart
	if err := decodeJSON(w, r, &start); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
		return
	}
	state, err := h.svc.StartInnings(r.Context(), matchID(r), start)
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, state, logger)
}

// SubmitBall applies one delivery. Resubmitting an accepted delivery under
// the same sequence is answered with the original result.
func (h *Handler) SubmitBall(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	var entry domainmatches.BallEntry
	if err := decodeJSON(w, r, &entry); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
		return
	}
	receipt, err := h.svc.SubmitBallEvent(r.Context(), matchID(r), entry.Sequence, entry.Event)
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, receipt, logger)
}

// SubstituteBatter sends in the next batter after a wicket.
func (h *Handler) SubstituteBatter(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	var sub domainmatches.Substitution
	if err := decodeJSON(w, r, &sub); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
		return
	}
	state, err := h.svc.SubstituteBatter(r.Context(), matchID(r), sub.BatterID)
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, state, logger)
}

// DeclareInnings closes the innings in progress.
func (h *Handler) DeclareInnings(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	state, err := h.svc.DeclareInnings(r.Context(), matchID(r))
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, state, logger)
}

// LiveScore returns the latest published state. Unknown matches fall back to
// the last checkpoint on disk when one exists.
func (h *Handler) LiveScore(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	id := matchID(r)
	state, err := h.svc.LiveMatchState(id)
	if errors.Is(err, matches.ErrMatchNotFound) && h.snaps != nil {
		if snap, snapErr := h.snaps.LoadMatch(id); snapErr == nil {
			logging.Info(logger, "served checkpoint", logging.FieldMatchID, id)
			w.Header().Set(SnapshotSourceHeader, "checkpoint")
			writeJSON(w, http.StatusOK, snap, logger)
			return
		}
	}
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, state, logger)
}

// Scorecard returns batting and bowling cards for every started innings.
func (h *Handler) Scorecard(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	card, err := h.svc.Scorecard(matchID(r))
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, card, logger)
}

// Log returns the match's ordered log.
func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	entries, err := h.svc.Log(matchID(r))
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries}, logger)
}

func matchID(r *http.Request) string {
	return chi.URLParam(r, "matchID")
}
