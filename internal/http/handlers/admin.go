package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/cricket-scoring-service/internal/http/requestutil"
	"github.com/preston-bernstein/cricket-scoring-service/internal/logging"
)

// Checkpointer writes match checkpoints on demand.
type Checkpointer interface {
	RunOnce() error
}

// AdminHandler exposes admin-only endpoints.
type AdminHandler struct {
	checkpointer Checkpointer
	token        string
	logger       *slog.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(checkpointer Checkpointer, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		checkpointer: checkpointer,
		token:        token,
		logger:       logger,
	}
}

// Checkpoint writes every changed match to disk immediately.
// Guarded by ADMIN_TOKEN; returns 401 if missing or invalid.
func (h *AdminHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	if !h.authorize(r) {
		logging.Warn(logger, "admin unauthorized",
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", logger)
		return
	}
	if h.checkpointer == nil {
		writeError(w, r, http.StatusServiceUnavailable, "checkpoints not configured", logger)
		return
	}
	if err := h.checkpointer.RunOnce(); err != nil {
		logging.Error(logger, "admin checkpoint failed", err)
		writeError(w, r, http.StatusInternalServerError, "failed to write checkpoint", logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	logging.Info(logger, "admin checkpoint written")
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	want := []byte("Bearer " + h.token)
	return subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), want) == 1
}
