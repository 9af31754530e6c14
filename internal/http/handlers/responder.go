package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/cricket-scoring-service/internal/app/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/http/middleware"
	"github.com/preston-bernstein/cricket-scoring-service/internal/logging"
	"github.com/preston-bernstein/cricket-scoring-service/internal/scoring"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	writeErrorBody(w, r, status, map[string]any{"error": message}, logger)
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, status int, body map[string]any, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
	}
	if reqID != "" {
		body["requestId"] = reqID
	}
	writeJSON(w, status, body, logger)
}

// writeDomainError maps service and scoring errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logging.Error(logger, "request failed", err)
	}
	writeErrorBody(w, r, status, body, logger)
}

func errorResponse(err error) (int, map[string]any) {
	var (
		validation *scoring.ValidationError
		conflict   *scoring.SequenceConflictError
		closed     *scoring.InningsClosedError
		completed  *scoring.MatchCompletedError
		awaiting   *scoring.AwaitingNextBatterError
		bowler     *scoring.AwaitingBowlerError
	)
	body := map[string]any{"error": err.Error()}
	switch {
	case errors.Is(err, matches.ErrMatchNotFound):
		return http.StatusNotFound, body
	case errors.Is(err, matches.ErrMatchExists):
		return http.StatusConflict, body
	case errors.Is(err, matches.ErrUnavailable):
		return http.StatusServiceUnavailable, body
	case errors.As(err, &conflict):
		body["expectedSequence"] = conflict.Expected
		return http.StatusConflict, body
	case errors.As(err, &closed), errors.As(err, &completed):
		return http.StatusGone, body
	case errors.As(err, &awaiting):
		return http.StatusPreconditionRequired, body
	case errors.As(err, &bowler):
		body["field"] = "bowlerId"
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &validation):
		body["field"] = validation.Field
		return http.StatusUnprocessableEntity, body
	default:
		return http.StatusInternalServerError, map[string]any{"error": "internal error"}
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
