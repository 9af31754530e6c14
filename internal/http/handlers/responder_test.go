package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/preston-bernstein/cricket-scoring-service/internal/app/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/scoring"
	"github.com/preston-bernstein/cricket-scoring-service/internal/testutil"
)

func TestWriteErrorIncludesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	logger, _ := testutil.NewBufferLogger()

	req.Header.Set("X-Request-ID", "abc123")

	rr := testutil.ServeRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusTeapot, "boom", logger)
	}), req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status 418, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected content type json, got %s", got)
	}
	body := rr.Body.String()
	if !bytes.Contains([]byte(body), []byte("abc123")) {
		t.Fatalf("expected requestId in body, got %s", body)
	}
}

func TestWriteJSONLogsEncodeError(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	rr := testutil.Serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, make(chan int), logger)
	}), http.MethodGet, "/encode-error", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status written even on encode error, got %d", rr.Code)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected logger to record encode error")
	}
}

func TestWriteErrorFallsBackToHeaderRequestID(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "header-id")
	writeError(rr, req, http.StatusTeapot, "boom", logger)
	if !bytes.Contains(rr.Body.Bytes(), []byte("header-id")) {
		t.Fatalf("expected header request id used when context missing")
	}
}

func TestErrorResponseMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{"not found", matches.ErrMatchNotFound, http.StatusNotFound, ""},
		{"exists", matches.ErrMatchExists, http.StatusConflict, ""},
		{"unavailable", fmt.Errorf("%w: %w", matches.ErrUnavailable, context.DeadlineExceeded), http.StatusServiceUnavailable, ""},
		{"sequence", &scoring.SequenceConflictError{MatchID: "m1", Expected: 4, Got: 6}, http.StatusConflict, ""},
		{"innings closed", &scoring.InningsClosedError{InningsNumber: 1}, http.StatusGone, ""},
		{"completed", &scoring.MatchCompletedError{MatchID: "m1"}, http.StatusGone, ""},
		{"awaiting batter", &scoring.AwaitingNextBatterError{InningsNumber: 1}, http.StatusPreconditionRequired, ""},
		{"awaiting bowler", &scoring.AwaitingBowlerError{InningsNumber: 1, OverNumber: 2}, http.StatusUnprocessableEntity, "bowlerId"},
		{"validation", &scoring.ValidationError{Field: "runsOffBat", Reason: "negative"}, http.StatusUnprocessableEntity, "runsOffBat"},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := errorResponse(tc.err)
			if status != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, status)
			}
			if tc.field != "" && body["field"] != tc.field {
				t.Fatalf("expected field %q, got %v", tc.field, body["field"])
			}
		})
	}

	_, body := errorResponse(&scoring.SequenceConflictError{Expected: 4})
	if body["expectedSequence"] != int64(4) {
		t.Fatalf("expected expectedSequence in body, got %v", body)
	}
	_, body = errorResponse(errors.New("secret detail"))
	if body["error"] != "internal error" {
		t.Fatalf("expected internal errors to be masked, got %v", body)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"batterId":"s3","extra":1}`))
	var sub struct {
		BatterID string `json:"batterId"`
	}
	if err := decodeJSON(rr, req, &sub); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}
