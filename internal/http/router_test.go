package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/preston-bernstein/cricket-scoring-service/internal/http/handlers"
	"github.com/preston-bernstein/cricket-scoring-service/internal/metrics"
	"github.com/preston-bernstein/cricket-scoring-service/internal/testutil"
)

func newTestRouter(t *testing.T, cfg RouterConfig) nethttp.Handler {
	t.Helper()
	svc := testutil.NewMatchService()
	testutil.NewStartedMatch(t, svc, "m1")
	logger, _ := testutil.NewBufferLogger()
	cfg.Logger = logger
	return NewRouter(handlers.NewHandler(svc, nil, logger, nil), cfg)
}

func TestRouterRoutes(t *testing.T) {
	rec := metrics.NewRecorder()
	router := newTestRouter(t, RouterConfig{Metrics: rec})

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{nethttp.MethodGet, "/health", nethttp.StatusOK},
		{nethttp.MethodGet, "/ready", nethttp.StatusOK},
		{nethttp.MethodGet, "/api/matches", nethttp.StatusOK},
		{nethttp.MethodGet, "/api/matches/m1/live-score", nethttp.StatusOK},
		{nethttp.MethodGet, "/api/matches/m1/scorecard", nethttp.StatusOK},
		{nethttp.MethodGet, "/api/matches/m1/log", nethttp.StatusOK},
		{nethttp.MethodPost, "/api/matches/m1/declare", nethttp.StatusOK},
		{nethttp.MethodGet, "/api/matches/m1/declare", nethttp.StatusMethodNotAllowed},
		{nethttp.MethodGet, "/api/matches/m1/live", nethttp.StatusNotFound},
		{nethttp.MethodPost, "/admin/checkpoint", nethttp.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := testutil.Serve(router, tc.method, tc.path, nil)
			testutil.AssertStatus(t, rr, tc.want)
		})
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter(t, RouterConfig{})
	req := httptest.NewRequest(nethttp.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rr := testutil.ServeRequest(router, req)
	if got := rr.Header().Get("X-Request-ID"); got != "trace-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}

func TestRouterRecoversPanics(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	var nilHandler *handlers.Handler
	router := NewRouter(nilHandler, RouterConfig{Logger: logger})
	rr := testutil.Serve(router, nethttp.MethodGet, "/api/matches", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusInternalServerError)
}

func TestRouterCORS(t *testing.T) {
	router := newTestRouter(t, RouterConfig{CORSOrigins: []string{"https://scores.example"}})
	req := httptest.NewRequest(nethttp.MethodOptions, "/api/matches", nil)
	req.Header.Set("Origin", "https://scores.example")
	req.Header.Set("Access-Control-Request-Method", nethttp.MethodPost)
	rr := testutil.ServeRequest(router, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://scores.example" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), nethttp.MethodPost) {
		t.Fatalf("expected POST to be allowed, got %q", rr.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestRouterMountsLiveAndAdmin(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	svc := testutil.NewMatchService()
	testutil.NewStartedMatch(t, svc, "m1")
	router := NewRouter(handlers.NewHandler(svc, nil, logger, nil), RouterConfig{
		Logger: logger,
		Live:   handlers.NewLiveHandler(svc, logger, nil),
		Admin:  handlers.NewAdminHandler(&testutil.StubCheckpointer{}, "secret", logger),
	})

	rr := testutil.Serve(router, nethttp.MethodPost, "/admin/checkpoint", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusUnauthorized)

	// without upgrade headers the websocket handshake is refused
	rr = testutil.Serve(router, nethttp.MethodGet, "/api/matches/m1/live", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusBadRequest)
}
