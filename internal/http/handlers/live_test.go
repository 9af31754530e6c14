package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/preston-bernstein/cricket-scoring-service/internal/app/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/broadcast"
	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/store"
	"github.com/preston-bernstein/cricket-scoring-service/internal/testutil"
)

func newLiveServer(t *testing.T, svc *matches.Service, origins []string) *httptest.Server {
	t.Helper()
	logger, _ := testutil.NewBufferLogger()
	live := NewLiveHandler(svc, logger, origins)
	r := chi.NewRouter()
	r.Get("/api/matches/{matchID}/live", live.Stream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	return websocket.DefaultDialer.Dial(url, header)
}

func readState(t *testing.T, conn *websocket.Conn) domainmatches.MatchState {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var state domainmatches.MatchState
	if err := conn.ReadJSON(&state); err != nil {
		t.Fatalf("read state: %v", err)
	}
	return state
}

func TestLiveStreamSendsCurrentThenUpdates(t *testing.T) {
	svc := testutil.NewMatchService()
	testutil.NewStartedMatch(t, svc, "m1")
	srv := newLiveServer(t, svc, nil)

	conn, _, err := dial(t, srv, "/api/matches/m1/live", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readState(t, conn)
	if first.ID != "m1" || first.Phase != domainmatches.PhaseInProgress {
		t.Fatalf("unexpected initial state %+v", first)
	}

	if _, err := svc.SubmitBallEvent(context.Background(), "m1", 1, testutil.DotBall("m1", 1)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	next := readState(t, conn)
	if next.Version <= first.Version || next.LastSequence != 1 {
		t.Fatalf("expected a newer snapshot, got version %d seq %d", next.Version, next.LastSequence)
	}
}

func TestLiveStreamUnknownMatch(t *testing.T) {
	srv := newLiveServer(t, testutil.NewMatchService(), nil)
	_, resp, err := dial(t, srv, "/api/matches/nope/live", nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %+v", resp)
	}
}

func TestLiveStreamRejectsForeignOrigin(t *testing.T) {
	svc := testutil.NewMatchService()
	testutil.NewStartedMatch(t, svc, "m1")
	srv := newLiveServer(t, svc, []string{"https://scores.example"})

	header := http.Header{"Origin": []string{"https://evil.example"}}
	if _, resp, err := dial(t, srv, "/api/matches/m1/live", header); err == nil || resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden origin, got %v", err)
	}

	header.Set("Origin", "https://scores.example")
	conn, _, err := dial(t, srv, "/api/matches/m1/live", header)
	if err != nil {
		t.Fatalf("expected allowed origin to connect: %v", err)
	}
	conn.Close()
}

func TestLiveStreamClosesWhenHubCloses(t *testing.T) {
	hub := broadcast.NewHub(nil, nil)
	svc := matches.NewService(store.NewMemoryStore(), matches.Options{Hub: hub})
	testutil.NewStartedMatch(t, svc, "m1")
	srv := newLiveServer(t, svc, nil)

	conn, _, err := dial(t, srv, "/api/matches/m1/live", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readState(t, conn)

	hub.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected going-away close, got %v", err)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"*"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://anything.example")
	if !check(req) {
		t.Fatalf("expected wildcard to allow any origin")
	}
	req.Header.Del("Origin")
	if !originChecker([]string{"https://a.example"})(req) {
		t.Fatalf("expected requests without origin to pass")
	}
}
