package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	apphttp "github.com/preston-bernstein/cricket-scoring-service/internal/http"
	"github.com/preston-bernstein/cricket-scoring-service/internal/http/handlers"
	"github.com/preston-bernstein/cricket-scoring-service/internal/scoring"
	"github.com/preston-bernstein/cricket-scoring-service/internal/store"
	"github.com/preston-bernstein/cricket-scoring-service/internal/testutil"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func startService(t *testing.T) string {
	t.Helper()
	logger, _ := testutil.NewBufferLogger()
	svc := testutil.NewMatchService()
	testutil.NewStartedMatch(t, svc, "m1")
	srv := httptest.NewServer(apphttp.NewRouter(handlers.NewHandler(svc, nil, logger, nil), apphttp.RouterConfig{Logger: logger}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestReplayFromLogDir(t *testing.T) {
	dir := t.TempDir()
	fs, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	svc := testutil.NewMatchService()
	testutil.NewStartedMatch(t, svc, "m1")
	ball := testutil.DotBall("m1", 1)
	ball.RunsOffBat = 4
	if _, err := svc.SubmitBallEvent(context.Background(), "m1", 1, ball); err != nil {
		t.Fatalf("submit: %v", err)
	}
	entries, _ := svc.Log("m1")
	for _, e := range entries {
		if err := fs.Append(context.Background(), e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	out, err := execute(t, "", "replay", "m1", "--log-dir", dir)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	var state domainmatches.MatchState
	if err := json.Unmarshal([]byte(out), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	in, ok := state.CurrentInnings()
	if !ok || in.TotalRuns != 4 || state.LastSequence != 1 {
		t.Fatalf("unexpected replayed state %+v", state)
	}

	out, err = execute(t, "", "replay", "m1", "--log-dir", dir, "--scorecard")
	if err != nil || !strings.Contains(out, `"battingTeamId": "hawks"`) {
		t.Fatalf("expected scorecard output, got %s / %v", out, err)
	}

	if _, err := execute(t, "", "replay", "missing", "--log-dir", dir); err == nil {
		t.Fatalf("expected replay of an unknown match to fail")
	}
}

func TestSubmitAndState(t *testing.T) {
	url := startService(t)
	ball, _ := json.Marshal(testutil.DotBall("m1", 1))

	out, err := execute(t, string(ball), "--server", url, "submit", "m1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	var receipt scoring.Receipt
	if err := json.Unmarshal([]byte(out), &receipt); err != nil || receipt.Sequence != 1 {
		t.Fatalf("unexpected receipt %s / %v", out, err)
	}

	path := filepath.Join(t.TempDir(), "ball.json")
	if err := os.WriteFile(path, ball, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err = execute(t, "", "--server", url, "submit", "m1", "--sequence", "1", "-f", path)
	if err != nil || !strings.Contains(out, `"duplicate": true`) {
		t.Fatalf("expected duplicate receipt, got %s / %v", out, err)
	}

	out, err = execute(t, "", "--server", url, "state", "m1")
	if err != nil || !strings.Contains(out, `"lastSequence": 1`) {
		t.Fatalf("unexpected state %s / %v", out, err)
	}
	out, err = execute(t, "", "--server", url, "scorecard", "m1")
	if err != nil || !strings.Contains(out, `"matchId": "m1"`) {
		t.Fatalf("unexpected scorecard %s / %v", out, err)
	}
}

func TestSubmitRejectsUnknownFields(t *testing.T) {
	url := startService(t)
	if _, err := execute(t, `{"bogus":1}`, "--server", url, "submit", "m1", "--sequence", "1"); err == nil {
		t.Fatalf("expected malformed ball to be rejected")
	}
}
