package testutil

import (
	"context"
	"testing"

	"github.com/preston-bernstein/cricket-scoring-service/internal/app/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/broadcast"
	"github.com/preston-bernstein/cricket-scoring-service/internal/store"
)

// NewMatchService builds a match service over an in-memory log with a live hub.
func NewMatchService() *matches.Service {
	return matches.NewService(store.NewMemoryStore(), matches.Options{
		Hub: broadcast.NewHub(nil, nil),
	})
}

// NewStartedMatch creates the sample match and opens innings 1.
func NewStartedMatch(t *testing.T, svc *matches.Service, id string) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.CreateMatch(ctx, SampleSetup(id)); err != nil {
		t.Fatalf("create match %s: %v", id, err)
	}
	if _, err := svc.StartInnings(ctx, id, OpeningStart()); err != nil {
		t.Fatalf("start innings %s: %v", id, err)
	}
}
