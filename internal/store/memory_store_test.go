package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
)

func entry(matchID string, position int64) matches.Entry {
	return matches.Entry{
		MatchID:    matchID,
		Position:   position,
		Kind:       matches.EntryInningsDeclared,
		RecordedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Declaration: &matches.Declaration{
			InningsNumber: 1,
		},
	}
}

// exerciseStore runs the shared contract every backend must satisfy.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	for pos := int64(1); pos <= 3; pos++ {
		if err := s.Append(ctx, entry("m1", pos)); err != nil {
			t.Fatalf("append %d: %v", pos, err)
		}
	}
	if err := s.Append(ctx, entry("m2", 1)); err != nil {
		t.Fatalf("append m2: %v", err)
	}

	rival := entry("m1", 3)
	rival.Declaration = &matches.Declaration{InningsNumber: 2}
	if err := s.Append(ctx, rival); !errors.Is(err, ErrPositionConflict) {
		t.Fatalf("expected a different entry at a taken position to conflict, got %v", err)
	}
	if err := s.Append(ctx, entry("m1", 5)); !errors.Is(err, ErrPositionConflict) {
		t.Fatalf("expected gap to conflict, got %v", err)
	}

	got, err := s.Load(ctx, "m1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, e := range got {
		if e.Position != int64(i+1) || e.Declaration == nil || e.Declaration.InningsNumber != 1 {
			t.Fatalf("unexpected entry %d: %+v", i, e)
		}
	}

	empty, err := s.Load(ctx, "unknown")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty log for unknown match, got %v (%v)", empty, err)
	}

	ids, err := s.MatchIDs(ctx)
	if err != nil {
		t.Fatalf("match ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "m1" || ids[1] != "m2" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Append(ctx, entry("copy", 1)); err != nil {
		t.Fatalf("append: %v", err)
	}

	list, _ := s.Load(ctx, "copy")
	list[0].Kind = matches.EntryBall

	again, _ := s.Load(ctx, "copy")
	if again[0].Kind != matches.EntryInningsDeclared {
		t.Fatalf("expected store to remain unchanged, got %s", again[0].Kind)
	}
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Append(ctx, entry("m1", 1)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled append, got %v", err)
	}
}
