package store

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/preston-bernstein/cricket-scoring-service/internal/metrics"
)

func TestInstrumentedStoreRecordsAppends(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	rec := metrics.NewRecorder()
	s := NewInstrumentedStore(NewMemoryStore(), logger, rec)
	ctx := context.Background()

	if err := s.Append(ctx, entry("m1", 1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, entry("m1", 1)); err == nil {
		t.Fatalf("expected conflict")
	}

	snap := rec.StoreSnapshot("memory")
	if snap.Calls != 2 || snap.Errors != 1 {
		t.Fatalf("unexpected store metrics %+v", snap)
	}
	if !strings.Contains(buf.String(), "event log append failed") || !strings.Contains(buf.String(), "match_id=m1") {
		t.Fatalf("expected failure to be logged, got %q", buf.String())
	}
	if got, _ := s.Load(ctx, "m1"); len(got) != 1 {
		t.Fatalf("expected reads to pass through, got %d", len(got))
	}
}
