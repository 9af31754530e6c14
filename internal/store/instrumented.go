package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/logging"
	"github.com/preston-bernstein/cricket-scoring-service/internal/metrics"
)

// instrumentedStore wraps a Store with append metrics and failure logging.
type instrumentedStore struct {
	Store
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewInstrumentedStore decorates inner. A nil logger or recorder disables that side.
func NewInstrumentedStore(inner Store, logger *slog.Logger, recorder *metrics.Recorder) Store {
	return &instrumentedStore{Store: inner, logger: logger, metrics: recorder}
}

func (s *instrumentedStore) Append(ctx context.Context, entry matches.Entry) error {
	start := time.Now()
	err := s.Store.Append(ctx, entry)
	s.metrics.RecordStoreAppend(s.Name(), time.Since(start), err)
	if err != nil {
		logging.Error(logging.FromContext(ctx, s.logger), "event log append failed", err,
			logging.FieldStore, s.Name(),
			logging.FieldMatchID, entry.MatchID,
			logging.FieldPosition, entry.Position,
		)
	}
	return err
}
