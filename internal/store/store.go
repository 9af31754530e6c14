package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
)

// ErrPositionConflict is returned when an entry's position is already taken or
// would leave a gap in the match log.
var ErrPositionConflict = errors.New("log position conflict")

// Store persists match logs. Appends for one match are strictly ordered by
// position; the log is the source of truth and never rewritten.
type Store interface {
	Name() string
	Append(ctx context.Context, entry matches.Entry) error
	Load(ctx context.Context, matchID string) ([]matches.Entry, error)
	MatchIDs(ctx context.Context) ([]string, error)
	Close() error
}

func positionConflict(matchID string, got, want int64) error {
	return fmt.Errorf("%w: match %s got position %d, expected %d", ErrPositionConflict, matchID, got, want)
}
