package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
)

const uniqueViolation = "23505"

// PostgresStore keeps match logs in a single match_events table keyed by
// (match_id, position). The primary key enforces the one-writer-per-position
// rule even across processes.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects, pings and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.initSchema(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS match_events (
		match_id    TEXT        NOT NULL,
		position    BIGINT      NOT NULL,
		kind        TEXT        NOT NULL,
		sequence    BIGINT      NOT NULL DEFAULT 0,
		payload     JSONB       NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (match_id, position)
	);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Append inserts the entry. The insert only succeeds when the previous
// position exists, so a gap is reported the same way as a duplicate.
func (s *PostgresStore) Append(ctx context.Context, entry matches.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO match_events (match_id, position, kind, sequence, payload, recorded_at)
	SELECT $1::text, $2::bigint, $3::text, $4::bigint, $5::jsonb, $6::timestamptz
	WHERE $2::bigint = 1 OR EXISTS (
		SELECT 1 FROM match_events WHERE match_id = $1::text AND position = $2::bigint - 1
	)
	`
	res, err := s.db.ExecContext(ctx, query,
		entry.MatchID, entry.Position, string(entry.Kind), entry.Sequence, string(payload), entry.RecordedAt,
	)
	if err != nil {
		if isUniqueViolation(err) && s.alreadyStored(ctx, entry) {
			return nil
		}
		return mapPostgresError(entry, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("%w: match %s position %d leaves a gap", ErrPositionConflict, entry.MatchID, entry.Position)
	}
	return nil
}

// alreadyStored reports whether the row at the entry's position holds the same
// entry. A commit whose acknowledgement was lost is retried with the same
// payload and must not be refused.
func (s *PostgresStore) alreadyStored(ctx context.Context, entry matches.Entry) bool {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM match_events WHERE match_id = $1 AND position = $2`,
		entry.MatchID, entry.Position,
	).Scan(&payload)
	if err != nil {
		return false
	}
	stored, err := decodeEntry(payload)
	if err != nil {
		return false
	}
	return sameEntry(stored, entry)
}

// sameEntry compares two log entries ignoring when they were recorded.
func sameEntry(a, b matches.Entry) bool {
	a.RecordedAt, b.RecordedAt = time.Time{}, time.Time{}
	left, err := json.Marshal(a)
	if err != nil {
		return false
	}
	right, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(left, right)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func mapPostgresError(entry matches.Entry, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: match %s position %d already written", ErrPositionConflict, entry.MatchID, entry.Position)
	}
	return fmt.Errorf("failed to append match event: %w", err)
}

// Load returns the match log in position order.
func (s *PostgresStore) Load(ctx context.Context, matchID string) ([]matches.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM match_events WHERE match_id = $1 ORDER BY position`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match events: %w", err)
	}
	defer rows.Close()

	var entries []matches.Entry
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		entry, err := decodeEntry(payload)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// MatchIDs lists every match with at least one event.
func (s *PostgresStore) MatchIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT match_id FROM match_events ORDER BY match_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func decodeEntry(payload []byte) (matches.Entry, error) {
	var entry matches.Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return matches.Entry{}, fmt.Errorf("failed to decode match event: %w", err)
	}
	return entry, nil
}
