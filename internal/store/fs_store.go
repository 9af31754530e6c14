package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
)

const logExt = ".jsonl"

// Overridden in tests to simulate failing disks.
var (
	writeLine = func(f *os.File, b []byte) (int, error) { return f.Write(b) }
	syncFile  = func(f *os.File) error { return f.Sync() }
)

// FSStore keeps one append-only JSON-lines file per match under basePath.
// Every append is fsynced before it is acknowledged.
type FSStore struct {
	basePath string

	mu      sync.Mutex
	lengths map[string]int64
}

// NewFSStore creates basePath if needed and returns a store rooted there.
func NewFSStore(basePath string) (*FSStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("event log path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{basePath: basePath, lengths: make(map[string]int64)}, nil
}

func (s *FSStore) Name() string { return "fs" }

func (s *FSStore) path(matchID string) (string, error) {
	if !matches.ValidID(matchID) {
		return "", fmt.Errorf("invalid match id %q", matchID)
	}
	return filepath.Join(s.basePath, matchID+logExt), nil
}

// Append writes the entry as one line and syncs the file.
func (s *FSStore) Append(ctx context.Context, entry matches.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(entry.MatchID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.lengths[entry.MatchID]
	if !ok {
		if n, err = s.repair(path); err != nil {
			return err
		}
	}
	if want := n + 1; entry.Position != want {
		return positionConflict(entry.MatchID, entry.Position, want)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	size := info.Size()
	if _, err := writeLine(f, append(data, '\n')); err != nil {
		return s.rollback(f, entry.MatchID, size, err)
	}
	if err := syncFile(f); err != nil {
		return s.rollback(f, entry.MatchID, size, err)
	}
	if err := f.Close(); err != nil {
		delete(s.lengths, entry.MatchID)
		return err
	}
	s.lengths[entry.MatchID] = entry.Position
	return nil
}

// rollback cuts the file back to its size before a failed append, so neither a
// partial line nor an unacknowledged entry survives. The cached length is
// dropped and recounted by the next append.
func (s *FSStore) rollback(f *os.File, matchID string, size int64, cause error) error {
	delete(s.lengths, matchID)
	if err := f.Truncate(size); err != nil {
		f.Close()
		return fmt.Errorf("%w (rollback: %v)", cause, err)
	}
	f.Close()
	return cause
}

// Load reads the match log. A torn final line left by a crash mid-append is
// ignored; a malformed complete line is an error.
func (s *FSStore) Load(ctx context.Context, matchID string) ([]matches.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(matchID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, _, err := readLog(path)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// repair counts the complete entries in a log and drops any torn tail left
// by an interrupted append.
func (s *FSStore) repair(path string) (int64, error) {
	entries, valid, err := readLog(path)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	if info.Size() > valid {
		if err := os.Truncate(path, valid); err != nil {
			return 0, err
		}
	}
	return int64(len(entries)), nil
}

// MatchIDs lists the matches that have a log file.
func (s *FSStore) MatchIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range dirEntries {
		if e.IsDir() || filepath.Ext(e.Name()) != logExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), logExt))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FSStore) Close() error { return nil }

// readLog decodes every complete line. It also returns the byte length of the
// complete lines so a torn tail can be truncated before the next append.
func readLog(path string) ([]matches.Entry, int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, err
	}

	var (
		entries []matches.Entry
		offset  int64
	)
	for lineNo := 1; len(data) > 0; lineNo++ {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		line := data[:idx]
		data = data[idx+1:]
		offset += int64(idx + 1)
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var entry matches.Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, 0, fmt.Errorf("%s line %d: %w", filepath.Base(path), lineNo, err)
		}
		entries = append(entries, entry)
	}
	return entries, offset, nil
}
