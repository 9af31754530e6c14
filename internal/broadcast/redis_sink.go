package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
)

// Sink receives every published snapshot outside the process.
type Sink interface {
	Name() string
	Publish(ctx context.Context, state matches.MatchState) error
}

// redisCommander is the subset of *redis.Client the sink uses.
type redisCommander interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// streamMaxLen caps the update stream; consumers only need recent history.
const streamMaxLen = 10000

// RedisSink caches the latest state of each match under match:{id}:live and
// appends every update to a stream for downstream consumers.
type RedisSink struct {
	client  redisCommander
	stream  string
	liveTTL time.Duration
}

// NewRedisSink wraps a connected client.
func NewRedisSink(client redisCommander, stream string, liveTTL time.Duration) *RedisSink {
	return &RedisSink{client: client, stream: stream, liveTTL: liveTTL}
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (s *RedisSink) Name() string { return "redis" }

// LiveKey is the cache key holding a match's latest state.
func LiveKey(matchID string) string {
	return fmt.Sprintf("match:%s:live", matchID)
}

// Publish stores the snapshot and appends it to the update stream.
func (s *RedisSink) Publish(ctx context.Context, state matches.MatchState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling match state: %w", err)
	}

	if err := s.client.Set(ctx, LiveKey(state.ID), data, s.liveTTL).Err(); err != nil {
		return fmt.Errorf("caching match state: %w", err)
	}
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":     string(data),
			"match_id": state.ID,
			"version":  strconv.FormatInt(state.Version, 10),
			"status":   string(state.Status),
		},
	}).Err()
}
