package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
)

type fakeRedis struct {
	setKey  string
	setTTL  time.Duration
	setVal  []byte
	xadds   []*redis.XAddArgs
	setErr  error
	xaddErr error
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.setKey = key
	f.setTTL = expiration
	f.setVal, _ = value.([]byte)
	return redis.NewStatusResult("OK", f.setErr)
}

func (f *fakeRedis) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.xadds = append(f.xadds, a)
	return redis.NewStringResult("1-0", f.xaddErr)
}

func TestRedisSinkCachesAndStreams(t *testing.T) {
	fake := &fakeRedis{}
	sink := NewRedisSink(fake, "cricket:live", time.Hour)
	st := state("m1", 7)
	st.Status = matches.StatusLive

	if err := sink.Publish(context.Background(), st); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if fake.setKey != "match:m1:live" || fake.setTTL != time.Hour {
		t.Fatalf("unexpected cache write %s ttl %s", fake.setKey, fake.setTTL)
	}
	var cached matches.MatchState
	if err := json.Unmarshal(fake.setVal, &cached); err != nil || cached.Version != 7 {
		t.Fatalf("expected cached state json, got %s (%v)", fake.setVal, err)
	}
	if len(fake.xadds) != 1 {
		t.Fatalf("expected one stream entry, got %d", len(fake.xadds))
	}
	args := fake.xadds[0]
	if args.Stream != "cricket:live" {
		t.Fatalf("unexpected stream %s", args.Stream)
	}
	values := args.Values.(map[string]interface{})
	if values["match_id"] != "m1" || values["version"] != "7" || values["status"] != "live" {
		t.Fatalf("unexpected stream values %v", values)
	}
}

func TestRedisSinkStopsOnCacheError(t *testing.T) {
	fake := &fakeRedis{setErr: errors.New("READONLY")}
	sink := NewRedisSink(fake, "cricket:live", time.Hour)
	if err := sink.Publish(context.Background(), state("m1", 1)); err == nil {
		t.Fatalf("expected cache error")
	}
	if len(fake.xadds) != 0 {
		t.Fatalf("expected no stream entry after cache failure")
	}
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	if _, err := NewRedisClient("not a url"); err == nil {
		t.Fatalf("expected parse error")
	}
	client, err := NewRedisClient("redis://localhost:6379/2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer client.Close()
	if client.Options().DB != 2 {
		t.Fatalf("expected db 2, got %d", client.Options().DB)
	}
}
