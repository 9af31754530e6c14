package broadcast

import (
	"testing"
	"time"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/metrics"
)

func state(id string, version int64) matches.MatchState {
	return matches.MatchState{Setup: matches.Setup{ID: id}, Version: version}
}

func TestHubDeliversToMatchSubscribersOnly(t *testing.T) {
	h := NewHub(nil, nil)
	a := h.Subscribe("m1")
	b := h.Subscribe("m2")
	defer a.Cancel()
	defer b.Cancel()

	h.Publish(state("m1", 1))

	select {
	case got := <-a.C:
		if got.Version != 1 {
			t.Fatalf("expected version 1, got %d", got.Version)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected m1 subscriber to receive the snapshot")
	}
	select {
	case got := <-b.C:
		t.Fatalf("m2 subscriber must not see m1 updates, got %+v", got)
	default:
	}
}

func TestHubCoalescesForSlowSubscriber(t *testing.T) {
	rec := metrics.NewRecorder()
	h := NewHub(nil, rec)
	sub := h.Subscribe("m1")
	defer sub.Cancel()

	for v := int64(1); v <= 5; v++ {
		h.Publish(state("m1", v))
	}

	got := <-sub.C
	if got.Version != 5 {
		t.Fatalf("expected the latest snapshot, got version %d", got.Version)
	}
	if rec.SubscriberDrops() != 4 {
		t.Fatalf("expected 4 coalesced updates, got %d", rec.SubscriberDrops())
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	h := NewHub(nil, nil)
	sub := h.Subscribe("m1")
	if h.SubscriberCount("m1") != 1 {
		t.Fatalf("expected one subscriber")
	}
	sub.Cancel()
	sub.Cancel()

	if _, ok := <-sub.C; ok {
		t.Fatalf("expected closed channel after cancel")
	}
	if h.SubscriberCount("m1") != 0 {
		t.Fatalf("expected subscriber to be removed")
	}
	h.Publish(state("m1", 1))
}

func TestHubCloseEndsSubscriptions(t *testing.T) {
	h := NewHub(nil, nil)
	sub := h.Subscribe("m1")
	h.Close()

	if _, ok := <-sub.C; ok {
		t.Fatalf("expected closed channel after hub close")
	}
	late := h.Subscribe("m1")
	if _, ok := <-late.C; ok {
		t.Fatalf("expected subscriptions after close to be closed")
	}
}
