package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecorderTracksStoreAppendsAndErrors(t *testing.T) {
	rec := NewRecorder()
	rec.RecordStoreAppend("postgres", 10*time.Millisecond, nil)
	rec.RecordStoreAppend("postgres", 15*time.Millisecond, errors.New("boom"))

	snap := rec.StoreSnapshot("postgres")
	if snap.Calls != 2 || snap.Errors != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.LastCallLatency != 15*time.Millisecond {
		t.Fatalf("expected last latency to be 15ms, got %s", snap.LastCallLatency)
	}
	if got := rec.StoreSnapshot("fs"); got.Calls != 0 {
		t.Fatalf("expected untouched store to be empty, got %+v", got)
	}
}

func TestRecorderTracksSubmissionsAndFanout(t *testing.T) {
	rec := NewRecorder()
	rec.RecordSubmission(OutcomeAccepted, time.Millisecond)
	rec.RecordSubmission(OutcomeAccepted, time.Millisecond)
	rec.RecordSubmission(OutcomeConflict, time.Millisecond)
	rec.RecordSnapshotPublished()
	rec.RecordSubscriberDrop()
	rec.RecordSinkPublish("redis", time.Millisecond, errors.New("down"))
	rec.RecordCheckpointCycle(time.Millisecond, nil)

	if got := rec.Submissions(OutcomeAccepted); got != 2 {
		t.Fatalf("expected 2 accepted, got %d", got)
	}
	if got := rec.Submissions(OutcomeConflict); got != 1 {
		t.Fatalf("expected 1 conflict, got %d", got)
	}
	if rec.SnapshotsPublished() != 1 || rec.SubscriberDrops() != 1 {
		t.Fatalf("unexpected fan-out counters")
	}
	rec.RecordCheckpointCycle(time.Millisecond, errors.New("disk"))
	if cycles, failures := rec.CheckpointCycles(); cycles != 2 || failures != 1 {
		t.Fatalf("expected 2 checkpoint cycles with 1 failure, got %d/%d", cycles, failures)
	}
	if got := rec.SinkSnapshot("redis"); got.Errors != 1 {
		t.Fatalf("expected sink error recorded, got %+v", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordSubmission(OutcomeAccepted, time.Millisecond)
	rec.RecordStoreAppend("memory", time.Millisecond, nil)
	rec.RecordSnapshotPublished()
	rec.RecordHTTPRequest("GET", "/health", 200, time.Millisecond)
	if rec.Submissions(OutcomeAccepted) != 0 || rec.StoreSnapshot("memory").Calls != 0 {
		t.Fatalf("expected nil recorder to report zero")
	}
}
