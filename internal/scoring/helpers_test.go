package scoring

import (
	"testing"
	"time"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	domainscoring "github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func testSetup(maxOvers int) matches.Setup {
	return matches.Setup{
		ID:       "m1",
		Title:    "Hawks v Owls",
		Format:   matches.FormatCustom,
		MaxOvers: maxOvers,
		Team1:    matches.Team{ID: "hawks", Name: "Hawks"},
		Team2:    matches.Team{ID: "owls", Name: "Owls"},
	}
}

// next builds the delivery the innings expects, so tests only describe what
// happened on the ball.
func next(in domainscoring.InningsState, opts ...func(*domainscoring.BallEvent)) domainscoring.BallEvent {
	ev := domainscoring.BallEvent{
		MatchID:          "m1",
		InningsNumber:    in.Number,
		OverNumber:       in.OverNumber,
		BallNumberInOver: in.CurrentOverLegalBalls + 1,
		StrikerID:        in.StrikerID,
		NonStrikerID:     in.NonStrikerID,
		BowlerID:         in.CurrentBowlerID,
		ExtraType:        domainscoring.ExtraNone,
	}
	if in.AwaitingBowler {
		ev.NewBowler = true
		ev.BowlerID = otherBowler(in.PreviousOverBowlerID)
	}
	for _, opt := range opts {
		opt(&ev)
	}
	return ev
}

func otherBowler(prev string) string {
	if prev == "b1" {
		return "b2"
	}
	return "b1"
}

func runs(n int) func(*domainscoring.BallEvent) {
	return func(ev *domainscoring.BallEvent) { ev.RunsOffBat = n }
}

func extra(kind domainscoring.ExtraType, n int) func(*domainscoring.BallEvent) {
	return func(ev *domainscoring.BallEvent) {
		ev.ExtraType = kind
		ev.ExtraRuns = n
	}
}

func wicket(mode domainscoring.WicketMode) func(*domainscoring.BallEvent) {
	return func(ev *domainscoring.BallEvent) {
		ev.IsWicket = true
		ev.WicketMode = mode
		ev.DismissedPlayerID = ev.StrikerID
	}
}

func openInnings(t *testing.T, maxOvers int) domainscoring.InningsState {
	t.Helper()
	in, err := NewInnings(1, "hawks", "owls", maxOvers, "s1", "s2", "b1")
	if err != nil {
		t.Fatalf("open innings: %v", err)
	}
	return in
}

func mustApply(t *testing.T, in domainscoring.InningsState, ev domainscoring.BallEvent) domainscoring.InningsState {
	t.Helper()
	out, err := Apply(in, ev)
	if err != nil {
		t.Fatalf("apply %+v: %v", ev, err)
	}
	return out
}

// startedMatch returns a match with innings 1 under way.
func startedMatch(t *testing.T, maxOvers int) *Match {
	t.Helper()
	m, err := NewMatch(testSetup(maxOvers), testNow)
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	m, err = m.StartInnings(matches.InningsStart{InningsNumber: 1, StrikerID: "s1", NonStrikerID: "s2", BowlerID: "b1"}, testNow)
	if err != nil {
		t.Fatalf("start innings: %v", err)
	}
	return m
}

func current(t *testing.T, m *Match) domainscoring.InningsState {
	t.Helper()
	in, ok := m.State().CurrentInnings()
	if !ok {
		t.Fatalf("expected an innings in progress")
	}
	return in
}

func submit(t *testing.T, m *Match, opts ...func(*domainscoring.BallEvent)) *Match {
	t.Helper()
	ev := next(current(t, m), opts...)
	out, _, err := m.SubmitBall(m.State().LastSequence+1, ev, testNow)
	if err != nil {
		t.Fatalf("submit %+v: %v", ev, err)
	}
	return out
}
