package scoring

import (
	"testing"

	domainscoring "github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
)

func TestScorecardFigures(t *testing.T) {
	m := startedMatch(t, 20)
	m = submit(t, m, runs(4))
	m = submit(t, m, extra(domainscoring.ExtraWide, 1))
	m = submit(t, m, extra(domainscoring.ExtraLegBye, 1))
	m = submit(t, m, runs(6))
	m = submit(t, m, extra(domainscoring.ExtraNoBall, 1), runs(2))
	m = submit(t, m, wicket(domainscoring.WicketCaught), func(ev *domainscoring.BallEvent) { ev.FielderID = "f1" })

	card := m.Scorecard()
	if len(card.Innings) != 1 {
		t.Fatalf("expected one innings, got %d", len(card.Innings))
	}
	in := card.Innings[0]
	if in.Total != 15 || in.Wickets != 1 || in.Overs != "0.4" {
		t.Fatalf("unexpected totals %+v", in)
	}

	s1, s2 := in.Batting[0], in.Batting[1]
	if s1.PlayerID != "s1" || s1.Runs != 4 || s1.Balls != 2 || s1.Fours != 1 {
		t.Fatalf("unexpected s1 line %+v", s1)
	}
	// s2: six, two off the no-ball, then caught
	if s2.Runs != 8 || s2.Balls != 3 || s2.Sixes != 1 || !s2.Out || s2.WicketMode != domainscoring.WicketCaught || s2.BowlerID != "b1" || s2.FielderID != "f1" {
		t.Fatalf("unexpected s2 line %+v", s2)
	}
	if s2.StrikeRate != 266.67 {
		t.Fatalf("expected strike rate 266.67, got %v", s2.StrikeRate)
	}

	bowler := in.Bowling[0]
	// the leg-bye is not charged to the bowler
	if bowler.RunsConceded != 14 || bowler.Wides != 1 || bowler.NoBalls != 1 || bowler.Wickets != 1 || bowler.Overs != "0.4" {
		t.Fatalf("unexpected bowling line %+v", bowler)
	}
}

func TestScorecardCountsWideDeliveries(t *testing.T) {
	m := startedMatch(t, 20)
	m = submit(t, m, extra(domainscoring.ExtraWide, 3))
	m = submit(t, m, extra(domainscoring.ExtraNoBall, 1), runs(4))
	m = submit(t, m, extra(domainscoring.ExtraWide, 1))

	bowler := m.Scorecard().Innings[0].Bowling[0]
	if bowler.Wides != 2 || bowler.NoBalls != 1 {
		t.Fatalf("expected 2 wides and 1 no-ball, got %+v", bowler)
	}
	if bowler.RunsConceded != 9 || bowler.LegalBalls != 0 {
		t.Fatalf("unexpected bowling line %+v", bowler)
	}
}

func TestScorecardMaidenAndRunOut(t *testing.T) {
	m := startedMatch(t, 20)
	for i := 0; i < 6; i++ {
		m = submit(t, m)
	}
	m = submit(t, m, runs(1), wicket(domainscoring.WicketRunOut))

	in := m.Scorecard().Innings[0]
	if len(in.Bowling) != 2 {
		t.Fatalf("expected two bowlers, got %d", len(in.Bowling))
	}
	if in.Bowling[0].Maidens != 1 || in.Bowling[0].Economy != 0 {
		t.Fatalf("expected a maiden, got %+v", in.Bowling[0])
	}
	if in.Bowling[1].Wickets != 0 {
		t.Fatalf("run-outs are not credited to the bowler")
	}
	for _, bat := range in.Batting {
		if bat.Out && bat.BowlerID != "" {
			t.Fatalf("run-out must not name a bowler, got %+v", bat)
		}
	}
}

func TestOversHelpers(t *testing.T) {
	if got := OversDisplay(17); got != "2.5" {
		t.Fatalf("expected 2.5, got %s", got)
	}
	if got := OversDisplay(0); got != "0.0" {
		t.Fatalf("expected 0.0, got %s", got)
	}
	if got := RunRate(45, 30); got != 9 {
		t.Fatalf("expected 9, got %v", got)
	}
	if got := RequiredRunRate(20, 0); got != 0 {
		t.Fatalf("expected 0 with no balls left, got %v", got)
	}
	if got := RequiredRunRate(10, 9); got != 6.67 {
		t.Fatalf("expected 6.67, got %v", got)
	}
	for extra, want := range map[domainscoring.ExtraType]bool{
		domainscoring.ExtraNone:   true,
		domainscoring.ExtraBye:    true,
		domainscoring.ExtraLegBye: true,
		domainscoring.ExtraWide:   false,
		domainscoring.ExtraNoBall: false,
	} {
		if IsLegalDelivery(extra) != want {
			t.Fatalf("legality of %s: expected %v", extra, want)
		}
	}
}
