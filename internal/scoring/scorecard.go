package scoring

import (
	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	domainscoring "github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
)

// Scorecard derives batting and bowling figures for every started innings.
func (m *Match) Scorecard() matches.Scorecard {
	card := matches.Scorecard{
		MatchID: m.state.ID,
		Innings: make([]domainscoring.InningsScorecard, 0, len(m.state.Innings)),
	}
	for _, in := range m.state.Innings {
		card.Innings = append(card.Innings, buildInningsCard(in, m.entries))
	}
	return card
}

type bowlerTally struct {
	entry    domainscoring.BowlingEntry
	overRuns int
}

func buildInningsCard(in domainscoring.InningsState, entries []matches.Entry) domainscoring.InningsScorecard {
	batting := make(map[string]*domainscoring.BattingEntry, len(in.BattersUsed))
	for _, id := range in.BattersUsed {
		batting[id] = &domainscoring.BattingEntry{PlayerID: id}
	}
	bowling := map[string]*bowlerTally{}
	var bowlerOrder []string

	for _, e := range entries {
		if e.Kind != matches.EntryBall || e.Ball.InningsNumber != in.Number {
			continue
		}
		ev := e.Ball.Normalize()

		if bat, ok := batting[ev.StrikerID]; ok {
			bat.Runs += ev.RunsOffBat
			if ev.ExtraType != domainscoring.ExtraWide {
				bat.Balls++
			}
			switch ev.RunsOffBat {
			case 4:
				bat.Fours++
			case 6:
				bat.Sixes++
			}
		}

		bowler, ok := bowling[ev.BowlerID]
		if !ok {
			bowler = &bowlerTally{entry: domainscoring.BowlingEntry{PlayerID: ev.BowlerID}}
			bowling[ev.BowlerID] = bowler
			bowlerOrder = append(bowlerOrder, ev.BowlerID)
		}
		conceded := ev.RunsOffBat
		switch ev.ExtraType {
		case domainscoring.ExtraWide:
			conceded += ev.ExtraRuns
			bowler.entry.Wides++
		case domainscoring.ExtraNoBall:
			conceded += ev.ExtraRuns
			bowler.entry.NoBalls++
		}
		bowler.entry.RunsConceded += conceded
		bowler.overRuns += conceded
		if IsLegalDelivery(ev.ExtraType) {
			bowler.entry.LegalBalls++
			if ev.BallNumberInOver == BallsPerOver {
				if bowler.overRuns == 0 {
					bowler.entry.Maidens++
				}
				bowler.overRuns = 0
			}
		}

		if ev.IsWicket {
			if ev.WicketMode.CreditedToBowler() {
				bowler.entry.Wickets++
			}
			if bat, ok := batting[ev.DismissedPlayerID]; ok {
				bat.Out = true
				bat.WicketMode = ev.WicketMode
				bat.FielderID = ev.FielderID
				if ev.WicketMode.CreditedToBowler() {
					bat.BowlerID = ev.BowlerID
				}
			}
		}
	}

	card := domainscoring.InningsScorecard{
		InningsNumber: in.Number,
		BattingTeamID: in.BattingTeamID,
		BowlingTeamID: in.BowlingTeamID,
		Batting:       make([]domainscoring.BattingEntry, 0, len(in.BattersUsed)),
		Bowling:       make([]domainscoring.BowlingEntry, 0, len(bowlerOrder)),
		Extras:        in.Extras,
		Total:         in.TotalRuns,
		Wickets:       in.TotalWickets,
		Overs:         in.Overs,
		FallOfWickets: append([]domainscoring.FallOfWicket{}, in.FallOfWickets...),
	}
	for _, id := range in.BattersUsed {
		bat := *batting[id]
		if bat.Balls > 0 {
			bat.StrikeRate = round2(float64(bat.Runs) * 100 / float64(bat.Balls))
		}
		card.Batting = append(card.Batting, bat)
	}
	for _, id := range bowlerOrder {
		bowl := bowling[id].entry
		bowl.Overs = OversDisplay(bowl.LegalBalls)
		bowl.Economy = RunRate(bowl.RunsConceded, bowl.LegalBalls)
		card.Bowling = append(card.Bowling, bowl)
	}
	return card
}
