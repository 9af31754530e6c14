package testutil

import (
	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	domainscoring "github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
)

// SampleSetup returns a two-over match between Hawks and Owls.
func SampleSetup(id string) domainmatches.Setup {
	return domainmatches.Setup{
		ID:       id,
		Title:    "Hawks v Owls",
		Format:   domainmatches.FormatCustom,
		MaxOvers: 2,
		Team1:    domainmatches.Team{ID: "hawks", Name: "Hawks"},
		Team2:    domainmatches.Team{ID: "owls", Name: "Owls"},
	}
}

// OpeningStart opens innings 1 with s1 and s2 facing b1.
func OpeningStart() domainmatches.InningsStart {
	return domainmatches.InningsStart{InningsNumber: 1, StrikerID: "s1", NonStrikerID: "s2", BowlerID: "b1"}
}

// DotBall returns a legal dot ball in the opening over of innings 1 with s1
// on strike. Ball numbers run 1 to 6 with the sequence.
func DotBall(matchID string, sequence int64) domainscoring.BallEvent {
	return domainscoring.BallEvent{
		MatchID:          matchID,
		InningsNumber:    1,
		OverNumber:       0,
		BallNumberInOver: int(sequence),
		StrikerID:        "s1",
		NonStrikerID:     "s2",
		BowlerID:         "b1",
		ExtraType:        domainscoring.ExtraNone,
	}
}
