package scoring

import (
	domainscoring "github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
)

// NewInnings opens an innings with its opening pair and bowler.
func NewInnings(number int, battingTeamID, bowlingTeamID string, maxOvers int, strikerID, nonStrikerID, bowlerID string) (domainscoring.InningsState, error) {
	switch {
	case number != 1 && number != 2:
		return domainscoring.InningsState{}, invalid("inningsNumber", "must be 1 or 2, got %d", number)
	case maxOvers <= 0:
		return domainscoring.InningsState{}, invalid("maxOvers", "must be positive")
	case strikerID == "":
		return domainscoring.InningsState{}, invalid("strikerId", "required")
	case nonStrikerID == "":
		return domainscoring.InningsState{}, invalid("nonStrikerId", "required")
	case bowlerID == "":
		return domainscoring.InningsState{}, invalid("bowlerId", "required")
	case strikerID == nonStrikerID:
		return domainscoring.InningsState{}, invalid("nonStrikerId", "striker and non-striker must differ")
	case bowlerID == strikerID || bowlerID == nonStrikerID:
		return domainscoring.InningsState{}, invalid("bowlerId", "%q is batting", bowlerID)
	}

	return domainscoring.InningsState{
		Number:          number,
		BattingTeamID:   battingTeamID,
		BowlingTeamID:   bowlingTeamID,
		MaxOvers:        maxOvers,
		Overs:           OversDisplay(0),
		StrikerID:       strikerID,
		NonStrikerID:    nonStrikerID,
		CurrentBowlerID: bowlerID,
		FallOfWickets:   []domainscoring.FallOfWicket{},
		BattersUsed:     []string{strikerID, nonStrikerID},
		RecentBalls:     []domainscoring.DeliverySummary{},
	}, nil
}

// Apply folds one delivery into the innings and returns the new state. The
// input state is never modified; on error it is returned unchanged.
func Apply(state domainscoring.InningsState, ev domainscoring.BallEvent) (domainscoring.InningsState, error) {
	ev = ev.Normalize()
	if err := ValidateBall(state, ev); err != nil {
		return state, err
	}

	next := state.Clone()
	if ev.NewBowler {
		next.CurrentBowlerID = ev.BowlerID
		next.AwaitingBowler = false
	}

	next.TotalRuns += ev.TotalRuns()
	switch ev.ExtraType {
	case domainscoring.ExtraWide:
		next.Extras.Wides += ev.ExtraRuns
	case domainscoring.ExtraNoBall:
		next.Extras.NoBalls += ev.ExtraRuns
	case domainscoring.ExtraBye:
		next.Extras.Byes += ev.ExtraRuns
	case domainscoring.ExtraLegBye:
		next.Extras.LegByes += ev.ExtraRuns
	}

	legal := IsLegalDelivery(ev.ExtraType)
	if legal {
		next.LegalBallsBowled++
		next.CurrentOverLegalBalls++
	}
	next.BallsApplied++

	if ev.CompletedRuns()%2 == 1 {
		swapEnds(&next)
	}

	if ev.IsWicket {
		next.TotalWickets++
		switch ev.DismissedPlayerID {
		case next.StrikerID:
			next.StrikerID = ""
		case next.NonStrikerID:
			next.NonStrikerID = ""
		}
		next.FallOfWickets = append(next.FallOfWickets, domainscoring.FallOfWicket{
			WicketNumber:      next.TotalWickets,
			RunsAtFall:        next.TotalRuns,
			OverAtFall:        OversDisplay(next.LegalBallsBowled),
			DismissedPlayerID: ev.DismissedPlayerID,
		})
		next.AwaitingNextBatter = true
	}

	next.RecentBalls = append(next.RecentBalls, domainscoring.DeliverySummary{
		OverNumber:       ev.OverNumber,
		BallNumberInOver: ev.BallNumberInOver,
		Runs:             ev.TotalRuns(),
		ExtraType:        ev.ExtraType,
		IsWicket:         ev.IsWicket,
		Label:            ev.Label(),
	})
	if n := len(next.RecentBalls); n > recentBallsKept {
		next.RecentBalls = append([]domainscoring.DeliverySummary{}, next.RecentBalls[n-recentBallsKept:]...)
	}

	if legal && next.CurrentOverLegalBalls == BallsPerOver {
		next.CurrentOverLegalBalls = 0
		next.OverNumber++
		next.PreviousOverBowlerID = next.CurrentBowlerID
		next.AwaitingBowler = true
		swapEnds(&next)
	}
	next.Overs = OversDisplay(next.LegalBallsBowled)

	switch {
	case next.TotalWickets >= MaxWickets:
		closeInnings(&next, domainscoring.CloseAllOut)
	case next.LegalBallsBowled >= next.MaxOvers*BallsPerOver:
		closeInnings(&next, domainscoring.CloseOversExhausted)
	}
	return next, nil
}

// SubstituteBatter sends the next batter to the end vacated by a wicket.
func SubstituteBatter(state domainscoring.InningsState, batterID string) (domainscoring.InningsState, error) {
	if state.Closed {
		return state, &InningsClosedError{InningsNumber: state.Number, Reason: state.CloseReason}
	}
	if !state.AwaitingNextBatter {
		return state, invalid("batterId", "no batter is awaited in innings %d", state.Number)
	}
	if batterID == "" {
		return state, invalid("batterId", "required")
	}
	if state.HasBatted(batterID) {
		return state, invalid("batterId", "%q has already batted", batterID)
	}
	if batterID == state.CurrentBowlerID {
		return state, invalid("batterId", "%q is bowling", batterID)
	}

	next := state.Clone()
	if next.StrikerID == "" {
		next.StrikerID = batterID
	} else {
		next.NonStrikerID = batterID
	}
	next.BattersUsed = append(next.BattersUsed, batterID)
	next.AwaitingNextBatter = false
	return next, nil
}

// Declare ends the innings at the scorer's instruction.
func Declare(state domainscoring.InningsState) (domainscoring.InningsState, error) {
	if state.Closed {
		return state, &InningsClosedError{InningsNumber: state.Number, Reason: state.CloseReason}
	}
	next := state.Clone()
	closeInnings(&next, domainscoring.CloseDeclared)
	return next, nil
}

func swapEnds(s *domainscoring.InningsState) {
	s.StrikerID, s.NonStrikerID = s.NonStrikerID, s.StrikerID
}

func closeInnings(s *domainscoring.InningsState, reason domainscoring.CloseReason) {
	s.Closed = true
	s.CloseReason = reason
	s.AwaitingNextBatter = false
	s.AwaitingBowler = false
}
