package scoring

import (
	domainscoring "github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
)

// ValidateBall checks a candidate delivery against the innings it would be
// folded into. It has no side effects.
func ValidateBall(state domainscoring.InningsState, ev domainscoring.BallEvent) error {
	ev = ev.Normalize()

	if state.Closed {
		return &InningsClosedError{InningsNumber: state.Number, Reason: state.CloseReason}
	}
	if ev.InningsNumber != state.Number {
		return invalid("inningsNumber", "expected innings %d, got %d", state.Number, ev.InningsNumber)
	}
	if state.AwaitingNextBatter {
		return &AwaitingNextBatterError{InningsNumber: state.Number}
	}
	if err := validateRuns(ev); err != nil {
		return err
	}
	if err := validateParticipants(state, ev); err != nil {
		return err
	}
	if ev.OverNumber != state.OverNumber {
		return invalid("overNumber", "expected over %d, got %d", state.OverNumber, ev.OverNumber)
	}
	if want := state.CurrentOverLegalBalls + 1; ev.BallNumberInOver != want {
		return invalid("ballNumberInOver", "expected ball %d, got %d", want, ev.BallNumberInOver)
	}
	if ev.IsWicket {
		return validateWicket(state, ev)
	}
	return nil
}

func validateRuns(ev domainscoring.BallEvent) error {
	if !ev.ExtraType.Valid() {
		return invalid("extraType", "unknown extra type %q", ev.ExtraType)
	}
	if ev.RunsOffBat < 0 {
		return invalid("runsOffBat", "must not be negative")
	}
	if ev.ExtraRuns < 0 {
		return invalid("extraRuns", "must not be negative")
	}

	switch ev.ExtraType {
	case domainscoring.ExtraNone:
		if ev.ExtraRuns != 0 {
			return invalid("extraRuns", "a delivery without extras cannot award extra runs")
		}
	case domainscoring.ExtraWide:
		if ev.RunsOffBat != 0 {
			return invalid("runsOffBat", "a wide cannot score runs off the bat")
		}
		if ev.ExtraRuns < 1 {
			return invalid("extraRuns", "a wide carries at least the one-run penalty")
		}
	case domainscoring.ExtraNoBall:
		if ev.ExtraRuns < 1 {
			return invalid("extraRuns", "a no-ball carries at least the one-run penalty")
		}
	case domainscoring.ExtraBye, domainscoring.ExtraLegBye:
		if ev.RunsOffBat != 0 {
			return invalid("runsOffBat", "a %s cannot score runs off the bat", ev.ExtraType)
		}
		if ev.ExtraRuns < 1 {
			return invalid("extraRuns", "a %s must award at least one run", ev.ExtraType)
		}
	}
	return nil
}

func validateParticipants(state domainscoring.InningsState, ev domainscoring.BallEvent) error {
	if ev.StrikerID != state.StrikerID {
		return invalid("strikerId", "expected striker %q, got %q", state.StrikerID, ev.StrikerID)
	}
	if ev.NonStrikerID != state.NonStrikerID {
		return invalid("nonStrikerId", "expected non-striker %q, got %q", state.NonStrikerID, ev.NonStrikerID)
	}

	if state.AwaitingBowler {
		if !ev.NewBowler || ev.BowlerID == "" {
			return &AwaitingBowlerError{InningsNumber: state.Number, OverNumber: state.OverNumber}
		}
		if ev.BowlerID == state.PreviousOverBowlerID {
			return invalid("bowlerId", "%q bowled the previous over", ev.BowlerID)
		}
	} else {
		// the opening ball may restate the bowler named at innings start
		opening := state.BallsApplied == 0 && ev.BowlerID == state.CurrentBowlerID
		if ev.NewBowler && !opening {
			return invalid("newBowler", "a bowler change is only permitted at an over boundary")
		}
		if ev.BowlerID != state.CurrentBowlerID {
			return invalid("bowlerId", "expected bowler %q, got %q", state.CurrentBowlerID, ev.BowlerID)
		}
	}
	if ev.BowlerID == state.StrikerID || ev.BowlerID == state.NonStrikerID {
		return invalid("bowlerId", "%q is batting", ev.BowlerID)
	}
	return nil
}

func validateWicket(state domainscoring.InningsState, ev domainscoring.BallEvent) error {
	if !ev.WicketMode.Valid() {
		return invalid("wicketMode", "unknown wicket mode %q", ev.WicketMode)
	}
	if ev.DismissedPlayerID == "" {
		return invalid("dismissedPlayerId", "required when a wicket falls")
	}

	if ev.WicketMode == domainscoring.WicketRunOut {
		if ev.DismissedPlayerID != state.StrikerID && ev.DismissedPlayerID != state.NonStrikerID {
			return invalid("dismissedPlayerId", "%q is not at the crease", ev.DismissedPlayerID)
		}
	} else if ev.DismissedPlayerID != state.StrikerID {
		return invalid("dismissedPlayerId", "only the striker can be out %s", ev.WicketMode)
	}

	switch ev.ExtraType {
	case domainscoring.ExtraWide:
		switch ev.WicketMode {
		case domainscoring.WicketStumped, domainscoring.WicketHitWicket, domainscoring.WicketRunOut:
		default:
			return invalid("wicketMode", "a batter cannot be out %s off a wide", ev.WicketMode)
		}
	case domainscoring.ExtraNoBall, domainscoring.ExtraBye, domainscoring.ExtraLegBye:
		if ev.WicketMode != domainscoring.WicketRunOut {
			return invalid("wicketMode", "a batter cannot be out %s off a %s", ev.WicketMode, ev.ExtraType)
		}
	}
	return nil
}
