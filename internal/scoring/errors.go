package scoring

import (
	"fmt"

	domainscoring "github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
)

// ValidationError reports a malformed or rule-violating submission. The caller
// can correct the submission and try again.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid submission: " + e.Reason
	}
	return fmt.Sprintf("invalid submission: %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// SequenceConflictError reports a ball submitted out of turn, usually because
// another scorer got there first. Refetch the live state and retry.
type SequenceConflictError struct {
	MatchID  string
	Expected int64
	Got      int64
}

func (e *SequenceConflictError) Error() string {
	return fmt.Sprintf("sequence conflict for match %s: expected %d, got %d", e.MatchID, e.Expected, e.Got)
}

// InningsClosedError reports a submission against an innings that has ended.
type InningsClosedError struct {
	InningsNumber int
	Reason        domainscoring.CloseReason
}

func (e *InningsClosedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("innings %d is closed", e.InningsNumber)
	}
	return fmt.Sprintf("innings %d is closed (%s)", e.InningsNumber, e.Reason)
}

// MatchCompletedError reports a submission after the result was decided.
type MatchCompletedError struct {
	MatchID string
}

func (e *MatchCompletedError) Error() string {
	return fmt.Sprintf("match %s is completed", e.MatchID)
}

// AwaitingNextBatterError reports a delivery submitted while an end is vacant.
type AwaitingNextBatterError struct {
	InningsNumber int
}

func (e *AwaitingNextBatterError) Error() string {
	return fmt.Sprintf("innings %d is awaiting the next batter", e.InningsNumber)
}

// AwaitingBowlerError reports a delivery at the start of an over that does not
// name a new bowler. It unwraps to a ValidationError.
type AwaitingBowlerError struct {
	InningsNumber int
	OverNumber    int
}

func (e *AwaitingBowlerError) Error() string {
	return fmt.Sprintf("innings %d: over %d needs a new bowler", e.InningsNumber, e.OverNumber)
}

func (e *AwaitingBowlerError) Unwrap() error {
	return invalid("bowlerId", "a new bowler must be named for over %d", e.OverNumber)
}
