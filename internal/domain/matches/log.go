package matches

import (
	"time"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
)

// EntryKind discriminates log entries.
type EntryKind string

const (
	EntryMatchCreated      EntryKind = "match_created"
	EntryInningsStarted    EntryKind = "innings_started"
	EntryBall              EntryKind = "ball"
	EntryBatterSubstituted EntryKind = "batter_substituted"
	EntryInningsDeclared   EntryKind = "innings_declared"
)

// InningsStart names the opening pair and bowler of an innings.
type InningsStart struct {
	InningsNumber int    `json:"inningsNumber"`
	StrikerID     string `json:"strikerId"`
	NonStrikerID  string `json:"nonStrikerId"`
	BowlerID      string `json:"bowlerId"`
}

// Substitution brings the next batter to the vacant end after a wicket.
type Substitution struct {
	BatterID string `json:"batterId"`
}

// Declaration ends an innings on the scorer's instruction.
type Declaration struct {
	InningsNumber int `json:"inningsNumber"`
}

// Entry is one record of a match's append-only log. Position is 1-based and
// contiguous per match; Sequence is set on ball entries only and is the
// scorer-supplied optimistic sequence number.
type Entry struct {
	MatchID      string             `json:"matchId"`
	Position     int64              `json:"position"`
	Kind         EntryKind          `json:"kind"`
	Sequence     int64              `json:"sequence,omitempty"`
	RecordedAt   time.Time          `json:"recordedAt"`
	Setup        *Setup             `json:"setup,omitempty"`
	Start        *InningsStart      `json:"start,omitempty"`
	Ball         *scoring.BallEvent `json:"ball,omitempty"`
	Substitution *Substitution      `json:"substitution,omitempty"`
	Declaration  *Declaration       `json:"declaration,omitempty"`
}

// BallEntry is the wire form of a ball submission.
type BallEntry struct {
	Sequence int64             `json:"sequence"`
	Event    scoring.BallEvent `json:"event"`
}
