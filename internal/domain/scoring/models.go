package scoring

import (
	"strconv"
	"time"
)

// ExtraType classifies how a delivery produced extras, if at all.
type ExtraType string

const (
	ExtraNone   ExtraType = "none"
	ExtraWide   ExtraType = "wide"
	ExtraNoBall ExtraType = "no-ball"
	ExtraBye    ExtraType = "bye"
	ExtraLegBye ExtraType = "leg-bye"
)

// Valid reports whether the extra type is one of the known values.
func (e ExtraType) Valid() bool {
	switch e {
	case ExtraNone, ExtraWide, ExtraNoBall, ExtraBye, ExtraLegBye:
		return true
	}
	return false
}

// WicketMode is the method of dismissal.
type WicketMode string

const (
	WicketBowled    WicketMode = "bowled"
	WicketCaught    WicketMode = "caught"
	WicketLBW       WicketMode = "lbw"
	WicketRunOut    WicketMode = "run-out"
	WicketStumped   WicketMode = "stumped"
	WicketHitWicket WicketMode = "hit-wicket"
)

// Valid reports whether the mode is one of the known dismissals.
func (m WicketMode) Valid() bool {
	switch m {
	case WicketBowled, WicketCaught, WicketLBW, WicketRunOut, WicketStumped, WicketHitWicket:
		return true
	}
	return false
}

// CreditedToBowler reports whether the bowler is credited with the wicket.
func (m WicketMode) CreditedToBowler() bool {
	return m.Valid() && m != WicketRunOut
}

// BallEvent is the immutable record of one physical delivery.
type BallEvent struct {
	MatchID           string     `json:"matchId"`
	InningsNumber     int        `json:"inningsNumber"`
	OverNumber        int        `json:"overNumber"`
	BallNumberInOver  int        `json:"ballNumberInOver"`
	StrikerID         string     `json:"strikerId"`
	NonStrikerID      string     `json:"nonStrikerId"`
	BowlerID          string     `json:"bowlerId"`
	NewBowler         bool       `json:"newBowler,omitempty"`
	RunsOffBat        int        `json:"runsOffBat"`
	ExtraType         ExtraType  `json:"extraType"`
	ExtraRuns         int        `json:"extraRuns"`
	IsWicket          bool       `json:"isWicket"`
	WicketMode        WicketMode `json:"wicketMode,omitempty"`
	DismissedPlayerID string     `json:"dismissedPlayerId,omitempty"`
	FielderID         string     `json:"fielderId,omitempty"`
	Timestamp         time.Time  `json:"timestamp"`
}

// Normalize fills the implicit defaults: an empty extra type is a normal delivery
// and wicket detail is dropped from deliveries that are not wickets.
func (b BallEvent) Normalize() BallEvent {
	if b.ExtraType == "" {
		b.ExtraType = ExtraNone
	}
	if !b.IsWicket {
		b.WicketMode = ""
		b.DismissedPlayerID = ""
		b.FielderID = ""
	}
	return b
}

// TotalRuns is everything the delivery adds to the batting side's total.
func (b BallEvent) TotalRuns() int {
	return b.RunsOffBat + b.ExtraRuns
}

// CompletedRuns is the number of runs the batters physically ran, which decides
// whether they changed ends. Penalty runs for wides and no-balls are excluded.
func (b BallEvent) CompletedRuns() int {
	switch b.ExtraType {
	case ExtraWide:
		return b.ExtraRuns - 1
	case ExtraNoBall:
		return b.RunsOffBat + b.ExtraRuns - 1
	case ExtraBye, ExtraLegBye:
		return b.ExtraRuns
	default:
		return b.RunsOffBat
	}
}

// SameDelivery reports whether two events describe the same delivery, ignoring
// the time they were recorded.
func (b BallEvent) SameDelivery(other BallEvent) bool {
	a, o := b.Normalize(), other.Normalize()
	a.Timestamp, o.Timestamp = time.Time{}, time.Time{}
	return a == o
}

// Label renders a delivery the way a scorer's ball-by-ball strip does: "4", "W", "1wd", "2nb".
func (b BallEvent) Label() string {
	var label string
	switch b.ExtraType {
	case ExtraWide:
		label = strconv.Itoa(b.ExtraRuns) + "wd"
	case ExtraNoBall:
		label = strconv.Itoa(b.TotalRuns()) + "nb"
	case ExtraBye:
		label = strconv.Itoa(b.ExtraRuns) + "b"
	case ExtraLegBye:
		label = strconv.Itoa(b.ExtraRuns) + "lb"
	default:
		if b.RunsOffBat == 0 {
			label = "."
		} else {
			label = strconv.Itoa(b.RunsOffBat)
		}
	}
	if b.IsWicket {
		if label == "." {
			return "W"
		}
		return label + "+W"
	}
	return label
}

// Extras totals runs not credited to a batter.
type Extras struct {
	Wides   int `json:"wides"`
	NoBalls int `json:"noBalls"`
	Byes    int `json:"byes"`
	LegByes int `json:"legByes"`
}

// Total sums all extras.
func (e Extras) Total() int {
	return e.Wides + e.NoBalls + e.Byes + e.LegByes
}

// FallOfWicket records the score at the moment of a dismissal.
type FallOfWicket struct {
	WicketNumber      int    `json:"wicketNumber"`
	RunsAtFall        int    `json:"runsAtFall"`
	OverAtFall        string `json:"overAtFall"`
	DismissedPlayerID string `json:"dismissedPlayerId"`
}

// DeliverySummary is a compact view of a recent delivery.
type DeliverySummary struct {
	OverNumber       int       `json:"overNumber"`
	BallNumberInOver int       `json:"ballNumberInOver"`
	Runs             int       `json:"runs"`
	ExtraType        ExtraType `json:"extraType"`
	IsWicket         bool      `json:"isWicket"`
	Label            string    `json:"label"`
}

// CloseReason explains why an innings ended.
type CloseReason string

const (
	CloseAllOut         CloseReason = "all-out"
	CloseOversExhausted CloseReason = "overs-exhausted"
	CloseTargetReached  CloseReason = "target-reached"
	CloseDeclared       CloseReason = "declared"
)

// InningsState is derived by folding an innings' log; it is never edited directly.
type InningsState struct {
	Number                int               `json:"inningsNumber"`
	BattingTeamID         string            `json:"battingTeamId"`
	BowlingTeamID         string            `json:"bowlingTeamId"`
	MaxOvers              int               `json:"maxOvers"`
	TotalRuns             int               `json:"totalRuns"`
	TotalWickets          int               `json:"totalWickets"`
	LegalBallsBowled      int               `json:"legalBallsBowled"`
	Overs                 string            `json:"overs"`
	Extras                Extras            `json:"extras"`
	OverNumber            int               `json:"overNumber"`
	CurrentOverLegalBalls int               `json:"currentOverLegalBalls"`
	StrikerID             string            `json:"strikerId"`
	NonStrikerID          string            `json:"nonStrikerId"`
	CurrentBowlerID       string            `json:"currentBowlerId"`
	PreviousOverBowlerID  string            `json:"previousOverBowlerId,omitempty"`
	AwaitingNextBatter    bool              `json:"awaitingNextBatter"`
	AwaitingBowler        bool              `json:"awaitingBowler"`
	FallOfWickets         []FallOfWicket    `json:"fallOfWickets"`
	BattersUsed           []string          `json:"battersUsed"`
	RecentBalls           []DeliverySummary `json:"recentBalls"`
	BallsApplied          int               `json:"ballsApplied"`
	Closed                bool              `json:"closed"`
	CloseReason           CloseReason       `json:"closeReason,omitempty"`
}

// Clone returns a deep copy so later appends never alias a published snapshot.
func (s InningsState) Clone() InningsState {
	s.FallOfWickets = append([]FallOfWicket{}, s.FallOfWickets...)
	s.BattersUsed = append([]string{}, s.BattersUsed...)
	s.RecentBalls = append([]DeliverySummary{}, s.RecentBalls...)
	return s
}

// BallsRemaining is the number of legal deliveries left in the innings.
func (s InningsState) BallsRemaining() int {
	left := s.MaxOvers*6 - s.LegalBallsBowled
	if left < 0 {
		return 0
	}
	return left
}

// HasBatted reports whether the player has already come to the crease.
func (s InningsState) HasBatted(playerID string) bool {
	for _, id := range s.BattersUsed {
		if id == playerID {
			return true
		}
	}
	return false
}

// BattingEntry is one row of a batting scorecard.
type BattingEntry struct {
	PlayerID   string     `json:"playerId"`
	Runs       int        `json:"runs"`
	Balls      int        `json:"balls"`
	Fours      int        `json:"fours"`
	Sixes      int        `json:"sixes"`
	StrikeRate float64    `json:"strikeRate"`
	Out        bool       `json:"out"`
	WicketMode WicketMode `json:"wicketMode,omitempty"`
	BowlerID   string     `json:"bowlerId,omitempty"`
	FielderID  string     `json:"fielderId,omitempty"`
}

// BowlingEntry is one row of a bowling scorecard.
type BowlingEntry struct {
	PlayerID     string `json:"playerId"`
	Overs        string `json:"overs"`
	LegalBalls   int    `json:"legalBalls"`
	Maidens      int    `json:"maidens"`
	RunsConceded int    `json:"runsConceded"`
	Wickets      int    `json:"wickets"`
	// Wides and NoBalls count deliveries; their runs are in RunsConceded.
	Wides   int     `json:"wides"`
	NoBalls int     `json:"noBalls"`
	Economy float64 `json:"economy"`
}

// InningsScorecard is the batting and bowling breakdown of one innings.
type InningsScorecard struct {
	InningsNumber int            `json:"inningsNumber"`
	BattingTeamID string         `json:"battingTeamId"`
	BowlingTeamID string         `json:"bowlingTeamId"`
	Batting       []BattingEntry `json:"batting"`
	Bowling       []BowlingEntry `json:"bowling"`
	Extras        Extras         `json:"extras"`
	Total         int            `json:"total"`
	Wickets       int            `json:"wickets"`
	Overs         string         `json:"overs"`
	FallOfWickets []FallOfWicket `json:"fallOfWickets"`
}
