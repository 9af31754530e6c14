package matches

import (
	"fmt"
	"regexp"
	"time"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
)

// Format names the standard limited-overs formats.
type Format string

const (
	FormatT20       Format = "T20"
	FormatODI       Format = "ODI"
	FormatSixOvers  Format = "6-overs"
	FormatFourOvers Format = "4-overs"
	FormatCustom    Format = "custom"
)

// MaxOvers returns the overs per innings for a standard format.
func (f Format) MaxOvers() (int, bool) {
	switch f {
	case FormatT20:
		return 20, true
	case FormatODI:
		return 50, true
	case FormatSixOvers:
		return 6, true
	case FormatFourOvers:
		return 4, true
	}
	return 0, false
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether id is usable as a match id. Ids double as file and
// key names, so only letters, digits, dash and underscore are allowed.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Status mirrors the lifecycle shown to match browsers.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
)

// Phase is the finer-grained position of a match in its lifecycle.
type Phase string

const (
	PhaseAwaitingFirstInnings Phase = "awaiting-first-innings"
	PhaseInProgress           Phase = "in-progress"
	PhaseInningsBreak         Phase = "innings-break"
	PhaseCompleted            Phase = "completed"
)

// Team is one side of a match. An empty roster disables membership checks.
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Players []string `json:"players,omitempty"`
}

// HasPlayer reports whether the player belongs to the team's roster.
func (t Team) HasPlayer(playerID string) bool {
	if len(t.Players) == 0 {
		return true
	}
	for _, p := range t.Players {
		if p == playerID {
			return true
		}
	}
	return false
}

// Setup describes a match before any ball is bowled.
type Setup struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Venue              string    `json:"venue,omitempty"`
	Format             Format    `json:"format"`
	MaxOvers           int       `json:"maxOvers"`
	Team1              Team      `json:"team1"`
	Team2              Team      `json:"team2"`
	BattingFirstTeamID string    `json:"battingFirstTeamId"`
	ScheduledAt        time.Time `json:"scheduledAt,omitempty"`
}

// Team returns the team with the given id.
func (s Setup) Team(id string) (Team, bool) {
	switch id {
	case s.Team1.ID:
		return s.Team1, true
	case s.Team2.ID:
		return s.Team2, true
	}
	return Team{}, false
}

// Opponent returns the other side.
func (s Setup) Opponent(id string) Team {
	if id == s.Team1.ID {
		return s.Team2
	}
	return s.Team1
}

// MarginType is the unit of a winning margin.
type MarginType string

const (
	MarginRuns    MarginType = "runs"
	MarginWickets MarginType = "wickets"
)

// Result is set once the match is completed.
type Result struct {
	WinnerTeamID string     `json:"winnerTeamId,omitempty"`
	Margin       int        `json:"margin,omitempty"`
	MarginType   MarginType `json:"marginType,omitempty"`
	Tie          bool       `json:"tie"`
	Summary      string     `json:"summary"`
}

// MatchState is the read-only snapshot published after every accepted log entry.
type MatchState struct {
	Setup
	Status       Status                 `json:"status"`
	Phase        Phase                  `json:"phase"`
	Innings      []scoring.InningsState `json:"innings"`
	Target       int                    `json:"target,omitempty"`
	Result       *Result                `json:"result,omitempty"`
	Version      int64                  `json:"version"`
	LastSequence int64                  `json:"lastSequence"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// Clone deep-copies the snapshot.
func (m MatchState) Clone() MatchState {
	innings := make([]scoring.InningsState, len(m.Innings))
	for i, in := range m.Innings {
		innings[i] = in.Clone()
	}
	m.Innings = innings
	m.Team1.Players = append([]string(nil), m.Team1.Players...)
	m.Team2.Players = append([]string(nil), m.Team2.Players...)
	if m.Result != nil {
		r := *m.Result
		m.Result = &r
	}
	return m
}

// CurrentInnings returns the most recently started innings.
func (m MatchState) CurrentInnings() (scoring.InningsState, bool) {
	if len(m.Innings) == 0 {
		return scoring.InningsState{}, false
	}
	return m.Innings[len(m.Innings)-1], true
}

// InningsByNumber returns innings 1 or 2 when it has started.
func (m MatchState) InningsByNumber(number int) (scoring.InningsState, bool) {
	if number < 1 || number > len(m.Innings) {
		return scoring.InningsState{}, false
	}
	return m.Innings[number-1], true
}

// Scorecard is the per-innings breakdown of a match.
type Scorecard struct {
	MatchID string                     `json:"matchId"`
	Innings []scoring.InningsScorecard `json:"innings"`
}

// Summary is the list view of a match.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Format    Format    `json:"format"`
	Status    Status    `json:"status"`
	Team1     string    `json:"team1"`
	Team2     string    `json:"team2"`
	Score     []string  `json:"score"`
	Result    string    `json:"result,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSummary builds the list view from a snapshot.
func NewSummary(state MatchState) Summary {
	score := make([]string, 0, len(state.Innings))
	for _, in := range state.Innings {
		score = append(score, scoreLine(in))
	}
	s := Summary{
		ID:        state.ID,
		Title:     state.Title,
		Format:    state.Format,
		Status:    state.Status,
		Team1:     state.Team1.Name,
		Team2:     state.Team2.Name,
		Score:     score,
		UpdatedAt: state.UpdatedAt,
	}
	if state.Result != nil {
		s.Result = state.Result.Summary
	}
	return s
}

func scoreLine(in scoring.InningsState) string {
	return fmt.Sprintf("%s %d/%d (%s)", in.BattingTeamID, in.TotalRuns, in.TotalWickets, in.Overs)
}
