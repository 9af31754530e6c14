package scoring

import (
	"errors"
	"fmt"
	"time"

	"github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	domainscoring "github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
)

// Match folds a match's log into its state. Values are immutable: every
// operation returns a new *Match and leaves the receiver untouched, so a
// failed operation never leaves partial state behind.
type Match struct {
	state   matches.MatchState
	entries []matches.Entry
}

// Receipt describes the outcome of a ball submission.
type Receipt struct {
	Sequence  int64                      `json:"sequence"`
	Position  int64                      `json:"position"`
	Innings   domainscoring.InningsState `json:"innings"`
	Duplicate bool                       `json:"duplicate"`
}

// NewMatch opens the log of a new match.
func NewMatch(setup matches.Setup, at time.Time) (*Match, error) {
	return (&Match{}).apply(matches.Entry{
		MatchID:    setup.ID,
		Position:   1,
		Kind:       matches.EntryMatchCreated,
		RecordedAt: at,
		Setup:      &setup,
	})
}

// Replay rebuilds a match by folding its full log from empty state.
func Replay(entries []matches.Entry) (*Match, error) {
	if len(entries) == 0 {
		return nil, errors.New("replay: empty log")
	}
	m := &Match{}
	for _, e := range entries {
		next, err := m.apply(e)
		if err != nil {
			return nil, fmt.Errorf("replay position %d: %w", e.Position, err)
		}
		m = next
	}
	return m, nil
}

// ID returns the match id.
func (m *Match) ID() string {
	return m.state.ID
}

// State returns a copy of the current match state.
func (m *Match) State() matches.MatchState {
	return m.state.Clone()
}

// CurrentStatus reports whether the match is upcoming, live or completed.
func (m *Match) CurrentStatus() matches.Status {
	return m.state.Status
}

// Entries returns a copy of the log.
func (m *Match) Entries() []matches.Entry {
	return append([]matches.Entry(nil), m.entries...)
}

// LastEntry returns the most recently applied log entry.
func (m *Match) LastEntry() matches.Entry {
	return m.entries[len(m.entries)-1]
}

// StartInnings opens innings 1 or 2 with the given opening pair and bowler.
func (m *Match) StartInnings(start matches.InningsStart, at time.Time) (*Match, error) {
	return m.apply(m.nextEntry(matches.EntryInningsStarted, at, func(e *matches.Entry) {
		e.Start = &start
	}))
}

// SubmitBall applies the delivery with the given sequence number. Resubmitting
// an accepted (sequence, delivery) pair returns the state that delivery produced
// and leaves the match unchanged.
func (m *Match) SubmitBall(sequence int64, ev domainscoring.BallEvent, at time.Time) (*Match, Receipt, error) {
	ev = ev.Normalize()
	if ev.MatchID == "" {
		ev.MatchID = m.state.ID
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = at
	}

	if sequence >= 1 && sequence <= m.state.LastSequence {
		return m.resubmission(sequence, ev)
	}
	// An unnumbered delivery takes the next slot in its innings.
	if ev.BallNumberInOver == 0 {
		if cur, ok := m.state.InningsByNumber(ev.InningsNumber); ok {
			ev.OverNumber = cur.OverNumber
			ev.BallNumberInOver = cur.CurrentOverLegalBalls + 1
		}
	}

	next, err := m.apply(m.nextEntry(matches.EntryBall, at, func(e *matches.Entry) {
		e.Sequence = sequence
		e.Ball = &ev
	}))
	if err != nil {
		return m, Receipt{}, err
	}
	innings, _ := next.state.InningsByNumber(ev.InningsNumber)
	return next, Receipt{
		Sequence: sequence,
		Position: next.state.Version,
		Innings:  innings.Clone(),
	}, nil
}

// SubstituteBatter fills the end vacated by the last wicket.
func (m *Match) SubstituteBatter(batterID string, at time.Time) (*Match, error) {
	return m.apply(m.nextEntry(matches.EntryBatterSubstituted, at, func(e *matches.Entry) {
		e.Substitution = &matches.Substitution{BatterID: batterID}
	}))
}

// Declare closes the current innings.
func (m *Match) Declare(inningsNumber int, at time.Time) (*Match, error) {
	return m.apply(m.nextEntry(matches.EntryInningsDeclared, at, func(e *matches.Entry) {
		e.Declaration = &matches.Declaration{InningsNumber: inningsNumber}
	}))
}

func (m *Match) nextEntry(kind matches.EntryKind, at time.Time, fill func(*matches.Entry)) matches.Entry {
	e := matches.Entry{
		MatchID:    m.state.ID,
		Position:   int64(len(m.entries)) + 1,
		Kind:       kind,
		RecordedAt: at,
	}
	fill(&e)
	return e
}

func (m *Match) resubmission(sequence int64, ev domainscoring.BallEvent) (*Match, Receipt, error) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.Kind != matches.EntryBall || e.Sequence != sequence {
			continue
		}
		candidate := ev
		if candidate.BallNumberInOver == 0 {
			candidate.OverNumber = e.Ball.OverNumber
			candidate.BallNumberInOver = e.Ball.BallNumberInOver
		}
		if !e.Ball.SameDelivery(candidate) {
			break
		}
		prior, err := Replay(m.entries[:i+1])
		if err != nil {
			return m, Receipt{}, err
		}
		innings, _ := prior.state.InningsByNumber(e.Ball.InningsNumber)
		return m, Receipt{
			Sequence:  sequence,
			Position:  e.Position,
			Innings:   innings.Clone(),
			Duplicate: true,
		}, nil
	}
	return m, Receipt{}, &SequenceConflictError{
		MatchID:  m.state.ID,
		Expected: m.state.LastSequence + 1,
		Got:      sequence,
	}
}

// apply is the single fold step shared by live operations and replay.
func (m *Match) apply(e matches.Entry) (*Match, error) {
	if want := int64(len(m.entries)) + 1; e.Position != want {
		return nil, fmt.Errorf("log position %d out of order (expected %d)", e.Position, want)
	}
	if len(m.entries) == 0 && e.Kind != matches.EntryMatchCreated {
		return nil, fmt.Errorf("log must open with %s, got %s", matches.EntryMatchCreated, e.Kind)
	}
	if len(m.entries) > 0 && e.MatchID != m.state.ID {
		return nil, fmt.Errorf("entry for match %q applied to match %q", e.MatchID, m.state.ID)
	}

	state := m.state.Clone()
	var err error
	switch e.Kind {
	case matches.EntryMatchCreated:
		if len(m.entries) > 0 || e.Setup == nil {
			return nil, invalid("setup", "match can only be created once")
		}
		state, err = createMatch(*e.Setup)
	case matches.EntryInningsStarted:
		if e.Start == nil {
			return nil, invalid("start", "required")
		}
		err = startInnings(&state, *e.Start)
	case matches.EntryBall:
		if e.Ball == nil {
			return nil, invalid("ball", "required")
		}
		err = applyBall(&state, e.Sequence, *e.Ball)
	case matches.EntryBatterSubstituted:
		if e.Substitution == nil {
			return nil, invalid("substitution", "required")
		}
		err = substitute(&state, e.Substitution.BatterID)
	case matches.EntryInningsDeclared:
		if e.Declaration == nil {
			return nil, invalid("declaration", "required")
		}
		err = declare(&state, e.Declaration.InningsNumber)
	default:
		return nil, fmt.Errorf("unknown log entry kind %q", e.Kind)
	}
	if err != nil {
		return nil, err
	}

	state.Version = e.Position
	state.UpdatedAt = e.RecordedAt
	return &Match{
		state:   state,
		entries: append(m.entries[:len(m.entries):len(m.entries)], e),
	}, nil
}

func createMatch(setup matches.Setup) (matches.MatchState, error) {
	switch {
	case setup.ID == "":
		return matches.MatchState{}, invalid("id", "required")
	case !matches.ValidID(setup.ID):
		return matches.MatchState{}, invalid("id", "%q may only contain letters, digits, dash and underscore", setup.ID)
	case setup.Team1.ID == "":
		return matches.MatchState{}, invalid("team1.id", "required")
	case setup.Team2.ID == "":
		return matches.MatchState{}, invalid("team2.id", "required")
	case setup.Team1.ID == setup.Team2.ID:
		return matches.MatchState{}, invalid("team2.id", "teams must differ")
	}

	if setup.MaxOvers <= 0 {
		overs, ok := setup.Format.MaxOvers()
		if !ok {
			return matches.MatchState{}, invalid("maxOvers", "required for format %q", setup.Format)
		}
		setup.MaxOvers = overs
	}
	if setup.Format == "" {
		setup.Format = matches.FormatCustom
	}
	if setup.BattingFirstTeamID == "" {
		setup.BattingFirstTeamID = setup.Team1.ID
	}
	if _, ok := setup.Team(setup.BattingFirstTeamID); !ok {
		return matches.MatchState{}, invalid("battingFirstTeamId", "%q is not playing", setup.BattingFirstTeamID)
	}

	return matches.MatchState{
		Setup:   setup,
		Status:  matches.StatusUpcoming,
		Phase:   matches.PhaseAwaitingFirstInnings,
		Innings: []domainscoring.InningsState{},
	}, nil
}

func startInnings(state *matches.MatchState, start matches.InningsStart) error {
	if state.Status == matches.StatusCompleted {
		return &MatchCompletedError{MatchID: state.ID}
	}
	if want := len(state.Innings) + 1; start.InningsNumber != want {
		if start.InningsNumber >= 1 && start.InningsNumber < want {
			return invalid("inningsNumber", "innings %d has already started", start.InningsNumber)
		}
		return invalid("inningsNumber", "expected innings %d, got %d", want, start.InningsNumber)
	}
	if cur, ok := state.CurrentInnings(); ok && !cur.Closed {
		return invalid("inningsNumber", "innings %d is still in progress", cur.Number)
	}

	batting, _ := state.Team(state.BattingFirstTeamID)
	if start.InningsNumber == 2 {
		batting = state.Opponent(state.BattingFirstTeamID)
	}
	bowling := state.Opponent(batting.ID)
	if start.StrikerID != "" && !batting.HasPlayer(start.StrikerID) {
		return invalid("strikerId", "%q is not in %s", start.StrikerID, batting.ID)
	}
	if start.NonStrikerID != "" && !batting.HasPlayer(start.NonStrikerID) {
		return invalid("nonStrikerId", "%q is not in %s", start.NonStrikerID, batting.ID)
	}
	if start.BowlerID != "" && !bowling.HasPlayer(start.BowlerID) {
		return invalid("bowlerId", "%q is not in %s", start.BowlerID, bowling.ID)
	}

	innings, err := NewInnings(start.InningsNumber, batting.ID, bowling.ID, state.MaxOvers, start.StrikerID, start.NonStrikerID, start.BowlerID)
	if err != nil {
		return err
	}
	state.Innings = append(state.Innings, innings)
	state.Status = matches.StatusLive
	state.Phase = matches.PhaseInProgress
	return nil
}

func applyBall(state *matches.MatchState, sequence int64, ev domainscoring.BallEvent) error {
	if state.Status == matches.StatusCompleted {
		return &MatchCompletedError{MatchID: state.ID}
	}
	if want := state.LastSequence + 1; sequence != want {
		return &SequenceConflictError{MatchID: state.ID, Expected: want, Got: sequence}
	}
	if ev.MatchID != state.ID {
		return invalid("matchId", "expected %q, got %q", state.ID, ev.MatchID)
	}

	cur, ok := state.CurrentInnings()
	if !ok {
		return invalid("inningsNumber", "no innings has started")
	}
	if ev.InningsNumber < cur.Number {
		prior, _ := state.InningsByNumber(ev.InningsNumber)
		return &InningsClosedError{InningsNumber: ev.InningsNumber, Reason: prior.CloseReason}
	}
	if ev.InningsNumber > cur.Number {
		return invalid("inningsNumber", "innings %d has not started", ev.InningsNumber)
	}
	if ev.NewBowler {
		bowling, _ := state.Team(cur.BowlingTeamID)
		if !bowling.HasPlayer(ev.BowlerID) {
			return invalid("bowlerId", "%q is not in %s", ev.BowlerID, bowling.ID)
		}
	}

	next, err := Apply(cur, ev)
	if err != nil {
		return err
	}
	state.Innings[len(state.Innings)-1] = next
	state.LastSequence = sequence
	settle(state)
	return nil
}

func substitute(state *matches.MatchState, batterID string) error {
	if state.Status == matches.StatusCompleted {
		return &MatchCompletedError{MatchID: state.ID}
	}
	cur, ok := state.CurrentInnings()
	if !ok {
		return invalid("batterId", "no innings has started")
	}
	batting, _ := state.Team(cur.BattingTeamID)
	if !batting.HasPlayer(batterID) {
		return invalid("batterId", "%q is not in %s", batterID, batting.ID)
	}
	next, err := SubstituteBatter(cur, batterID)
	if err != nil {
		return err
	}
	state.Innings[len(state.Innings)-1] = next
	return nil
}

func declare(state *matches.MatchState, inningsNumber int) error {
	if state.Status == matches.StatusCompleted {
		return &MatchCompletedError{MatchID: state.ID}
	}
	cur, ok := state.CurrentInnings()
	if !ok {
		return invalid("inningsNumber", "no innings has started")
	}
	if inningsNumber != cur.Number {
		return invalid("inningsNumber", "innings %d is not in progress", inningsNumber)
	}
	next, err := Declare(cur)
	if err != nil {
		return err
	}
	state.Innings[len(state.Innings)-1] = next
	settle(state)
	return nil
}

// settle moves the match between phases and decides the result once the
// chase is won or the second innings ends.
func settle(state *matches.MatchState) {
	cur, _ := state.CurrentInnings()
	if cur.Number == 1 {
		if cur.Closed {
			state.Target = cur.TotalRuns + 1
			state.Phase = matches.PhaseInningsBreak
		}
		return
	}

	first, _ := state.InningsByNumber(1)
	switch {
	case cur.TotalRuns > first.TotalRuns:
		closeInnings(&cur, domainscoring.CloseTargetReached)
		state.Innings[1] = cur
		margin := MaxWickets - cur.TotalWickets
		state.Result = &matches.Result{
			WinnerTeamID: cur.BattingTeamID,
			Margin:       margin,
			MarginType:   matches.MarginWickets,
			Summary:      fmt.Sprintf("%s won by %d %s", teamName(state, cur.BattingTeamID), margin, plural(margin, "wicket")),
		}
	case !cur.Closed:
		return
	case cur.TotalRuns == first.TotalRuns:
		state.Result = &matches.Result{Tie: true, Summary: "Match tied"}
	default:
		margin := first.TotalRuns - cur.TotalRuns
		state.Result = &matches.Result{
			WinnerTeamID: first.BattingTeamID,
			Margin:       margin,
			MarginType:   matches.MarginRuns,
			Summary:      fmt.Sprintf("%s won by %d %s", teamName(state, first.BattingTeamID), margin, plural(margin, "run")),
		}
	}
	state.Status = matches.StatusCompleted
	state.Phase = matches.PhaseCompleted
}

func teamName(state *matches.MatchState, id string) string {
	if team, ok := state.Team(id); ok && team.Name != "" {
		return team.Name
	}
	return id
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
