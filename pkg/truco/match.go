package truco

import (
	"encoding/json"
	"fmt"
	"sort"

	"truco-server/pkg/deck"
	"truco-server/pkg/rules"
)

// Team is one of the two sides of a match
type Team string

// Team constants
// Tie is only used as the result of a trick.
const (
	TeamA Team = "A"
	TeamB Team = "B"
	Tie   Team = "tie"
)

// Opponent returns the other team
func (t Team) Opponent() Team {
	if t == TeamA {
		return TeamB
	}

	return TeamA
}

// State is the state of the match state machine
type State string

// State constants
const (
	StateReady    State = "READY"
	StatePlaying  State = "PLAYING"
	StateHandEnd  State = "HAND_END"
	StateMatchEnd State = "MATCH_END"
)

// CallType is one of the three call families
type CallType string

// CallType constants
const (
	CallTruco  CallType = "TRUCO"
	CallEnvido CallType = "ENVIDO"
	CallFlor   CallType = "FLOR"
)

// RosterEntry is a seated player as provided by the room service
type RosterEntry struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Team      Team   `json:"team"`
	SeatIndex int    `json:"seatIndex"`
}

// Player is a seat in the match
type Player struct {
	PlayerID    string    `json:"playerId"`
	Name        string    `json:"name"`
	Team        Team      `json:"team"`
	SeatIndex   int       `json:"seatIndex"`
	HandCards   deck.Hand `json:"handCards"`
	PlayedCards deck.Hand `json:"playedCards"`
	EnvidoValue int       `json:"envidoValue"`
	FlorValue   int       `json:"florValue"`
	HasFlor     bool      `json:"hasFlor"`
}

// Play is a card played into a trick
type Play struct {
	PlayerID string    `json:"playerId"`
	Seat     int       `json:"seat"`
	Card     deck.Card `json:"card"`
}

// Trick is one of the three card-comparison rounds of a hand
// Winner is empty until the trick resolves.
type Trick struct {
	Plays  []Play `json:"plays"`
	Winner Team   `json:"winnerTeam,omitempty"`
}

// Hand is a single deal
type Hand struct {
	Number            int     `json:"number"`
	ManoPlayerID      string  `json:"manoPlayerId"`
	CurrentTrickIndex int     `json:"currentTrickIndex"`
	Tricks            []Trick `json:"tricks"`
	TurnPlayerID      string  `json:"turnPlayerId"`
	CanPlayCard       bool    `json:"canPlayCard"`
	Value             int     `json:"value"`
	Winner            Team    `json:"winnerTeam,omitempty"`
	EndReason         string  `json:"endReason,omitempty"`
}

// firstCardPlayed returns true once any card of the hand has been played
func (h *Hand) firstCardPlayed() bool {
	return h.CurrentTrickIndex > 0 || len(h.Tricks[0].Plays) > 0
}

// Score is the running score of the match
type Score struct {
	TeamA  int `json:"teamA"`
	TeamB  int `json:"teamB"`
	Target int `json:"target"`
}

// Of returns the score of a team
func (s Score) Of(team Team) int {
	if team == TeamA {
		return s.TeamA
	}

	return s.TeamB
}

func (s *Score) add(team Team, points int) {
	if team == TeamA {
		s.TeamA += points
	} else {
		s.TeamB += points
	}
}

// TrucoState is the truco negotiation of the current hand
// Level is the accepted level; RaiseTeam, once set, is the only team allowed to raise.
type TrucoState struct {
	Level     int          `json:"level"`
	Calls     []rules.Call `json:"calls"`
	RaiseTeam Team         `json:"raiseTeam,omitempty"`
}

// EnvidoState is the envido negotiation of the current hand
type EnvidoState struct {
	Calls    []rules.Call `json:"calls"`
	Resolved bool         `json:"resolved"`
	Accepted bool         `json:"accepted"`
	Winner   Team         `json:"winnerTeam,omitempty"`
	Points   int          `json:"points"`
}

// FlorState is the flor negotiation of the current hand
type FlorState struct {
	Calls    []rules.Call `json:"calls"`
	Declared []bool       `json:"declared"`
	Resolved bool         `json:"resolved"`
	Accepted bool         `json:"accepted"`
	Winner   Team         `json:"winnerTeam,omitempty"`
	Points   int          `json:"points"`
}

// PendingCall is the single call awaiting a response
type PendingCall struct {
	Type             CallType     `json:"type"`
	Subtype          rules.Call   `json:"subtype"`
	FromPlayerID     string       `json:"fromPlayerId"`
	ToPlayerID       string       `json:"toPlayerId"`
	ChainState       []rules.Call `json:"chainState"`
	AllowedResponses []string     `json:"allowedResponses"`
}

// Match is the aggregate root of a game of truco
// It is only ever changed by Engine.Apply.
type Match struct {
	ID          string       `json:"id"`
	Options     Options      `json:"options"`
	State       State        `json:"state"`
	Players     []*Player    `json:"players"`
	ManoIndex   int          `json:"manoIndex"`
	HandCount   int          `json:"handCount"`
	Hand        *Hand        `json:"hand"`
	Score       Score        `json:"score"`
	Truco       TrucoState   `json:"truco"`
	Envido      EnvidoState  `json:"envido"`
	Flor        FlorState    `json:"flor"`
	PendingCall *PendingCall `json:"pendingCall"`
	Log         []Event      `json:"log"`
	WinnerTeam  Team         `json:"winnerTeam,omitempty"`
	IsFinished  bool         `json:"isFinished"`
}

// NewMatch creates a match from the roster
// Seats must be numbered 0..n-1 with the teams alternating around the table.
func NewMatch(id string, roster []RosterEntry, opts Options) (*Match, error) {
	if n := len(roster); n != 2 && n != 4 && n != 6 {
		return nil, RosterError(fmt.Sprintf("expected 2, 4 or 6 players, got %d", n))
	}

	if opts.Target < 1 {
		return nil, RosterError(fmt.Sprintf("target must be positive, got %d", opts.Target))
	}

	seats := make([]RosterEntry, len(roster))
	copy(seats, roster)
	sort.Slice(seats, func(i, j int) bool {
		return seats[i].SeatIndex < seats[j].SeatIndex
	})

	ids := make(map[string]bool)
	players := make([]*Player, len(seats))
	for i, r := range seats {
		if r.PlayerID == "" {
			return nil, RosterError("player id is required")
		}

		if ids[r.PlayerID] {
			return nil, RosterError(fmt.Sprintf("player %s is seated twice", r.PlayerID))
		}
		ids[r.PlayerID] = true

		if r.SeatIndex != i {
			return nil, RosterError(fmt.Sprintf("seat %d is missing", i))
		}

		if r.Team != TeamA && r.Team != TeamB {
			return nil, RosterError(fmt.Sprintf("unknown team %q", r.Team))
		}

		if i > 0 && seats[i-1].Team == r.Team {
			return nil, RosterError("teams must alternate seats")
		}

		players[i] = &Player{
			PlayerID:    r.PlayerID,
			Name:        r.Name,
			Team:        r.Team,
			SeatIndex:   i,
			HandCards:   deck.Hand{},
			PlayedCards: deck.Hand{},
		}
	}

	return &Match{
		ID:      id,
		Options: opts,
		State:   StateReady,
		Players: players,
		Score:   Score{Target: opts.Target},
		Log:     []Event{},
	}, nil
}

// LoadMatch restores a match from a snapshot
func LoadMatch(data []byte) (*Match, error) {
	var m Match
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("could not decode match snapshot: %w", err)
	}

	if len(m.Players) == 0 {
		return nil, RosterError("snapshot has no players")
	}

	return &m, nil
}

// Snapshot returns the serialized match
func (m *Match) Snapshot() ([]byte, error) {
	return json.Marshal(m)
}

// Seat returns the seat of the player
func (m *Match) Seat(playerID string) (int, error) {
	for _, p := range m.Players {
		if p.PlayerID == playerID {
			return p.SeatIndex, nil
		}
	}

	return -1, fmt.Errorf("%w: %s", ErrPlayerNotSeated, playerID)
}

// Player returns the player with the given id, or nil
func (m *Match) Player(playerID string) *Player {
	seat, err := m.Seat(playerID)
	if err != nil {
		return nil
	}

	return m.Players[seat]
}

// AwaitingPlayerID returns the player the match is waiting on: the respondent of a pending
// call, otherwise the player in turn. It is empty when no hand is in progress.
func (m *Match) AwaitingPlayerID() string {
	if m.State != StatePlaying || m.Hand == nil {
		return ""
	}

	if m.PendingCall != nil {
		return m.PendingCall.ToPlayerID
	}

	return m.Hand.TurnPlayerID
}

func (m *Match) nextSeat(seat int) int {
	return (seat + 1) % len(m.Players)
}

func (m *Match) manoTeam() Team {
	return m.Players[m.ManoIndex].Team
}

// Clone returns a deep copy of the match
func (m *Match) Clone() *Match {
	c := *m

	c.Players = make([]*Player, len(m.Players))
	for i, p := range m.Players {
		pc := *p
		pc.HandCards = p.HandCards.Clone()
		pc.PlayedCards = p.PlayedCards.Clone()
		c.Players[i] = &pc
	}

	if m.Hand != nil {
		h := *m.Hand
		if m.Hand.Tricks != nil {
			h.Tricks = make([]Trick, len(m.Hand.Tricks))
			for i, t := range m.Hand.Tricks {
				h.Tricks[i] = Trick{Plays: clonePlays(t.Plays), Winner: t.Winner}
			}
		}
		c.Hand = &h
	}

	c.Truco.Calls = cloneCalls(m.Truco.Calls)
	c.Envido.Calls = cloneCalls(m.Envido.Calls)
	c.Flor.Calls = cloneCalls(m.Flor.Calls)
	if m.Flor.Declared != nil {
		c.Flor.Declared = make([]bool, len(m.Flor.Declared))
		copy(c.Flor.Declared, m.Flor.Declared)
	}

	if m.PendingCall != nil {
		pc := *m.PendingCall
		pc.ChainState = cloneCalls(m.PendingCall.ChainState)
		if m.PendingCall.AllowedResponses != nil {
			pc.AllowedResponses = make([]string, len(m.PendingCall.AllowedResponses))
			copy(pc.AllowedResponses, m.PendingCall.AllowedResponses)
		}
		c.PendingCall = &pc
	}

	// events are never modified once appended
	if m.Log != nil {
		c.Log = make([]Event, len(m.Log))
		copy(c.Log, m.Log)
	}

	return &c
}

func clonePlays(plays []Play) []Play {
	if plays == nil {
		return nil
	}

	c := make([]Play, len(plays))
	copy(c, plays)
	return c
}

func cloneCalls(calls []rules.Call) []rules.Call {
	if calls == nil {
		return nil
	}

	c := make([]rules.Call, len(calls))
	copy(c, calls)
	return c
}
