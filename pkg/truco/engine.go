package truco

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"truco-server/internal/rng"
	"truco-server/pkg/deck"
	"truco-server/pkg/rules"
)

// Engine applies actions to matches
// It holds no match state; the same engine may serve any number of matches.
type Engine struct {
	logger logrus.FieldLogger
	gen    rng.Generator
	clock  func() time.Time
}

// EngineOption configures an Engine
type EngineOption func(e *Engine)

// WithGenerator sets the random source used to shuffle
func WithGenerator(gen rng.Generator) EngineOption {
	return func(e *Engine) {
		e.gen = gen
	}
}

// WithClock sets the clock used to timestamp events
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// NewEngine returns an engine that shuffles with crypto/rand and timestamps with the wall clock
func NewEngine(logger logrus.FieldLogger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	e := &Engine{
		logger: logger,
		gen:    rng.Crypto{},
		clock:  time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Apply applies the action to the match and returns the resulting match
// The given match is never modified. On error the returned match is nil.
func (e *Engine) Apply(m *Match, a Action) (*Match, error) {
	if m.IsFinished {
		return nil, ErrMatchAlreadyFinished
	}

	if a.PlayerID != "" || a.Type != ActionDealHand {
		if _, err := m.Seat(a.PlayerID); err != nil {
			return nil, err
		}
	}

	next := m.Clone()

	var err error
	switch a.Type {
	case ActionDealHand:
		err = e.dealHand(next, a)
	case ActionPlayCard:
		err = e.playCard(next, a)
	case ActionCallTruco:
		err = e.callTruco(next, a)
	case ActionCallEnvido:
		err = e.callEnvido(next, a)
	case ActionCallFlor:
		err = e.callFlor(next, a)
	case ActionRespond:
		err = e.respond(next, a)
	case ActionFold:
		err = e.fold(next, a)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}

	log := e.logger.WithFields(logrus.Fields{
		"match":  m.ID,
		"action": a.Type,
		"player": a.PlayerID,
	})

	if err != nil {
		log.WithError(err).Debug("action rejected")
		return nil, err
	}

	log.WithField("state", next.State).Debug("action applied")
	return next, nil
}

func (e *Engine) now() time.Time {
	return e.clock().UTC()
}

func (e *Engine) event(m *Match, eventType EventType, playerID string, data map[string]interface{}) {
	m.appendEvent(e.now(), eventType, playerID, data)
}

func requirePlaying(m *Match) error {
	if m.State != StatePlaying || m.Hand == nil {
		return ErrNoActiveHand
	}

	return nil
}

func (e *Engine) dealHand(m *Match, a Action) error {
	if m.State != StateReady && m.State != StateHandEnd {
		return ErrHandInProgress
	}

	if m.HandCount > 0 {
		m.ManoIndex = m.nextSeat(m.ManoIndex)
	}

	cards := deck.Shuffle(deck.BuildDeck(), e.gen)
	hands, _, err := deck.Deal(cards, len(m.Players))
	if err != nil {
		return err
	}

	for i, p := range m.Players {
		p.HandCards = deck.Hand(hands[i])
		p.PlayedCards = deck.Hand{}
		p.EnvidoValue = rules.EnvidoValue(p.HandCards)
		p.FlorValue = rules.FlorValue(p.HandCards)
		p.HasFlor = rules.HasFlor(p.HandCards)
	}

	m.HandCount++
	mano := m.Players[m.ManoIndex].PlayerID
	m.Hand = &Hand{
		Number:       m.HandCount,
		ManoPlayerID: mano,
		Tricks:       []Trick{{Plays: []Play{}}, {Plays: []Play{}}, {Plays: []Play{}}},
		TurnPlayerID: mano,
		CanPlayCard:  true,
		Value:        rules.TrucoHandValue(0),
	}

	m.Truco = TrucoState{Calls: []rules.Call{}}
	m.Envido = EnvidoState{Calls: []rules.Call{}}
	m.Flor = FlorState{Calls: []rules.Call{}, Declared: make([]bool, len(m.Players))}
	m.PendingCall = nil
	m.State = StatePlaying

	e.event(m, EventHandDealt, a.PlayerID, map[string]interface{}{
		"hand":         m.HandCount,
		"manoPlayerId": mano,
		"deckHash":     deck.HashCode(cards),
	})

	return nil
}

func (e *Engine) playCard(m *Match, a Action) error {
	if err := requirePlaying(m); err != nil {
		return err
	}

	if m.PendingCall != nil {
		return fmt.Errorf("%w: %s must be answered first", ErrPendingCallExists, m.PendingCall.Subtype)
	}

	h := m.Hand
	if h.TurnPlayerID != a.PlayerID {
		return ErrNotYourTurn
	}

	card, err := deck.CardFromString(a.CardID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, a.CardID)
	}

	p := m.Player(a.PlayerID)
	played, ok := p.HandCards.Remove(card.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, card.ID)
	}

	p.PlayedCards = append(p.PlayedCards, played)
	trick := &h.Tricks[h.CurrentTrickIndex]
	trick.Plays = append(trick.Plays, Play{PlayerID: p.PlayerID, Seat: p.SeatIndex, Card: played})

	e.event(m, EventCardPlayed, p.PlayerID, map[string]interface{}{
		"trick": h.CurrentTrickIndex,
		"card":  played.ID,
	})

	if len(trick.Plays) < len(m.Players) {
		h.TurnPlayerID = m.Players[m.nextSeat(p.SeatIndex)].PlayerID
		return nil
	}

	winner, leader := resolveTrick(trick.Plays, m.Players)
	trick.Winner = winner
	if winner == Tie {
		leader = m.ManoIndex
	}

	e.event(m, EventTrickResolved, "", map[string]interface{}{
		"trick":      h.CurrentTrickIndex,
		"winnerTeam": string(winner),
	})

	results := make([]Team, h.CurrentTrickIndex+1)
	for i := range results {
		results[i] = h.Tricks[i].Winner
	}

	if handWinner, decided := resolveHand(results, m.manoTeam()); decided {
		e.endHand(m, handWinner, "tricks")
		return nil
	}

	h.CurrentTrickIndex++
	h.TurnPlayerID = m.Players[leader].PlayerID
	return nil
}

// endHand awards the hand value to the winning team and ends the hand
func (e *Engine) endHand(m *Match, winner Team, reason string) {
	h := m.Hand
	h.Winner = winner
	h.EndReason = reason
	h.CanPlayCard = false
	m.PendingCall = nil
	m.Score.add(winner, h.Value)

	e.event(m, EventHandEnd, "", map[string]interface{}{
		"winnerTeam": string(winner),
		"points":     h.Value,
		"reason":     reason,
	})

	if e.finishIfReached(m, winner) {
		return
	}

	m.State = StateHandEnd
}

// award credits points outside of the hand value and ends the match if the target is reached
func (e *Engine) award(m *Match, team Team, points int) bool {
	m.Score.add(team, points)
	return e.finishIfReached(m, team)
}

func (e *Engine) finishIfReached(m *Match, team Team) bool {
	if m.Score.Of(team) < m.Score.Target {
		return false
	}

	m.IsFinished = true
	m.WinnerTeam = team
	m.State = StateMatchEnd
	m.PendingCall = nil
	if m.Hand != nil {
		m.Hand.CanPlayCard = false
	}

	e.event(m, EventMatchEnd, "", map[string]interface{}{
		"winnerTeam": string(team),
		"teamA":      m.Score.TeamA,
		"teamB":      m.Score.TeamB,
	})

	return true
}
