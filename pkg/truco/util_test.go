package truco

import (
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"truco-server/internal/rng"
	"truco-server/pkg/deck"
	"truco-server/pkg/rules"
)

var testTime = time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

func newTestEngine(seed int64) *Engine {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	return NewEngine(logger, WithGenerator(rng.NewSeeded(seed)), WithClock(func() time.Time {
		return testTime
	}))
}

// roster returns n players p0...pn-1, with even seats on team A
func roster(n int) []RosterEntry {
	entries := make([]RosterEntry, n)
	for i := range entries {
		team := TeamA
		if i%2 == 1 {
			team = TeamB
		}

		entries[i] = RosterEntry{
			PlayerID:  fmt.Sprintf("p%d", i),
			Name:      fmt.Sprintf("Player %d", i),
			Team:      team,
			SeatIndex: i,
		}
	}

	return entries
}

func setupMatch(t *testing.T, n int, opts ...func(o *Options)) (*Engine, *Match) {
	t.Helper()

	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m, err := NewMatch("room-1", roster(n), o)
	require.NoError(t, err)

	return newTestEngine(1), m
}

// dealCards deals a new hand and then replaces each seat's cards with the given ones
func dealCards(t *testing.T, e *Engine, m *Match, hands ...string) *Match {
	t.Helper()

	m = apply(t, e, m, Action{Type: ActionDealHand})
	for i, h := range hands {
		p := m.Players[i]
		p.HandCards = deck.Hand(deck.CardsFromString(h))
		p.EnvidoValue = rules.EnvidoValue(p.HandCards)
		p.FlorValue = rules.FlorValue(p.HandCards)
		p.HasFlor = rules.HasFlor(p.HandCards)
	}

	return m
}

func apply(t *testing.T, e *Engine, m *Match, a Action) *Match {
	t.Helper()

	next, err := e.Apply(m, a)
	require.NoError(t, err, "%s by %s", a.Type, a.PlayerID)
	return next
}

func play(t *testing.T, e *Engine, m *Match, playerID, cardID string) *Match {
	t.Helper()
	return apply(t, e, m, Action{Type: ActionPlayCard, PlayerID: playerID, CardID: cardID})
}

func callTruco(playerID string) Action {
	return Action{Type: ActionCallTruco, PlayerID: playerID}
}

func callEnvido(playerID string, call rules.Call) Action {
	return Action{Type: ActionCallEnvido, PlayerID: playerID, Call: call}
}

func callFlor(playerID string, call rules.Call) Action {
	return Action{Type: ActionCallFlor, PlayerID: playerID, Call: call}
}

func respond(playerID string, r Response) Action {
	return Action{Type: ActionRespond, PlayerID: playerID, Response: r}
}

func fold(playerID string) Action {
	return Action{Type: ActionFold, PlayerID: playerID}
}
