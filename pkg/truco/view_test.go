package truco

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_ViewFor(t *testing.T) {
	a := assert.New(t)
	e, m := setupMatch(t, 4)
	m = dealCards(t, e, m, "1e,7o,4c", "3o,5b,6b", "7e,6e,4o", "1c,2c,3c")
	m = play(t, e, m, "p0", "4c")

	v := m.ViewFor("p1")
	a.Equal("p1", v.ViewerID)
	a.Equal("3o,5b,6b", v.Match.Players[1].HandCards.String())
	a.Equal(m.Players[1].EnvidoValue, v.Match.Players[1].EnvidoValue)

	for _, seat := range []int{0, 2, 3} {
		p := v.Match.Players[seat]
		for _, c := range p.HandCards {
			a.Equal(HiddenCard, c)
		}
		a.Equal(0, p.EnvidoValue)
		a.Equal(0, p.FlorValue)
		a.False(p.HasFlor)
	}

	a.Equal(2, len(v.Match.Players[0].HandCards))
	a.Equal(3, len(v.Match.Players[3].HandCards))

	// played cards are public
	a.Equal("4c", v.Match.Players[0].PlayedCards.String())
	a.Equal("4c", v.Match.Hand.Tricks[0].Plays[0].Card.ID)

	// the match itself is untouched
	a.Equal("1e,7o", m.Players[0].HandCards.String())
	a.True(m.Players[3].HasFlor)
}

func TestMatch_ViewFor_idempotent(t *testing.T) {
	e, m := setupMatch(t, 2)
	m = dealCards(t, e, m, "1e,7o,4c", "3o,5b,6b")

	first, err := json.Marshal(m.ViewFor("p0"))
	require.NoError(t, err)
	second, err := json.Marshal(m.ViewFor("p0"))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	stranger := m.ViewFor("nobody")
	for _, p := range stranger.Match.Players {
		for _, c := range p.HandCards {
			assert.Equal(t, HiddenCard, c)
		}
	}
}
