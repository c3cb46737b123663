package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"truco-server/internal/rng"
)

func TestBuildDeck(t *testing.T) {
	cards := BuildDeck()
	assert.Equal(t, Size, len(cards))

	assert.Equal(t, NewCard(1, Espadas), cards[0])
	assert.Equal(t, NewCard(12, Copas), cards[39])

	seen := make(map[string]bool)
	for _, c := range cards {
		assert.True(t, c.IsValid(), c.ID)
		assert.False(t, seen[c.ID], "duplicate card %s", c.ID)
		seen[c.ID] = true
	}

	// every call must produce a fresh deck
	cards[0] = NewCard(4, Copas)
	assert.Equal(t, NewCard(1, Espadas), BuildDeck()[0])
}

func TestShuffle(t *testing.T) {
	cards := BuildDeck()
	original := HashCode(cards)

	shuffled := Shuffle(cards, rng.NewSeeded(1))
	assert.Equal(t, original, HashCode(cards), "input must not be modified")
	assert.NotEqual(t, original, HashCode(shuffled))
	assert.Equal(t, Size, len(shuffled))

	again := Shuffle(cards, rng.NewSeeded(1))
	assert.Equal(t, HashCode(shuffled), HashCode(again), "same seed, same order")

	seen := make(map[string]bool)
	for _, c := range shuffled {
		seen[c.ID] = true
	}
	assert.Equal(t, Size, len(seen))
}

func TestShuffle_uniformFirstCard(t *testing.T) {
	cards := BuildDeck()
	gen := rng.NewSeeded(7)
	counts := make(map[string]int)
	for i := 0; i < 4000; i++ {
		counts[Shuffle(cards, gen)[0].ID]++
	}

	// every card must be able to reach the top of the deck
	assert.Equal(t, Size, len(counts))
}

func TestDeal(t *testing.T) {
	a := assert.New(t)

	hands, remainder, err := Deal(Shuffle(BuildDeck(), rng.Crypto{}), 4)
	a.NoError(err)
	a.Equal(4, len(hands))
	a.Equal(28, len(remainder))

	seen := make(map[string]bool)
	for _, hand := range hands {
		a.Equal(HandSize, len(hand))
		for _, c := range hand {
			a.False(seen[c.ID])
			seen[c.ID] = true
		}
	}

	for _, c := range remainder {
		a.False(seen[c.ID])
		seen[c.ID] = true
	}
	a.Equal(Size, len(seen))
}

func TestDeal_errors(t *testing.T) {
	_, _, err := Deal(BuildDeck(), 0)
	assert.Equal(t, ErrNoPlayers, err)

	_, _, err = Deal(BuildDeck(), 14)
	assert.EqualError(t, err, "cannot deal 14 hands of 3 from a 40 card deck")

	hands, remainder, err := Deal(BuildDeck(), 13)
	assert.NoError(t, err)
	assert.Equal(t, 13, len(hands))
	assert.Equal(t, 1, len(remainder))
}
