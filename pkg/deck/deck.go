package deck

import (
	"crypto/sha1" // nolint:gosec
	"encoding/hex"
	"errors"
	"fmt"

	"truco-server/internal/rng"
)

// Size is the number of cards in a Spanish deck
const Size = 40

// HandSize is how many cards each player is dealt
const HandSize = 3

// ErrNoPlayers is returned when dealing to zero players
var ErrNoPlayers = errors.New("cannot deal to zero players")

// DealError is an error when there are not enough cards for the requested hands
type DealError int

func (d DealError) Error() string {
	return fmt.Sprintf("cannot deal %d hands of %d from a %d card deck", int(d), HandSize, Size)
}

// BuildDeck returns a new, unshuffled 40-card deck.
// Every call returns a fresh slice.
func BuildDeck() []Card {
	cards := make([]Card, 0, Size)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(rank, suit))
		}
	}

	return cards
}

// Shuffle returns a shuffled copy of the cards using a Fisher–Yates shuffle.
// The input slice is not modified.
func Shuffle(cards []Card, gen rng.Generator) []Card {
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)

	for j := len(shuffled) - 1; j > 0; j-- {
		i := gen.Intn(j + 1)

		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}

// Deal deals n hands of HandSize cards, one card at a time to each hand in turn.
// The undealt cards are returned as the remainder.
func Deal(cards []Card, n int) (hands [][]Card, remainder []Card, err error) {
	if n < 1 {
		return nil, nil, ErrNoPlayers
	}

	if n*HandSize > len(cards) {
		return nil, nil, DealError(n)
	}

	hands = make([][]Card, n)
	for i := range hands {
		hands[i] = make([]Card, 0, HandSize)
	}

	next := 0
	for c := 0; c < HandSize; c++ {
		for h := 0; h < n; h++ {
			hands[h] = append(hands[h], cards[next])
			next++
		}
	}

	remainder = make([]Card, len(cards)-next)
	copy(remainder, cards[next:])

	return hands, remainder, nil
}

// HashCode returns a SHA1 hash code of the card order
func HashCode(cards []Card) string {
	hash := sha1.New() // nolint:gosec
	for _, card := range cards {
		_, _ = hash.Write([]byte(card.ID))
	}

	return hex.EncodeToString(hash.Sum(nil))
}
