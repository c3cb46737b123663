package rules

import "truco-server/pkg/deck"

// Result is the outcome of comparing two cards
type Result int

// Result constants
const (
	Lose Result = iota - 1
	Tie
	Win
)

func (r Result) String() string {
	switch r {
	case Win:
		return "win"
	case Lose:
		return "lose"
	}

	return "tie"
}

// strength of the cards that are promoted above their rank tier
var promoted = map[deck.Card]int{
	deck.NewCard(1, deck.Espadas): 14,
	deck.NewCard(1, deck.Bastos):  13,
	deck.NewCard(7, deck.Espadas): 12,
	deck.NewCard(7, deck.Oros):    11,
}

// strength of every other card, by rank
var rankStrength = map[int]int{
	3:  10,
	2:  9,
	1:  8,
	12: 7,
	11: 6,
	10: 5,
	7:  4,
	6:  3,
	5:  2,
	4:  1,
}

// Strength returns the trick strength of a card, 1 (weakest) to 14 (strongest)
// Cards of different suits can share a strength.
func Strength(card deck.Card) int {
	if s, ok := promoted[deck.NewCard(card.Rank, card.Suit)]; ok {
		return s
	}

	return rankStrength[card.Rank]
}

// Compare compares two cards by trick strength
func Compare(a, b deck.Card) Result {
	sa, sb := Strength(a), Strength(b)
	switch {
	case sa > sb:
		return Win
	case sa < sb:
		return Lose
	}

	return Tie
}
