package rules

import "truco-server/pkg/deck"

// envidoBase is added to the face values of two or more cards of the same suit
const envidoBase = 20

// FaceValue is the value of a card for envido and flor. Face cards count zero.
func FaceValue(card deck.Card) int {
	if card.Rank >= deck.Sota {
		return 0
	}

	return card.Rank
}

// EnvidoValue returns the envido value of a hand
// If two or more cards share a suit, the value is 20 plus the two highest face values in that
// suit; otherwise it is the highest single face value.
func EnvidoValue(cards []deck.Card) int {
	best := 0
	for _, c := range cards {
		if v := FaceValue(c); v > best {
			best = v
		}
	}

	for _, suit := range deck.Suits {
		first, second, n := 0, 0, 0
		for _, c := range cards {
			if c.Suit != suit {
				continue
			}

			n++
			v := FaceValue(c)
			if v > first {
				first, second = v, first
			} else if v > second {
				second = v
			}
		}

		if n >= 2 {
			if v := envidoBase + first + second; v > best {
				best = v
			}
		}
	}

	return best
}

// HasFlor returns true if the hand is three cards of the same suit
func HasFlor(cards []deck.Card) bool {
	if len(cards) != deck.HandSize {
		return false
	}

	return cards[0].Suit == cards[1].Suit && cards[1].Suit == cards[2].Suit
}

// FlorValue returns 20 plus the sum of the three face values, or 0 if there is no flor
func FlorValue(cards []deck.Card) int {
	if !HasFlor(cards) {
		return 0
	}

	v := envidoBase
	for _, c := range cards {
		v += FaceValue(c)
	}

	return v
}
