package deck

// Hand represents a collection of cards
type Hand []Card

// IndexOf returns the index of the card with the given ID, or -1 if not found
func (h Hand) IndexOf(cardID string) int {
	for i, c := range h {
		if c.ID == cardID {
			return i
		}
	}

	return -1
}

// HasCard returns true if the hand contains the specified card
func (h Hand) HasCard(card Card) bool {
	for _, c := range h {
		if c.Equal(card) {
			return true
		}
	}

	return false
}

// Remove removes the card with the given ID and returns it
// The second return value is false if the card was not in the hand
func (h *Hand) Remove(cardID string) (Card, bool) {
	i := h.IndexOf(cardID)
	if i < 0 {
		return Card{}, false
	}

	card := (*h)[i]
	newHand := make(Hand, 0, len(*h)-1)
	newHand = append(newHand, (*h)[:i]...)
	newHand = append(newHand, (*h)[i+1:]...)
	*h = newHand

	return card, true
}

func (h Hand) String() string {
	return CardsToString(h)
}

// Clone returns a clone of the hand
func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}

	h2 := make(Hand, len(h))
	copy(h2, h)

	return h2
}
