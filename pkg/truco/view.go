package truco

import "truco-server/pkg/deck"

// HiddenCard replaces every card a viewer is not allowed to see
var HiddenCard = deck.Card{ID: "hidden"}

// View is a match as seen by one player
// Connected is indexed by seat and is filled in by the room, never by the engine.
type View struct {
	ViewerID  string `json:"viewerId"`
	Match     *Match `json:"match"`
	Connected []bool `json:"connected,omitempty"`
}

// ViewFor returns the match as seen by the player
// The player's own cards are shown as-is; every other seat's unplayed cards are masked
// along with their envido and flor values. Unknown players see every hand masked.
func (m *Match) ViewFor(playerID string) *View {
	c := m.Clone()
	for _, p := range c.Players {
		if p.PlayerID == playerID {
			continue
		}

		masked := make(deck.Hand, len(p.HandCards))
		for i := range masked {
			masked[i] = HiddenCard
		}

		p.HandCards = masked
		p.EnvidoValue = 0
		p.FlorValue = 0
		p.HasFlor = false
	}

	return &View{
		ViewerID: playerID,
		Match:    c,
	}
}
