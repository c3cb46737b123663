package truco

import "truco-server/pkg/rules"

// ActionType is the type of an action a player (or the system) takes
type ActionType string

// ActionType constants
const (
	ActionDealHand   ActionType = "dealHand"
	ActionPlayCard   ActionType = "playCard"
	ActionCallTruco  ActionType = "callTruco"
	ActionCallEnvido ActionType = "callEnvido"
	ActionCallFlor   ActionType = "callFlor"
	ActionRespond    ActionType = "respond"
	ActionFold       ActionType = "fold"
)

// Response is the answer to a pending call
type Response string

// Response constants
const (
	Quiero   Response = "QUIERO"
	NoQuiero Response = "NO_QUIERO"
)

// Action is a single input to the engine
// An empty PlayerID is only valid for dealHand, and means the system is dealing.
type Action struct {
	Type     ActionType `json:"type"`
	PlayerID string     `json:"playerId,omitempty"`
	CardID   string     `json:"cardId,omitempty"`
	Call     rules.Call `json:"call,omitempty"`
	Response Response   `json:"response,omitempty"`
}
