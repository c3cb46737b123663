package protocol

import (
	"fmt"
	"strings"

	"truco-server/pkg/rules"
	"truco-server/pkg/truco"
)

// Response keys
const (
	KeyView        = "view"
	KeyError       = "error"
	KeyStatus      = "status"
	KeyConnections = "connections"
)

// Response is the envelope of every message sent to a client
type Response struct {
	Key     string      `json:"key"`
	Value   string      `json:"value"`
	Data    interface{} `json:"data"`
	Context string      `json:"context"`
}

// OK returns a generic success response
func OK(ctx ...string) *Response {
	res := &Response{
		Key:   KeyStatus,
		Value: "OK",
	}

	if len(ctx) == 1 {
		res.Context = ctx[0]
	}

	return res
}

// NewErrorResponse returns a rejected-action notice
// Value is a stable error code and Data the human readable message.
func NewErrorResponse(err error, ctx string) *Response {
	return &Response{
		Key:     KeyError,
		Value:   truco.ErrorCode(err),
		Data:    err.Error(),
		Context: ctx,
	}
}

// NewViewResponse wraps a player's view of the match
func NewViewResponse(view *truco.View, ctx string) *Response {
	return &Response{
		Key:     KeyView,
		Value:   string(view.Match.State),
		Data:    view,
		Context: ctx,
	}
}

// PayloadIn is the format we expect from the client
type PayloadIn struct {
	Action         string         `json:"action"`
	Subject        string         `json:"subject"`
	AdditionalData AdditionalData `json:"additionalData"`
	// Context will be passed back on any outgoing message
	Context string `json:"context"`
}

// ToAction converts the payload into an engine action for the player
func (p *PayloadIn) ToAction(playerID string) (truco.Action, error) {
	action := truco.Action{
		Type:     truco.ActionType(p.Action),
		PlayerID: playerID,
	}

	subject := strings.TrimSpace(p.Subject)
	switch action.Type {
	case truco.ActionDealHand, truco.ActionCallTruco, truco.ActionFold:
	case truco.ActionPlayCard:
		if subject == "" {
			subject, _ = p.AdditionalData.GetString("cardId")
		}

		if subject == "" {
			return truco.Action{}, fmt.Errorf("%w: playCard requires a card", truco.ErrCardNotInHand)
		}

		action.CardID = subject
	case truco.ActionCallEnvido:
		action.Call = rules.Envido
		if subject != "" {
			action.Call = rules.Call(strings.ToUpper(subject))
		}
	case truco.ActionCallFlor:
		action.Call = rules.Call(strings.ToUpper(subject))
	case truco.ActionRespond:
		action.Response = truco.Response(strings.ToUpper(subject))
	default:
		return truco.Action{}, fmt.Errorf("%w: %q", truco.ErrUnknownAction, p.Action)
	}

	return action, nil
}

// AdditionalData provides additional data in a payload
type AdditionalData map[string]interface{}

// GetString returns a string for the given key
func (a AdditionalData) GetString(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}
