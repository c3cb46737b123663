package truco

import (
	"errors"
	"fmt"
)

// ErrNotYourTurn is returned when the action requires being the active player or the respondent
var ErrNotYourTurn = errors.New("not your turn")

// ErrIllegalCall is returned when a call is maxed out, already made, or blocked by a rule
var ErrIllegalCall = errors.New("illegal call")

// ErrPendingCallExists is returned when a different call is already awaiting a response
var ErrPendingCallExists = errors.New("another call is awaiting a response")

// ErrCardNotInHand happens when the player tries to play a card they don't have
var ErrCardNotInHand = errors.New("card is not in player's hand")

// ErrNoActiveHand is returned when the action requires a hand in progress
var ErrNoActiveHand = errors.New("no hand in progress")

// ErrHandInProgress is returned when a deal is attempted before the current hand is over
var ErrHandInProgress = errors.New("a hand is already in progress")

// ErrMatchAlreadyFinished is returned for any action after the match ended
var ErrMatchAlreadyFinished = errors.New("match is already finished")

// ErrPlayerNotSeated is returned when the acting player is not part of the match
var ErrPlayerNotSeated = errors.New("player is not seated in this match")

// ErrUnknownAction is returned for an action type the engine does not know
var ErrUnknownAction = errors.New("unknown action")

// ErrInvalidResponse is returned when a response is not QUIERO or NO_QUIERO
var ErrInvalidResponse = errors.New("response must be QUIERO or NO_QUIERO")

// RosterError is an error with the roster a match is created from
type RosterError string

func (r RosterError) Error() string {
	return fmt.Sprintf("invalid roster: %s", string(r))
}

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrNotYourTurn, "notYourTurn"},
	{ErrIllegalCall, "illegalCall"},
	{ErrPendingCallExists, "pendingCallExists"},
	{ErrCardNotInHand, "cardNotInHand"},
	{ErrNoActiveHand, "noActiveHand"},
	{ErrHandInProgress, "handInProgress"},
	{ErrMatchAlreadyFinished, "matchAlreadyFinished"},
	{ErrPlayerNotSeated, "playerNotSeated"},
	{ErrUnknownAction, "unknownAction"},
	{ErrInvalidResponse, "invalidResponse"},
}

// ErrorCode returns a stable code for an engine error, suitable for clients
func ErrorCode(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}

	var rosterErr RosterError
	if errors.As(err, &rosterErr) {
		return "invalidRoster"
	}

	return "internal"
}
