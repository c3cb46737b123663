package truco

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMatch(t *testing.T) {
	a := assert.New(t)

	m, err := NewMatch("room", roster(4), DefaultOptions())
	a.NoError(err)
	a.Equal(StateReady, m.State)
	a.Equal(30, m.Score.Target)
	a.Equal(4, len(m.Players))
	a.Nil(m.Hand)
	a.False(m.IsFinished)
	a.Equal("", m.AwaitingPlayerID())

	// seats are sorted by index
	r := roster(2)
	r[0], r[1] = r[1], r[0]
	m, err = NewMatch("room", r, DefaultOptions())
	a.NoError(err)
	a.Equal("p0", m.Players[0].PlayerID)
	a.Equal("p1", m.Players[1].PlayerID)
}

func TestNewMatch_rosterErrors(t *testing.T) {
	a := assert.New(t)

	_, err := NewMatch("room", roster(3), DefaultOptions())
	a.EqualError(err, "invalid roster: expected 2, 4 or 6 players, got 3")

	_, err = NewMatch("room", roster(8), DefaultOptions())
	a.Error(err)

	r := roster(4)
	r[1].Team = TeamA
	_, err = NewMatch("room", r, DefaultOptions())
	a.EqualError(err, "invalid roster: teams must alternate seats")

	r = roster(2)
	r[1].PlayerID = "p0"
	_, err = NewMatch("room", r, DefaultOptions())
	a.EqualError(err, "invalid roster: player p0 is seated twice")

	r = roster(2)
	r[1].SeatIndex = 3
	_, err = NewMatch("room", r, DefaultOptions())
	a.EqualError(err, "invalid roster: seat 1 is missing")

	r = roster(2)
	r[0].Team = "C"
	_, err = NewMatch("room", r, DefaultOptions())
	a.Error(err)

	_, err = NewMatch("room", roster(2), Options{})
	a.Error(err)

	var rosterErr RosterError
	a.True(errors.As(err, &rosterErr))
	a.Equal("invalidRoster", ErrorCode(err))
}

func TestMatch_Seat(t *testing.T) {
	_, m := setupMatch(t, 4)

	seat, err := m.Seat("p2")
	assert.NoError(t, err)
	assert.Equal(t, 2, seat)

	_, err = m.Seat("nobody")
	assert.True(t, errors.Is(err, ErrPlayerNotSeated))
	assert.Nil(t, m.Player("nobody"))
	assert.Equal(t, TeamB, m.Player("p3").Team)
}

func TestMatch_SnapshotRoundTrip(t *testing.T) {
	e, m := setupMatch(t, 2)
	m = dealCards(t, e, m, "7e,6e,4o", "1c,2c,4b")
	m = apply(t, e, m, callEnvido("p0", "ENVIDO"))

	data, err := m.Snapshot()
	assert.NoError(t, err)

	loaded, err := LoadMatch(data)
	assert.NoError(t, err)
	assert.Equal(t, m.PendingCall, loaded.PendingCall)
	assert.Equal(t, m.Players[0].HandCards, loaded.Players[0].HandCards)

	again, err := loaded.Snapshot()
	assert.NoError(t, err)
	assert.Equal(t, string(data), string(again))

	// the restored match keeps playing
	loaded = apply(t, e, loaded, respond("p1", Quiero))
	assert.Equal(t, 2, loaded.Score.TeamA)

	_, err = LoadMatch([]byte("{}"))
	assert.Error(t, err)
	_, err = LoadMatch([]byte("nope"))
	assert.Error(t, err)
}

func TestMatch_Clone(t *testing.T) {
	e, m := setupMatch(t, 2)
	m = dealCards(t, e, m, "7e,6e,4o", "1c,2c,4b")

	c := m.Clone()
	c.Players[0].HandCards[0] = c.Players[1].HandCards[0]
	c.Hand.Tricks[0].Plays = append(c.Hand.Tricks[0].Plays, Play{PlayerID: "p0"})
	c.Score.TeamA = 10
	c.Flor.Declared[0] = true

	assert.Equal(t, "7e", m.Players[0].HandCards[0].ID)
	assert.Equal(t, 0, len(m.Hand.Tricks[0].Plays))
	assert.Equal(t, 0, m.Score.TeamA)
	assert.False(t, m.Flor.Declared[0])
}

func TestErrorCode(t *testing.T) {
	a := assert.New(t)
	a.Equal("notYourTurn", ErrorCode(ErrNotYourTurn))
	a.Equal("illegalCall", ErrorCode(ErrIllegalCall))
	a.Equal("pendingCallExists", ErrorCode(ErrPendingCallExists))
	a.Equal("cardNotInHand", ErrorCode(ErrCardNotInHand))
	a.Equal("noActiveHand", ErrorCode(ErrNoActiveHand))
	a.Equal("matchAlreadyFinished", ErrorCode(ErrMatchAlreadyFinished))
	a.Equal("internal", ErrorCode(errors.New("boom")))
}
