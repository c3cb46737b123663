package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"truco-server/pkg/truco"
)

type fakePublisher struct {
	msgs []*nats.Msg
	err  error
}

func (f *fakePublisher) PublishMsg(msg *nats.Msg) error {
	if f.err != nil {
		return f.err
	}

	f.msgs = append(f.msgs, msg)
	return nil
}

func TestNATS_OnMatchFinished(t *testing.T) {
	a := assert.New(t)
	pub := &fakePublisher{}
	n := NewNATS(pub, "truco")
	n.clock = func() time.Time {
		return time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	}

	err := n.OnMatchFinished(context.Background(), "room-1", truco.TeamB, truco.Score{TeamA: 12, TeamB: 30, Target: 30})
	a.NoError(err)
	a.Equal(1, len(pub.msgs))

	msg := pub.msgs[0]
	a.Equal("truco.match.finished", msg.Subject)
	a.Equal("room-1", msg.Header.Get(nats.MsgIdHdr))

	var finished MatchFinished
	a.NoError(json.Unmarshal(msg.Data, &finished))
	a.Equal("room-1", finished.RoomID)
	a.Equal(truco.TeamB, finished.WinnerTeam)
	a.Equal(12, finished.TeamA)
	a.Equal(30, finished.TeamB)

	pub.err = errors.New("boom")
	a.EqualError(n.OnMatchFinished(context.Background(), "room-1", truco.TeamB, truco.Score{}), "boom")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a.Error(n.OnMatchFinished(ctx, "room-1", truco.TeamB, truco.Score{}))
}

func TestNATS_PublishEvents(t *testing.T) {
	a := assert.New(t)
	pub := &fakePublisher{}
	n := NewNATS(pub, "games")

	events := []truco.Event{
		{Seq: 4, Type: truco.EventCardPlayed, ActingPlayerID: "p1"},
		{Seq: 5, Type: truco.EventTrickResolved},
	}

	a.NoError(n.PublishEvents(context.Background(), "room-9", events))
	a.Equal(2, len(pub.msgs))
	a.Equal("games.events.room-9", pub.msgs[0].Subject)
	a.Equal("room-9-4", pub.msgs[0].Header.Get(nats.MsgIdHdr))
	a.Equal("room-9-5", pub.msgs[1].Header.Get(nats.MsgIdHdr))

	var event truco.Event
	a.NoError(json.Unmarshal(pub.msgs[1].Data, &event))
	a.Equal(truco.EventTrickResolved, event.Type)
}

func TestLog(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	l := NewLog(logger)

	assert.NoError(t, l.OnMatchFinished(context.Background(), "room-1", truco.TeamA, truco.Score{TeamA: 30}))
	assert.Equal(t, "match finished", hook.LastEntry().Message)
	assert.Equal(t, "room-1", hook.LastEntry().Data["room"])

	assert.NoError(t, l.PublishEvents(context.Background(), "room-1", []truco.Event{{Seq: 1, Type: truco.EventHandDealt}}))
	assert.Equal(t, "match event", hook.LastEntry().Message)
	assert.Equal(t, 2, len(hook.AllEntries()))
}
