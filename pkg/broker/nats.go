package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"truco-server/pkg/truco"
)

// publisher is the part of *nats.Conn the broker needs
type publisher interface {
	PublishMsg(msg *nats.Msg) error
}

// NATS publishes match results and event logs to a NATS server
type NATS struct {
	conn   publisher
	prefix string
	clock  func() time.Time
}

// Connect connects to the NATS server at url
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("truco-server"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(5),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logrus.WithError(err).Warn("disconnected from nats")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logrus.WithField("url", nc.ConnectedUrl()).Info("reconnected to nats")
		}),
	)
}

// NewNATS returns a broker that publishes on subjects starting with prefix
func NewNATS(conn publisher, prefix string) *NATS {
	return &NATS{
		conn:   conn,
		prefix: prefix,
		clock:  time.Now,
	}
}

// FinishedSubject is the subject match results are published on
func (n *NATS) FinishedSubject() string {
	return n.prefix + ".match.finished"
}

// EventsSubject is the subject a room's event log is published on
func (n *NATS) EventsSubject(roomID string) string {
	return fmt.Sprintf("%s.events.%s", n.prefix, roomID)
}

// OnMatchFinished publishes the result of the match
// The message id is the room id so a JetStream consumer sees a retried publish only once.
func (n *NATS) OnMatchFinished(ctx context.Context, roomID string, winner truco.Team, score truco.Score) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(NewMatchFinished(roomID, winner, score, n.clock()))
	if err != nil {
		return err
	}

	msg := nats.NewMsg(n.FinishedSubject())
	msg.Header.Set(nats.MsgIdHdr, roomID)
	msg.Data = data

	return n.conn.PublishMsg(msg)
}

// PublishEvents publishes each event of a room's log in order
func (n *NATS) PublishEvents(ctx context.Context, roomID string, events []truco.Event) error {
	subject := n.EventsSubject(roomID)
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := json.Marshal(event)
		if err != nil {
			return err
		}

		msg := nats.NewMsg(subject)
		msg.Header.Set(nats.MsgIdHdr, fmt.Sprintf("%s-%d", roomID, event.Seq))
		msg.Data = data

		if err := n.conn.PublishMsg(msg); err != nil {
			return err
		}
	}

	return nil
}
