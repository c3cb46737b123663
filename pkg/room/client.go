package room

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"truco-server/pkg/protocol"
)

// Client is a player connected to a room via websockets
type Client struct {
	// ID identifies the connection; a player may have several
	ID string

	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	PlayerID string
	RoomID   string

	dealer *Dealer
}

// NewClient returns a new client object
func NewClient(conn *websocket.Conn, playerID, roomID string) *Client {
	return &Client{
		ID:       uuid.New().String(),
		send:     make(chan interface{}, 256),
		Close:    make(chan string, 1),
		Conn:     conn,
		PlayerID: playerID,
		RoomID:   roomID,
	}
}

// Send send a message to the web client
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Disconnect asks the connection to close with the given reason
func (c *Client) Disconnect(reason string) {
	select {
	case c.Close <- reason:
	default:
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// String returns a traceable identifier for the player and room
func (c *Client) String() string {
	return fmt.Sprintf("%s:%s", c.PlayerID, c.RoomID)
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg *protocol.PayloadIn) {
	if c.dealer == nil {
		logrus.WithField("msg", msg).Warn("received message, but dealer not found")
		return
	}

	c.dealer.ReceivedMessage(c, msg)
}
