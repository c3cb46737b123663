package mux

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"truco-server/pkg/protocol"
	"truco-server/pkg/room"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10

func (m *Mux) getMatchWS() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		// reject unknown rooms and unseated players before upgrading
		if _, err := m.pitBoss.View(r.Context(), roomID(r), playerID(r)); err != nil {
			writeMatchError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Error("could not upgrade connection")
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		client := room.NewClient(conn, playerID(r), roomID(r))
		if err := m.pitBoss.Attach(r.Context(), client); err != nil {
			logrus.WithError(err).WithField("client", client.String()).Warn("could not attach client")
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteJSON(protocol.NewErrorResponse(err, ""))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
			_ = conn.Close()
			return
		}

		waitForCloseFrame := make(chan bool)
		defer func() {
			m.pitBoss.Detach(client)
			_ = conn.Close()
			close(waitForCloseFrame)
		}()

		go m.webSocketWriteLoop(client, waitForCloseFrame)
		m.webSocketReadLoop(client)
	}
}

func (m *Mux) webSocketWriteLoop(client *room.Client, waitForCloseFrame chan bool) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.Conn.Close()
	}()

	for {
		select {
		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case reason := <-client.Close:
			// deliver what the room sent before it closed
			if !drainSendChan(client) {
				return
			}

			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = client.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))

			// wait for the close frame
			select {
			case <-waitForCloseFrame:
			case <-time.After(time.Second):
			}
			return
		case msg := <-client.SendChan():
			if !writeMessage(client, msg) {
				return
			}
		case <-waitForCloseFrame:
			return
		}
	}
}

func writeMessage(client *room.Client, msg interface{}) bool {
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		msgBytes, _ := json.Marshal(msg)
		logrus.WithField("message", string(msgBytes)).WithField("client", client.String()).Trace("sending message to client")
	}

	_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := client.Conn.WriteJSON(msg); err != nil {
		logrus.WithError(err).WithField("client", client.String()).Error("could not write message")
		return false
	}

	return true
}

func drainSendChan(client *room.Client) bool {
	for {
		select {
		case msg := <-client.SendChan():
			if !writeMessage(client, msg) {
				return false
			}
		default:
			return true
		}
	}
}

func (m *Mux) webSocketReadLoop(client *room.Client) {
	for {
		var msg protocol.PayloadIn
		if err := client.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).WithField("client", client.String()).Error("could not read message")
			}

			client.CloseError = err
			return
		}

		client.ReceivedMessage(&msg)
	}
}
