package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"truco-server/pkg/protocol"
	"truco-server/pkg/truco"
)

const saveAttempts = 3

// writeJob is one entry of the room's ordered write queue
type writeJob struct {
	snapshot []byte
	events   []truco.Event
	finished bool
	winner   truco.Team
	score    truco.Score
}

// Dealer owns one room's match
// Every read and write of the match happens on the run loop goroutine.
type Dealer struct {
	pitBoss *PitBoss
	roomID  string
	match   *truco.Match
	clients map[*Client]bool
	lock    sync.RWMutex
	logger  logrus.FieldLogger

	execInRunLoop chan func()
	writes        chan writeJob
	close         chan bool
	closeOnce     sync.Once
	done          chan struct{}
	writerDone    chan struct{}
	closeErr      error

	autoDeal  *time.Timer
	turnTimer *time.Timer

	// only touched by the write loop
	paid bool
}

// NewDealer creates a new dealer object
// This is called while the registry is locked, so it needs to return quickly
func NewDealer(pitBoss *PitBoss, m *truco.Match) *Dealer {
	return &Dealer{
		pitBoss:       pitBoss,
		roomID:        m.ID,
		match:         m,
		clients:       make(map[*Client]bool),
		logger:        logrus.WithField("room", m.ID),
		execInRunLoop: make(chan func(), 256),
		writes:        make(chan writeJob, 256),
		close:         make(chan bool),
		done:          make(chan struct{}),
		writerDone:    make(chan struct{}),
	}
}

// Clients will return a slice of connected (at the time) clients
func (d *Dealer) Clients() []*Client {
	d.lock.RLock()
	defer d.lock.RUnlock()

	clients := make([]*Client, 0, len(d.clients))
	for client := range d.clients {
		clients = append(clients, client)
	}

	return clients
}

// StartShift starts the run loop and the write queue
func (d *Dealer) StartShift() {
	go d.runLoop()
	go d.writeLoop()
}

// EndShift is called when the dealer is no longer needed
func (d *Dealer) EndShift() {
	d.closeOnce.Do(func() {
		close(d.close)
	})
}

// Wait blocks until the run loop has exited and every queued write is done
func (d *Dealer) Wait() {
	<-d.done
	<-d.writerDone
}

func (d *Dealer) runLoop() {
	d.logger.Debug("creating dealer run loop")
	for {
		select {
		case fn := <-d.execInRunLoop:
			fn()
		case <-d.close:
			d.stopTimers()
			d.closeErr = ErrRoomClosed
			if d.match.IsFinished {
				d.closeErr = truco.ErrMatchAlreadyFinished
			}

			for _, client := range d.Clients() {
				client.Disconnect(d.closeErr.Error())
			}

			close(d.writes)
			close(d.done)
			d.logger.Debug("terminating dealer run loop")
			return
		}
	}
}

// run executes fn on the run loop and waits for its result
func (d *Dealer) run(fn func() error) error {
	result := make(chan error, 1)
	select {
	case d.execInRunLoop <- func() { result <- fn() }:
	case <-d.done:
		return d.closeErr
	}

	select {
	case err := <-result:
		return err
	case <-d.done:
		select {
		case err := <-result:
			return err
		default:
			return d.closeErr
		}
	}
}

// schedule queues fn on the run loop without waiting
func (d *Dealer) schedule(fn func()) {
	select {
	case d.execInRunLoop <- fn:
	case <-d.done:
	}
}

// Created persists the new match and returns the unseated view of it
func (d *Dealer) Created() (*truco.View, error) {
	var view *truco.View
	err := d.run(func() error {
		d.enqueueWrite(nil)
		d.schedulePolicies()
		view = d.viewFor("")
		return nil
	})

	return view, err
}

// Apply applies the action to the match
// The acting player's new view is returned and every connected client receives theirs.
// On error nothing is broadcast.
func (d *Dealer) Apply(action truco.Action) (*truco.View, error) {
	var view *truco.View
	err := d.run(func() error {
		var err error
		view, err = d.apply(action)
		return err
	})

	return view, err
}

// View returns the match as seen by the player
func (d *Dealer) View(playerID string) (*truco.View, error) {
	var view *truco.View
	err := d.run(func() error {
		if d.match.Player(playerID) == nil {
			return fmt.Errorf("%w: %s", truco.ErrPlayerNotSeated, playerID)
		}

		view = d.viewFor(playerID)
		return nil
	})

	return view, err
}

// NOTE: must only be called from the run loop
func (d *Dealer) apply(action truco.Action) (*truco.View, error) {
	next, err := d.pitBoss.engine.Apply(d.match, action)
	if err != nil {
		return nil, err
	}

	events := next.EventsSince(len(d.match.Log))
	d.match = next

	d.enqueueWrite(events)
	d.broadcastViews()
	d.schedulePolicies()

	return d.viewFor(action.PlayerID), nil
}

// applySystem applies an action the room itself takes
// NOTE: must only be called from the run loop
func (d *Dealer) applySystem(action truco.Action) {
	if _, err := d.apply(action); err != nil {
		d.logger.WithError(err).WithField("action", action.Type).Warn("could not apply policy action")
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) enqueueWrite(events []truco.Event) {
	snapshot, err := d.match.Snapshot()
	if err != nil {
		d.logger.WithError(err).Error("could not serialize match")
		return
	}

	d.writes <- writeJob{
		snapshot: snapshot,
		events:   events,
		finished: d.match.IsFinished,
		winner:   d.match.WinnerTeam,
		score:    d.match.Score,
	}
}

func (d *Dealer) writeLoop() {
	defer close(d.writerDone)

	for job := range d.writes {
		d.write(job)
	}
}

func (d *Dealer) write(job writeJob) {
	saved := d.save(job.snapshot)

	if len(job.events) > 0 && d.pitBoss.events != nil {
		if err := d.pitBoss.events.PublishEvents(context.Background(), d.roomID, job.events); err != nil {
			d.logger.WithError(err).Error("could not publish events")
		}
	}

	if !job.finished || d.paid {
		return
	}

	// the room stays registered until the finished match is persisted, otherwise a stale snapshot could revive it
	if !saved {
		d.logger.WithField("winnerTeam", job.winner).Error("finished match was not saved, holding payout")
		return
	}

	d.paid = true
	if d.pitBoss.payout != nil {
		if err := d.pitBoss.payout.OnMatchFinished(context.Background(), d.roomID, job.winner, job.score); err != nil {
			d.logger.WithError(err).Error("could not notify payout")
		}
	}

	d.logger.WithField("winnerTeam", job.winner).Info("match finished, retiring room")
	d.pitBoss.retire(d)
}

// save stores the snapshot, retrying a few times
func (d *Dealer) save(snapshot []byte) bool {
	opts := d.pitBoss.options
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), opts.SaveTimeout)
		err := d.pitBoss.snapshots.SaveSnapshot(ctx, d.roomID, snapshot)
		cancel()

		if err == nil {
			return true
		}

		d.logger.WithError(err).WithField("attempt", attempt).Error("could not save snapshot")
		if attempt < saveAttempts {
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}
	}

	return false
}

// NOTE: must only be called from the run loop
func (d *Dealer) stopTimers() {
	if d.autoDeal != nil {
		d.autoDeal.Stop()
		d.autoDeal = nil
	}

	if d.turnTimer != nil {
		d.turnTimer.Stop()
		d.turnTimer = nil
	}
}

// schedulePolicies arms the auto-deal and turn timeout timers for the current state
// NOTE: must only be called from the run loop
func (d *Dealer) schedulePolicies() {
	d.stopTimers()

	m := d.match
	if m.IsFinished {
		return
	}

	opts := d.pitBoss.options
	if opts.AutoDealDelay > 0 && (m.State == truco.StateReady || m.State == truco.StateHandEnd) {
		handCount := m.HandCount
		d.autoDeal = time.AfterFunc(opts.AutoDealDelay, func() {
			d.schedule(func() {
				if d.match.HandCount != handCount || d.match.State == truco.StatePlaying || d.match.IsFinished {
					return
				}

				d.applySystem(truco.Action{Type: truco.ActionDealHand})
			})
		})
	}

	if opts.TurnTimeout > 0 && m.State == truco.StatePlaying {
		awaited := m.AwaitingPlayerID()
		seq := len(m.Log)
		d.turnTimer = time.AfterFunc(opts.TurnTimeout, func() {
			d.schedule(func() {
				if len(d.match.Log) != seq || d.match.AwaitingPlayerID() != awaited {
					return
				}

				d.logger.WithField("player", awaited).Info("turn timed out, folding")
				d.applySystem(truco.Action{Type: truco.ActionFold, PlayerID: awaited})
			})
		})
	}
}

// AddClient adds a client to the room
// Only seated players may connect.
func (d *Dealer) AddClient(client *Client) error {
	return d.run(func() error {
		if d.match.Player(client.PlayerID) == nil {
			return fmt.Errorf("%w: %s", truco.ErrPlayerNotSeated, client.PlayerID)
		}

		d.lock.Lock()
		client.dealer = d
		d.clients[client] = true
		d.lock.Unlock()

		client.Send(protocol.NewViewResponse(d.viewFor(client.PlayerID), ""))
		d.broadcastConnections()
		return nil
	})
}

// RemoveClient removes a client
// The match is unaffected; a disconnected player's turn stays pending.
func (d *Dealer) RemoveClient(client *Client) {
	d.schedule(func() {
		d.lock.Lock()
		delete(d.clients, client)
		d.lock.Unlock()

		d.broadcastConnections()
	})
}

// connected returns, for each seat, whether the player has at least one open connection
func (d *Dealer) connected() []bool {
	connected := make([]bool, len(d.match.Players))
	for _, client := range d.Clients() {
		if p := d.match.Player(client.PlayerID); p != nil {
			connected[p.SeatIndex] = true
		}
	}

	return connected
}

// NOTE: must only be called from the run loop
func (d *Dealer) viewFor(playerID string) *truco.View {
	view := d.match.ViewFor(playerID)
	view.Connected = d.connected()
	return view
}

// NOTE: must only be called from the run loop
func (d *Dealer) broadcastViews() {
	views := make(map[string]*truco.View)
	for _, client := range d.Clients() {
		view, ok := views[client.PlayerID]
		if !ok {
			view = d.viewFor(client.PlayerID)
			views[client.PlayerID] = view
		}

		if !client.Send(protocol.NewViewResponse(view, "")) {
			d.logger.WithField("client", client.String()).Warn("client send buffer is full, dropping view")
		}
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) broadcastConnections() {
	connected := d.connected()
	for _, client := range d.Clients() {
		client.Send(&protocol.Response{
			Key:  protocol.KeyConnections,
			Data: connected,
		})
	}
}

// ReceivedMessage is called when a client sends a message to the server
// Errors are reported only to the sending client.
func (d *Dealer) ReceivedMessage(c *Client, msg *protocol.PayloadIn) {
	action, err := msg.ToAction(c.PlayerID)
	if err != nil {
		c.Send(protocol.NewErrorResponse(err, msg.Context))
		return
	}

	if _, err := d.Apply(action); err != nil {
		d.logger.WithError(err).WithField("client", c.String()).Debug("could not perform action")
		c.Send(protocol.NewErrorResponse(err, msg.Context))
		return
	}

	c.Send(protocol.OK(msg.Context))
}
