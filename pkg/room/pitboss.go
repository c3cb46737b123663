package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"truco-server/pkg/store"
	"truco-server/pkg/truco"
)

// ErrRoomNotFound is returned when a room has neither a dealer nor a snapshot
var ErrRoomNotFound = errors.New("room not found")

// ErrRoomExists is returned when creating a match for a room that already has one
var ErrRoomExists = errors.New("room already has a match")

// ErrRoomClosed is returned when the room's dealer has ended its shift
var ErrRoomClosed = errors.New("room is closed")

// PayoutService is notified exactly once when a match finishes
type PayoutService interface {
	OnMatchFinished(ctx context.Context, roomID string, winner truco.Team, score truco.Score) error
}

// EventPublisher receives every new event of a room's log, in order
type EventPublisher interface {
	PublishEvents(ctx context.Context, roomID string, events []truco.Event) error
}

// unfinishedLister is implemented by stores that can list matches still in progress
type unfinishedLister interface {
	UnfinishedRooms(ctx context.Context) ([]string, error)
}

// Options are the policies a room runs with
type Options struct {
	// AutoDealDelay is how long to wait before dealing the next hand; zero disables auto-deal
	AutoDealDelay time.Duration

	// TurnTimeout folds the awaited player after this long; zero disables it
	TurnTimeout time.Duration

	// SaveTimeout bounds each snapshot write
	SaveTimeout time.Duration
}

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		AutoDealDelay: 2 * time.Second,
		SaveTimeout:   5 * time.Second,
	}
}

// PitBoss is responsible for dispatching players to rooms
// It owns the registry of live rooms; each room is served by exactly one Dealer.
type PitBoss struct {
	engine    *truco.Engine
	snapshots store.SnapshotStore
	payout    PayoutService
	events    EventPublisher
	options   Options
	logger    logrus.FieldLogger

	mu      sync.Mutex
	dealers map[string]*Dealer
}

// NewPitBoss returns a new dispatch object
func NewPitBoss(engine *truco.Engine, snapshots store.SnapshotStore, payout PayoutService, events EventPublisher, opts Options) *PitBoss {
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = DefaultOptions().SaveTimeout
	}

	return &PitBoss{
		engine:    engine,
		snapshots: snapshots,
		payout:    payout,
		events:    events,
		options:   opts,
		logger:    logrus.WithField("component", "pitboss"),
		dealers:   make(map[string]*Dealer),
	}
}

// CreateMatch starts a new match in the room
func (p *PitBoss) CreateMatch(ctx context.Context, roomID string, roster []truco.RosterEntry, opts truco.Options) (*truco.View, error) {
	m, err := truco.NewMatch(roomID, roster, opts)
	if err != nil {
		return nil, err
	}

	if _, err := p.snapshots.LoadSnapshot(ctx, roomID); err == nil {
		return nil, ErrRoomExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	p.mu.Lock()
	if _, found := p.dealers[roomID]; found {
		p.mu.Unlock()
		return nil, ErrRoomExists
	}

	d := NewDealer(p, m)
	d.StartShift()
	p.dealers[roomID] = d
	p.mu.Unlock()

	return d.Created()
}

// dealer returns the room's dealer, reviving it from its snapshot if needed
// The snapshot is read outside the registry lock; if two callers race to revive the same room
// the first one registered wins.
func (p *PitBoss) dealer(ctx context.Context, roomID string) (*Dealer, error) {
	p.mu.Lock()
	d, found := p.dealers[roomID]
	p.mu.Unlock()

	if found {
		return d, nil
	}

	m, err := p.load(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if m.IsFinished {
		return nil, truco.ErrMatchAlreadyFinished
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if d, found := p.dealers[roomID]; found {
		return d, nil
	}

	p.logger.WithField("room", roomID).Info("reviving room from snapshot")
	d = NewDealer(p, m)
	d.StartShift()
	p.dealers[roomID] = d

	return d, nil
}

func (p *PitBoss) load(ctx context.Context, roomID string) (*truco.Match, error) {
	data, err := p.snapshots.LoadSnapshot(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomNotFound
		}

		return nil, err
	}

	return truco.LoadMatch(data)
}

// ApplyPlayerAction applies the action to the room's match
// The acting player's new view is returned; every connected client receives theirs.
func (p *PitBoss) ApplyPlayerAction(ctx context.Context, roomID string, action truco.Action) (*truco.View, error) {
	d, err := p.dealer(ctx, roomID)
	if err != nil {
		return nil, err
	}

	return d.Apply(action)
}

// View returns the match as seen by the player
// Finished rooms are served from their snapshot.
func (p *PitBoss) View(ctx context.Context, roomID, playerID string) (*truco.View, error) {
	d, err := p.dealer(ctx, roomID)
	if errors.Is(err, truco.ErrMatchAlreadyFinished) {
		m, err := p.load(ctx, roomID)
		if err != nil {
			return nil, err
		}

		if m.Player(playerID) == nil {
			return nil, fmt.Errorf("%w: %s", truco.ErrPlayerNotSeated, playerID)
		}

		return m.ViewFor(playerID), nil
	} else if err != nil {
		return nil, err
	}

	return d.View(playerID)
}

// Attach connects a client to its room
func (p *PitBoss) Attach(ctx context.Context, client *Client) error {
	d, err := p.dealer(ctx, client.RoomID)
	if err != nil {
		return err
	}

	return d.AddClient(client)
}

// Detach disconnects a client from its room
func (p *PitBoss) Detach(client *Client) {
	p.mu.Lock()
	d, found := p.dealers[client.RoomID]
	p.mu.Unlock()

	if !found {
		logrus.WithField("room", client.RoomID).Debug("client detached from a retired room")
		return
	}

	d.RemoveClient(client)
}

// Recover revives every unfinished room the store knows about
// Stores that cannot list rooms are revived lazily on first use instead.
func (p *PitBoss) Recover(ctx context.Context) (int, error) {
	lister, ok := p.snapshots.(unfinishedLister)
	if !ok {
		return 0, nil
	}

	rooms, err := lister.UnfinishedRooms(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, roomID := range rooms {
		if _, err := p.dealer(ctx, roomID); err != nil {
			p.logger.WithError(err).WithField("room", roomID).Error("could not revive room")
			continue
		}

		n++
	}

	return n, nil
}

// retire removes the room's dealer once its match is over and paid out
func (p *PitBoss) retire(d *Dealer) {
	p.mu.Lock()
	if p.dealers[d.roomID] == d {
		delete(p.dealers, d.roomID)
	}
	p.mu.Unlock()

	d.EndShift()
}

// RoomCount returns the number of live rooms
func (p *PitBoss) RoomCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.dealers)
}

// EndShift stops every room and waits for their pending writes
func (p *PitBoss) EndShift() {
	p.mu.Lock()
	dealers := make([]*Dealer, 0, len(p.dealers))
	for _, d := range p.dealers {
		dealers = append(dealers, d)
	}
	p.dealers = make(map[string]*Dealer)
	p.mu.Unlock()

	for _, d := range dealers {
		d.EndShift()
		d.Wait()
	}
}
