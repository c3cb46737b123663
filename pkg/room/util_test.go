package room

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"truco-server/internal/rng"
	"truco-server/pkg/protocol"
	"truco-server/pkg/store"
	"truco-server/pkg/truco"
)

type payoutRecorder struct {
	mu      sync.Mutex
	results []truco.Team
}

func (p *payoutRecorder) OnMatchFinished(_ context.Context, _ string, winner truco.Team, _ truco.Score) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.results = append(p.results, winner)
	return nil
}

func (p *payoutRecorder) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.results)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []truco.Event
}

func (e *eventRecorder) PublishEvents(_ context.Context, _ string, events []truco.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.events = append(e.events, events...)
	return nil
}

func (e *eventRecorder) seqs() []int {
	e.mu.Lock()
	defer e.mu.Unlock()

	seqs := make([]int, len(e.events))
	for i, event := range e.events {
		seqs[i] = event.Seq
	}

	return seqs
}

type testRoom struct {
	pitBoss *PitBoss
	store   *store.Memory
	payout  *payoutRecorder
	events  *eventRecorder
}

func newTestRoom(t *testing.T, snapshots *store.Memory, opts Options) *testRoom {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	tr := &testRoom{
		store:  snapshots,
		payout: &payoutRecorder{},
		events: &eventRecorder{},
	}

	tr.pitBoss = NewPitBoss(truco.NewEngine(logger, truco.WithGenerator(rng.NewSeeded(1))), snapshots, tr.payout, tr.events, opts)
	t.Cleanup(tr.pitBoss.EndShift)

	return tr
}

func quietOptions() Options {
	return Options{SaveTimeout: time.Second}
}

func roster(n int) []truco.RosterEntry {
	entries := make([]truco.RosterEntry, n)
	for i := range entries {
		team := truco.TeamA
		if i%2 == 1 {
			team = truco.TeamB
		}

		entries[i] = truco.RosterEntry{
			PlayerID:  fmt.Sprintf("p%d", i),
			Name:      fmt.Sprintf("Player %d", i),
			Team:      team,
			SeatIndex: i,
		}
	}

	return entries
}

func (tr *testRoom) create(t *testing.T, roomID string, target int) {
	t.Helper()

	opts := truco.DefaultOptions()
	opts.Target = target

	_, err := tr.pitBoss.CreateMatch(context.Background(), roomID, roster(2), opts)
	require.NoError(t, err)
}

func (tr *testRoom) apply(t *testing.T, roomID string, a truco.Action) *truco.View {
	t.Helper()

	view, err := tr.pitBoss.ApplyPlayerAction(context.Background(), roomID, a)
	require.NoError(t, err, "%s by %s", a.Type, a.PlayerID)

	return view
}

func (tr *testRoom) attach(t *testing.T, roomID, playerID string) *Client {
	t.Helper()

	c := NewClient(nil, playerID, roomID)
	require.NoError(t, tr.pitBoss.Attach(context.Background(), c))

	return c
}

// nextResponse returns the next message sent to the client
func nextResponse(t *testing.T, c *Client) *protocol.Response {
	t.Helper()

	select {
	case msg := <-c.SendChan():
		res, ok := msg.(*protocol.Response)
		require.True(t, ok, "unexpected message type %T", msg)
		return res
	case <-time.After(time.Second):
		require.Fail(t, "timed out waiting for a message", "client %s", c)
	}

	return nil
}

// drain discards every message already queued for the client
func drain(c *Client) {
	for {
		select {
		case <-c.SendChan():
		default:
			return
		}
	}
}

func noMessage(t *testing.T, c *Client) {
	t.Helper()

	select {
	case msg := <-c.SendChan():
		require.Fail(t, "unexpected message", "%#v", msg)
	default:
	}
}
