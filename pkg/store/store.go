package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a room has no snapshot
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore is the durable record of every match
// There is one writer per room; reads only happen on recovery.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, roomID string, snapshot []byte) error
	LoadSnapshot(ctx context.Context, roomID string) ([]byte, error)
}
