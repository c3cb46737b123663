package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// Memory is an in-process SnapshotStore
type Memory struct {
	mu        sync.Mutex
	snapshots map[string][]byte
	saves     int
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		snapshots: make(map[string][]byte),
	}
}

// SaveSnapshot stores a copy of the snapshot
func (m *Memory) SaveSnapshot(ctx context.Context, roomID string, snapshot []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := make([]byte, len(snapshot))
	copy(data, snapshot)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[roomID] = data
	m.saves++

	return nil
}

// LoadSnapshot returns a copy of the latest snapshot
func (m *Memory) LoadSnapshot(ctx context.Context, roomID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.snapshots[roomID]
	if !ok {
		return nil, ErrNotFound
	}

	c := make([]byte, len(data))
	copy(c, data)
	return c, nil
}

// Saves returns how many times SaveSnapshot succeeded
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saves
}

// UnfinishedRooms returns the rooms whose latest snapshot is not finished
func (m *Memory) UnfinishedRooms(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := make([]string, 0)
	for roomID, data := range m.snapshots {
		var flag finishedFlag
		if err := json.Unmarshal(data, &flag); err != nil {
			return nil, err
		}

		if !flag.IsFinished {
			rooms = append(rooms, roomID)
		}
	}

	sort.Strings(rooms)
	return rooms, nil
}
