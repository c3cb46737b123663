package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// Postgres stores snapshots in the match_snapshots table
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a store backed by the database handle
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type finishedFlag struct {
	IsFinished bool `json:"isFinished"`
}

// SaveSnapshot inserts or replaces the room's snapshot
func (p *Postgres) SaveSnapshot(ctx context.Context, roomID string, snapshot []byte) error {
	var flag finishedFlag
	if err := json.Unmarshal(snapshot, &flag); err != nil {
		return err
	}

	const query = `
INSERT INTO match_snapshots (room_id, snapshot, is_finished)
VALUES ($1, $2, $3)
ON CONFLICT (room_id) DO UPDATE
SET snapshot = EXCLUDED.snapshot,
    is_finished = EXCLUDED.is_finished,
    updated = NOW()`

	_, err := p.db.ExecContext(ctx, query, roomID, string(snapshot), flag.IsFinished)
	return err
}

// LoadSnapshot returns the room's latest snapshot
func (p *Postgres) LoadSnapshot(ctx context.Context, roomID string) ([]byte, error) {
	const query = `SELECT snapshot FROM match_snapshots WHERE room_id = $1`

	var snapshot string
	if err := p.db.QueryRowContext(ctx, query, roomID).Scan(&snapshot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return []byte(snapshot), nil
}

// UnfinishedRooms returns the rooms whose match was still in progress at the last save
func (p *Postgres) UnfinishedRooms(ctx context.Context) ([]string, error) {
	const query = `
SELECT room_id
FROM match_snapshots
WHERE is_finished = FALSE
ORDER BY updated`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]string, 0)
	for rows.Next() {
		var roomID string
		if err := rows.Scan(&roomID); err != nil {
			return nil, err
		}

		rooms = append(rooms, roomID)
	}

	return rooms, rows.Err()
}
