package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/lib/pq"
)

// postgresStore connects to the database named by TRUCO_TEST_PG_DSN, skipping when unset
// The match_snapshots migration must already be applied.
func postgresStore(t *testing.T) *Postgres {
	dsn := os.Getenv("TRUCO_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TRUCO_TEST_PG_DSN is not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	return NewPostgres(db)
}

func TestPostgres(t *testing.T) {
	a := assert.New(t)
	s := postgresStore(t)
	ctx := context.Background()
	roomID := uuid.New().String()

	_, err := s.LoadSnapshot(ctx, roomID)
	a.Equal(ErrNotFound, err)

	a.NoError(s.SaveSnapshot(ctx, roomID, []byte(`{"isFinished": false, "id": "a"}`)))
	rooms, err := s.UnfinishedRooms(ctx)
	a.NoError(err)
	a.Contains(rooms, roomID)

	a.NoError(s.SaveSnapshot(ctx, roomID, []byte(`{"isFinished": true, "id": "b"}`)))
	data, err := s.LoadSnapshot(ctx, roomID)
	a.NoError(err)
	a.JSONEq(`{"isFinished": true, "id": "b"}`, string(data))

	rooms, err = s.UnfinishedRooms(ctx)
	a.NoError(err)
	a.NotContains(rooms, roomID)

	a.Error(s.SaveSnapshot(ctx, roomID, []byte("not json")))
}
