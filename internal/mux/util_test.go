package mux

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"truco-server/internal/config"
	"truco-server/internal/jwt"
	"truco-server/internal/rng"
	"truco-server/internal/util"
	"truco-server/pkg/room"
	"truco-server/pkg/store"
	"truco-server/pkg/truco"
)

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

func setupJWT(t *testing.T) {
	t.Helper()

	keyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}

		testKey = key
	})

	jwt.SetKeys(testKey, &testKey.PublicKey)

	restore := util.SetEnv("TRUCO_ADMINS", "admin")
	defer restore()
	require.NoError(t, config.Load())
}

func token(t *testing.T, playerID string) string {
	t.Helper()

	signed, err := jwt.Sign(playerID)
	require.NoError(t, err)

	return signed
}

func newTestMux(t *testing.T) (*Mux, *httptest.Server) {
	t.Helper()
	setupJWT(t)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	engine := truco.NewEngine(logger, truco.WithGenerator(rng.NewSeeded(1)))
	pitBoss := room.NewPitBoss(engine, store.NewMemory(), nil, nil, room.Options{SaveTimeout: time.Second})

	m := NewMux("v1.2.3", pitBoss)
	ts := httptest.NewServer(m)
	t.Cleanup(func() {
		ts.Close()
		pitBoss.EndShift()
	})

	return m, ts
}

func testRoster() []truco.RosterEntry {
	return []truco.RosterEntry{
		{PlayerID: "p0", Name: "Player 0", Team: truco.TeamA, SeatIndex: 0},
		{PlayerID: "p1", Name: "Player 1", Team: truco.TeamB, SeatIndex: 1},
	}
}

func createMatch(t *testing.T, ts *httptest.Server, roomID string) {
	t.Helper()

	assertPost(t, ts, "/match/"+roomID, postMatchPayload{Roster: testRoster()}, nil, http.StatusCreated, token(t, "admin"))
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	if len(signedJWT) > 0 {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", signedJWT[0]))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := io.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return resp
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
		}
	}

	return resp
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}
