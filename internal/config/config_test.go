package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"truco-server/internal/util"
)

func TestInstance(t *testing.T) {
	defer util.SetEnv("TRUCO_CONFIG_FILE", "testdata/config.yaml")()
	defer util.SetEnv("TRUCO_JWT_PRIVATE_KEY", "private2.key")()

	a := assert.New(t)
	assert.NoError(t, Load())
	cfg := Instance()
	a.Equal("postgres://truco@db:5432/truco?sslmode=disable", cfg.PGDSN)
	a.Equal("public.pem", cfg.JWT.PublicKey)
	a.Equal("private2.key", cfg.JWT.PrivateKey)
	a.Equal("nats://nats:4222", cfg.NATS.URL)
	a.Equal("truco", cfg.NATS.SubjectPrefix, "defaults survive a partial file")
	a.True(cfg.IsAdmin("admin-1"))
	a.False(cfg.IsAdmin("player-1"))

	opts := cfg.MatchOptions()
	a.Equal(15, opts.Target)
	a.False(opts.FlorEnabled)
	a.True(opts.ContraFlor)
	a.Equal(45*time.Second, cfg.TurnTimeout())
	a.Equal(2*time.Second, cfg.AutoDealDelay())
	a.Equal("debug", cfg.Log.Level)

	// ensure that it's only loaded once
	_ = os.Setenv("TRUCO_JWT_PRIVATE_KEY", "private3.key")
	// ensure we aren't using a pointer
	cfg.JWT.PrivateKey = "bad"
	cfg = Instance()
	a.Equal("private2.key", cfg.JWT.PrivateKey)
}

func TestDefaults(t *testing.T) {
	defer util.SetEnv("TRUCO_CONFIG_FILE", "testdata/missing.yaml")()
	defer util.SetEnv("TRUCO_MATCH_TARGET", "20")()

	assert.NoError(t, Load())
	cfg := Instance()
	assert.Equal(t, "./sql", cfg.MigrationsPath)
	assert.Equal(t, 20, cfg.MatchOptions().Target)
	assert.True(t, cfg.MatchOptions().FlorEnabled)
	assert.Equal(t, time.Duration(0), cfg.TurnTimeout())
}

func TestLoad_badFile(t *testing.T) {
	defer util.SetEnv("TRUCO_CONFIG_FILE", "testdata")()
	assert.Error(t, Load())
}
