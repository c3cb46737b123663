package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
	"truco-server/internal/util"
	"truco-server/pkg/truco"
)

// Config provides configuration for the truco server
type Config struct {
	loaded         bool
	PGDSN          string   `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string   `yaml:"migrationsPath" envconfig:"migrations_path"`
	Admins         []string `yaml:"admins" envconfig:"admins"`
	JWT            struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	} `yaml:"jwt"`
	NATS struct {
		URL           string `yaml:"url" envconfig:"url"`
		SubjectPrefix string `yaml:"subjectPrefix" envconfig:"subject_prefix"`
	} `yaml:"nats"`
	Match struct {
		Target          int  `yaml:"target" envconfig:"target"`
		FlorEnabled     bool `yaml:"florEnabled" envconfig:"flor_enabled"`
		ContraFlor      bool `yaml:"contraFlor" envconfig:"contra_flor"`
		AutoDealDelayMS int  `yaml:"autoDealDelayMs" envconfig:"auto_deal_delay_ms"`
		TurnTimeoutSec  int  `yaml:"turnTimeoutSec" envconfig:"turn_timeout_sec"`
	} `yaml:"match"`
	Log struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
}

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() Config {
	var c Config
	c.PGDSN = "postgres://postgres@localhost:5432/truco?sslmode=disable"
	c.MigrationsPath = "./sql"
	c.Admins = []string{}
	c.JWT.PublicKey = ".keys/public.pem"
	c.JWT.PrivateKey = ".keys/private.key"
	c.NATS.SubjectPrefix = "truco"

	opts := truco.DefaultOptions()
	c.Match.Target = opts.Target
	c.Match.FlorEnabled = opts.FlorEnabled
	c.Match.ContraFlor = opts.ContraFlor
	c.Match.AutoDealDelayMS = 2000

	c.Log.Level = "info"
	return c
}

// MatchOptions returns the house rules new matches are created with
func (c Config) MatchOptions() truco.Options {
	return truco.Options{
		Target:      c.Match.Target,
		FlorEnabled: c.Match.FlorEnabled,
		ContraFlor:  c.Match.ContraFlor,
	}
}

// AutoDealDelay is how long a room waits after a hand before dealing the next one
// Zero disables auto-deal.
func (c Config) AutoDealDelay() time.Duration {
	return time.Duration(c.Match.AutoDealDelayMS) * time.Millisecond
}

// TurnTimeout is how long a player may take before they are folded
// Zero disables the timeout.
func (c Config) TurnTimeout() time.Duration {
	return time.Duration(c.Match.TurnTimeoutSec) * time.Second
}

// IsAdmin returns true if the player may create matches
func (c Config) IsAdmin(playerID string) bool {
	for _, admin := range c.Admins {
		if admin == playerID {
			return true
		}
	}

	return false
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A .env file and the YAML config file are both optional; environment variables win.
func Load() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}

	config = DefaultConfig()

	configFile := util.Getenv("TRUCO_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if file != nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return err
		}
	}

	if err := envconfig.Process("truco", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
