package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/koding/multiconfig"
)

// Config defines codeit server configuration
type Config struct {
	// server config
	HTTPAddr      string `flagUsage:"specifies the http binding address" default:":8080"`
	EnableMetrics bool   `flagUsage:"enable prometheus metrics endpoint"`

	// execution service
	Backend    string        `flagUsage:"execution backend (piston, judge0)" default:"piston"`
	RunURL     string        `flagUsage:"execution service url (default depends on backend)"`
	RunToken   string        `flagUsage:"auth token sent to the execution service"`
	RunTimeout time.Duration `flagUsage:"execution request timeout" default:"30s"`

	// storage
	Store       string `flagUsage:"storage backend (memory, bolt, postgres)" default:"bolt"`
	BoltPath    string `flagUsage:"bolt database file" default:"codeit.db"`
	DatabaseURL string `flagUsage:"postgres connection url"`

	// sessions
	CookieKey      string        `flagUsage:"hex encoded 32 byte key sealing client cookies (random if empty)"`
	SessionTTL     time.Duration `flagUsage:"close editor sessions idle for longer than this (0 disables)" default:"30m"`
	ReaperInterval time.Duration `flagUsage:"idle session check interval" default:"1m"`

	// logger config
	Release     bool `flagUsage:"release level of logs"`
	Silent      bool `flagUsage:"do not print logs"`
	EnableDebug bool `flagUsage:"enable debug level logs"`
}

// Load loads config from an optional .env file, flags and environment
// variables
func (c *Config) Load() error {
	return c.load(nil)
}

func (c *Config) load(args []string) error {
	// a missing .env is fine
	_ = godotenv.Load()

	cl := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{
			Prefix:    "CODEIT",
			CamelCase: true,
		},
		&multiconfig.FlagLoader{
			CamelCase: true,
			EnvPrefix: "CODEIT",
			Args:      args,
		},
	)
	if os.Getpid() == 1 {
		c.Release = true
	}
	if err := cl.Load(c); err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks the enumerated options.
func (c *Config) Validate() error {
	switch c.Backend {
	case "piston", "judge0":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	switch c.Store {
	case "memory", "bolt":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("store postgres requires a database url")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	return nil
}
