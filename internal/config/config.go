// Package config loads client configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the client needs to reach a Threadly server and
// keep local state.
type Config struct {
	// ServerURL is the base URL for one-shot HTTP calls, without a
	// trailing slash.
	ServerURL string `env:"THREADLY_SERVER_URL" envDefault:"http://localhost:3000"`
	// WSURL is the base URL for duplex observe channels. Derived from
	// ServerURL when unset.
	WSURL string `env:"THREADLY_WS_URL"`
	// HomeDir is where the client stores local state (auth data, prefs).
	HomeDir string `env:"THREADLY_HOME"`
	// RequestTimeout bounds every one-shot request.
	RequestTimeout time.Duration `env:"THREADLY_REQUEST_TIMEOUT" envDefault:"20s"`
	// Debug enables verbose logging.
	Debug bool `env:"THREADLY_DEBUG"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.WSURL == "" {
		cfg.WSURL = deriveWSURL(cfg.ServerURL)
	}
	cfg.WSURL = strings.TrimRight(cfg.WSURL, "/")

	if cfg.HomeDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.HomeDir = filepath.Join(homeDir, ".threadly")
	}
	if err := os.MkdirAll(cfg.HomeDir, 0700); err != nil {
		return nil, fmt.Errorf("create threadly home: %w", err)
	}

	return cfg, nil
}

// StorePath is the location of the local key-value store file.
func (c *Config) StorePath() string {
	return filepath.Join(c.HomeDir, "threadly.db")
}

func deriveWSURL(serverURL string) string {
	switch {
	case strings.HasPrefix(serverURL, "https://"):
		return "wss://" + strings.TrimPrefix(serverURL, "https://")
	case strings.HasPrefix(serverURL, "http://"):
		return "ws://" + strings.TrimPrefix(serverURL, "http://")
	default:
		return serverURL
	}
}
