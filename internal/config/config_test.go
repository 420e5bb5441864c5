package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("THREADLY_HOME", home)
	t.Setenv("THREADLY_SERVER_URL", "")
	t.Setenv("THREADLY_WS_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3000", cfg.ServerURL)
	require.Equal(t, "ws://localhost:3000", cfg.WSURL)
	require.Equal(t, 20*time.Second, cfg.RequestTimeout)
	require.Equal(t, home, cfg.HomeDir)
	require.Equal(t, filepath.Join(home, "threadly.db"), cfg.StorePath())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("THREADLY_HOME", t.TempDir())
	t.Setenv("THREADLY_SERVER_URL", "https://threadly.example.com/")
	t.Setenv("THREADLY_WS_URL", "")
	t.Setenv("THREADLY_REQUEST_TIMEOUT", "5s")
	t.Setenv("THREADLY_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://threadly.example.com", cfg.ServerURL)
	require.Equal(t, "wss://threadly.example.com", cfg.WSURL)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.True(t, cfg.Debug)
}

func TestExplicitWSURLWins(t *testing.T) {
	t.Setenv("THREADLY_HOME", t.TempDir())
	t.Setenv("THREADLY_SERVER_URL", "http://threadly.example.com")
	t.Setenv("THREADLY_WS_URL", "wss://stream.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "wss://stream.example.com", cfg.WSURL)
}
