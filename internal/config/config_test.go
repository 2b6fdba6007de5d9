package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MSLCOACH_DB", t.TempDir()+"/test.db")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.Debug)
	require.Equal(t, "openai", cfg.LLM.Provider)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MSLCOACH_DB", t.TempDir()+"/test.db")
	t.Setenv("MSLCOACH_ADDR", "127.0.0.1:9999")
	t.Setenv("MSLCOACH_LOG_LEVEL", "debug")
	t.Setenv("MSLCOACH_DEBUG", "true")
	t.Setenv("MSLCOACH_LLM_PROVIDER", "mock")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", cfg.Addr)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, cfg.Debug)
	require.Equal(t, "mock", cfg.LLM.Provider)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(&Config{LogLevel: "warn"})
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = NewLogger(&Config{LogLevel: "loud"})
	require.Error(t, err)
}
