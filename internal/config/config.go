package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"mslcoach/internal/llm"
	"mslcoach/internal/store"
)

// Config is the application-level configuration, parsed from the
// environment with the MSLCOACH_ prefix. LLM provider settings live in
// llm.Config and are loaded alongside.
type Config struct {
	// Addr is the HTTP listen address for the serve command.
	Addr string `env:"MSLCOACH_ADDR" envDefault:":8080"`

	// DBPath overrides the default SQLite database location.
	DBPath string `env:"MSLCOACH_DB"`

	// QuestionsPath and PersonasPath override the embedded banks.
	QuestionsPath string `env:"MSLCOACH_QUESTIONS"`
	PersonasPath  string `env:"MSLCOACH_PERSONAS"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"MSLCOACH_LOG_LEVEL" envDefault:"info"`

	// Debug switches logging to the human-readable development encoder.
	Debug bool `env:"MSLCOACH_DEBUG"`

	LLM llm.Config `env:"-"`
}

// Load reads .env (when present) and then the environment. Missing
// optional values fall back to defaults; the LLM block is validated by
// its consumer, not here, so commands that never call the oracle work
// without API keys.
func Load() (*Config, error) {
	// A missing .env file is not an error; the environment stands alone.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.LLM = llm.ConfigFromEnv()

	if cfg.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = p
	}

	return cfg, nil
}
