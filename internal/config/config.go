package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the full server configuration, populated from environment
// variables. Defaults match the reference booth deployment: one machine,
// in-process storage, scores out of six.
type Config struct {
	// Addr is the HTTP listen address
	Addr string `env:"RING_ADDR" envDefault:":8080"`

	// StoreBackend selects the shared state backend: memory, redis or file
	StoreBackend string `env:"RING_STORE" envDefault:"memory"`

	// RedisURL is the Redis connection URL, used when StoreBackend is redis
	RedisURL string `env:"RING_REDIS_URL" envDefault:"redis://localhost:6379"`

	// DataDir is the shared state directory, used when StoreBackend is file
	DataDir string `env:"RING_DATA_DIR" envDefault:"data"`

	// MaxCatch is the number of balls thrown per attempt
	MaxCatch int `env:"RING_MAX_CATCH" envDefault:"6"`

	// ScanIdleTimeout finalizes a scan after this pause in keystrokes
	ScanIdleTimeout time.Duration `env:"RING_SCAN_IDLE_TIMEOUT" envDefault:"500ms"`

	// PollInterval is the file backend's change-detection backstop
	PollInterval time.Duration `env:"RING_POLL_INTERVAL" envDefault:"1s"`

	// ImportChunkSize bounds one bulk import write
	ImportChunkSize int `env:"RING_IMPORT_CHUNK_SIZE" envDefault:"500"`

	// LeaderboardSize is how many entries the public display shows
	LeaderboardSize int `env:"RING_LEADERBOARD_SIZE" envDefault:"10"`

	// StudentAPIURL is the identity resolution endpoint
	StudentAPIURL string `env:"RING_STUDENT_API_URL" envDefault:"https://dlsl-student-api.onrender.com"`

	// StudentEmailDomain is the institutional email suffix required of a
	// valid identity
	StudentEmailDomain string `env:"RING_STUDENT_EMAIL_DOMAIN" envDefault:"@dlsl.edu.ph"`

	// ResolveTimeout bounds one identity lookup
	ResolveTimeout time.Duration `env:"RING_RESOLVE_TIMEOUT" envDefault:"10s"`
}

// Load parses configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
