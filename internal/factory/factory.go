package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dlsl-isg/reaction-ring/internal/api/sse"
	"github.com/dlsl-isg/reaction-ring/internal/dependencies/clock"
	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/services/identity"
	"github.com/dlsl-isg/reaction-ring/internal/services/roster"
	"github.com/dlsl-isg/reaction-ring/internal/services/scan"
	"github.com/dlsl-isg/reaction-ring/internal/services/scoring"
	"github.com/dlsl-isg/reaction-ring/internal/services/session"
	"github.com/dlsl-isg/reaction-ring/internal/storage"
	filestorage "github.com/dlsl-isg/reaction-ring/internal/storage/file"
	"github.com/dlsl-isg/reaction-ring/internal/storage/memory"
	redisstorage "github.com/dlsl-isg/reaction-ring/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeFile   = "file"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Store

	// External dependencies
	Clock    clock.Clock
	Resolver identity.Resolver

	// Services
	ScoringEngine     *scoring.Engine
	SessionController *session.Controller
	ScanBuffer        *scan.Buffer
	Cache             *roster.Cache
	Importer          *roster.Importer

	// Display fan-out
	Hub         *sse.Hub
	Broadcaster *sse.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "file")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// FileConfig holds shared directory settings (required if StorageType is "file")
	FileConfig *filestorage.Config
	// MaxCatch is the number of balls thrown per attempt
	// If zero, defaults to scoring.DefaultMaxCatch
	MaxCatch int
	// ScanConfig holds scan buffer settings (optional)
	ScanConfig scan.Config
	// IdentityConfig holds student API settings (optional)
	IdentityConfig identity.Config
	// Resolver overrides the HTTP resolver (useful for testing)
	Resolver identity.Resolver
	// ImportChunkSize bounds one bulk import write (optional)
	ImportChunkSize int
	// LeaderboardSize is how many entries Top returns by default (optional)
	LeaderboardSize int
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeFile:
		if cfg.FileConfig == nil {
			return nil, errors.New("FileConfig required when StorageType is file")
		}
		fileStore, err := filestorage.New(*cfg.FileConfig)
		if err != nil {
			return nil, err
		}
		store = fileStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'file'")
	}

	clk := clock.New()

	resolver := cfg.Resolver
	if resolver == nil {
		identityCfg := cfg.IdentityConfig
		if identityCfg.BaseURL == "" {
			identityCfg = identity.DefaultConfig()
		}
		resolver = identity.NewHTTPResolver(identityCfg, logger)
	}

	return newWithDependencies(store, clk, resolver, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, resolver identity.Resolver, cfg Config, logger *slog.Logger) *App {
	hub := sse.NewHub(logger)
	broadcaster := sse.NewBroadcaster(hub, logger)

	engine := scoring.New(cfg.MaxCatch)
	controller := session.NewController(store, engine, clk, logger)

	// The cache pushes a fresh snapshot of both records on every applied
	// change; the displays replace their view wholesale
	var cache *roster.Cache
	leaderboardSize := cfg.LeaderboardSize
	if leaderboardSize <= 0 {
		leaderboardSize = roster.DefaultLeaderboardSize
	}
	cache = roster.NewCache(store, logger, func() {
		broadcaster.BroadcastLeaderboard(cache.Top(leaderboardSize))
		broadcaster.BroadcastSession(cache.Session())
	})

	scanCfg := cfg.ScanConfig
	if scanCfg.EmailDomain == "" {
		scanCfg.EmailDomain = scan.DefaultConfig().EmailDomain
	}
	status := func() model.SessionStatus {
		return cache.Session().Status
	}
	buffer := scan.NewBuffer(scanCfg, resolver, controller, status, clk, logger,
		broadcaster.BroadcastScanRejected)

	importer := roster.NewImporter(store, cfg.ImportChunkSize, clk, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Resolver:          resolver,
		ScoringEngine:     engine,
		SessionController: controller,
		ScanBuffer:        buffer,
		Cache:             cache,
		Importer:          importer,
		Hub:               hub,
		Broadcaster:       broadcaster,
	}
}

// Start brings the live components up: the SSE hub loop and the cache's
// initial load plus feed subscription
func (a *App) Start(ctx context.Context) {
	go a.Hub.Run()
	a.Cache.Start(ctx)
}

// Close releases everything Start acquired, then the storage backend
func (a *App) Close() error {
	a.Cache.Stop()
	a.Hub.Close()
	return a.Storage.Close()
}
