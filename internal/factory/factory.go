package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/resonance/internal/api/sse"
	"github.com/mcoot/resonance/internal/dependencies/clock"
	"github.com/mcoot/resonance/internal/dependencies/fingerprint"
	"github.com/mcoot/resonance/internal/model"
	"github.com/mcoot/resonance/internal/services/identity"
	"github.com/mcoot/resonance/internal/services/player"
	"github.com/mcoot/resonance/internal/services/progress"
	"github.com/mcoot/resonance/internal/services/settings"
	"github.com/mcoot/resonance/internal/storage"
	"github.com/mcoot/resonance/internal/storage/memory"
	redisstorage "github.com/mcoot/resonance/internal/storage/redis"
	"github.com/mcoot/resonance/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock         clock.Clock
	Fingerprinter fingerprint.Fingerprinter

	// Services
	IdentityService *identity.Service
	SettingsStore   *settings.Store
	PlayerMachine   *player.Machine
	ProgressClock   *progress.Clock

	// Event fan-out
	Hub         *sse.Hub
	Broadcaster *sse.Broadcaster

	unsubscribe []func()
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// Track is the now-playing track. Zero value uses model.DefaultTrack().
	Track model.Track
	// Fingerprinter identifies the calling device (optional)
	// If nil, device traits are read from the request context
	Fingerprinter fingerprint.Fingerprinter
	// HostFallback fingerprints the local machine when a request carries no
	// device traits. Ignored when Fingerprinter is set.
	HostFallback bool
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	fp := cfg.Fingerprinter
	if fp == nil {
		fp = fingerprint.NewContextFingerprinter()
		if cfg.HostFallback {
			fp = fingerprint.Chain{fp, fingerprint.NewHostFingerprinter()}
		}
	}

	track := cfg.Track
	if track.Duration <= 0 {
		track = model.DefaultTrack()
	}

	logger.Info("storage ready", slog.String("type", storageTypeOrDefault(cfg.StorageType)))

	return newWithDependencies(store, clock.New(), fp, track, logger), nil
}

func storageTypeOrDefault(t string) string {
	if t == "" {
		return StorageTypeMemory
	}
	return t
}

func newStorage(cfg Config) (storage.Storage, error) {
	switch storageTypeOrDefault(cfg.StorageType) {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return redisStore, nil
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.Open(cfg.SQLitePath)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing).
// It restores persisted settings and player state before returning.
func newWithDependencies(store storage.Storage, clk clock.Clock, fp fingerprint.Fingerprinter, track model.Track, logger *slog.Logger) *App {
	ctx := context.Background()

	hub := sse.NewHub(logger)
	go hub.Run()
	broadcaster := sse.NewBroadcaster(hub, logger)

	settingsStore := settings.New(store, broadcaster, logger)
	machine := player.New(store, settingsStore, track, logger)
	progressClock := progress.New(clk, progress.Interval, func() {
		machine.Tick(ctx)
	}, logger)

	unsubscribe := []func(){
		settingsStore.Subscribe(broadcaster.SettingsChanged),
		machine.Subscribe(broadcaster.PlayerChanged),
		machine.Subscribe(progressClock.Follow),
	}

	settingsStore.Load(ctx)
	machine.Load(ctx)

	return &App{
		Storage:         store,
		Clock:           clk,
		Fingerprinter:   fp,
		IdentityService: identity.New(store, fp, clk, logger),
		SettingsStore:   settingsStore,
		PlayerMachine:   machine,
		ProgressClock:   progressClock,
		Hub:             hub,
		Broadcaster:     broadcaster,
		unsubscribe:     unsubscribe,
	}
}

// Close stops the progress clock before the session goes away, disconnects
// event streams and releases storage
func (a *App) Close() error {
	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	a.ProgressClock.Stop()
	a.Hub.Close()

	if closer, ok := a.Storage.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
	}
	return nil
}
