package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/sshpoker/sshpoker/internal/dependencies/clock"
	"github.com/sshpoker/sshpoker/internal/registry"
	"github.com/sshpoker/sshpoker/internal/session"
	"github.com/sshpoker/sshpoker/internal/storage"
	"github.com/sshpoker/sshpoker/internal/storage/memory"
	redisstorage "github.com/sshpoker/sshpoker/internal/storage/redis"
	sqlitestorage "github.com/sshpoker/sshpoker/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	Storage  storage.Storage
	Clock    clock.Clock
	Registry *registry.Registry
	Sessions *session.Manager
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
	// SQLitePath is the database file path (required if StorageType is "sqlite")
	SQLitePath string
	// SessionConfig holds lifecycle settings (zero value falls back to defaults)
	SessionConfig session.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
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
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	sessionCfg := cfg.SessionConfig
	if sessionCfg.MaxClients == 0 {
		sessionCfg = session.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), sessionCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, sessionCfg session.Config, logger *slog.Logger) *App {
	reg := registry.New(logger)
	mgr := session.NewManager(store, reg, clk, sessionCfg, logger)

	return &App{
		Storage:  store,
		Clock:    clk,
		Registry: reg,
		Sessions: mgr,
	}
}
