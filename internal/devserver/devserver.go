// Package devserver wires together a self-contained Scene Hunter
// backend for local development and testing.
package devserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/scene-hunter/scenehunter/internal/devserver/api"
	"github.com/scene-hunter/scenehunter/internal/devserver/auth"
	"github.com/scene-hunter/scenehunter/internal/devserver/room"
	"github.com/scene-hunter/scenehunter/internal/devserver/sse"
	"github.com/scene-hunter/scenehunter/internal/devserver/storage"
	"github.com/scene-hunter/scenehunter/internal/devserver/storage/memory"
	redisstorage "github.com/scene-hunter/scenehunter/internal/devserver/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired server components
type App struct {
	Storage     storage.Storage
	Clock       clockwork.Clock
	AuthService *auth.Service
	RoomService *room.Service
	HubManager  *sse.HubManager
	Handler     http.Handler
}

// Config holds configuration for the server factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Clock is the time source (optional, real clock by default)
	Clock clockwork.Clock
	// AuthConfig holds auth settings; zero value means defaults
	AuthConfig auth.Config
	// RoomConfig holds room settings; zero value means defaults
	RoomConfig room.Config
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if
	// StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new server with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
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
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	authService := auth.New(clk, cfg.AuthConfig)
	hubManager := sse.NewHubManager(logger)
	roomService := room.New(store, hubManager, logger, cfg.RoomConfig)

	handler := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthService: authService,
		RoomService: roomService,
		HubManager:  hubManager,
	})

	return &App{
		Storage:     store,
		Clock:       clk,
		AuthService: authService,
		RoomService: roomService,
		HubManager:  hubManager,
		Handler:     handler,
	}, nil
}
