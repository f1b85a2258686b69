package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/room-reservations/internal/config"
	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/redis"
	"github.com/example/room-reservations/internal/persistence/sqlite"
	"github.com/example/room-reservations/internal/persistence/sqlite/migration"
)

// storeHandle is the configured slot store plus its lifecycle hooks.
type storeHandle struct {
	persistence.SlotStore
	ping  func(ctx context.Context) error
	close func() error
}

func (h storeHandle) Ping(ctx context.Context) error {
	if h.ping == nil {
		return nil
	}
	return h.ping(ctx)
}

func (h storeHandle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// openStore connects the backend selected by cfg.Store. SQLite databases are
// migrated before use.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storeHandle, error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.WarnContext(ctx, "using in-memory store, reservations are lost on exit")
		return storeHandle{SlotStore: persistence.NewMemoryStore()}, nil

	case config.StoreRedis:
		store, err := redis.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return storeHandle{}, err
		}
		logger.InfoContext(ctx, "connected to redis")
		return storeHandle{SlotStore: store, ping: store.Ping, close: store.Close}, nil

	case config.StoreSQLite, "":
		storage, err := openSQLite(ctx, cfg, logger)
		if err != nil {
			return storeHandle{}, err
		}
		if err := storage.Migrate(ctx); err != nil {
			return storeHandle{}, errors.Join(fmt.Errorf("failed to apply migrations: %w", err), storage.Close())
		}
		return storeHandle{SlotStore: storage, ping: storage.Ping, close: storage.Close}, nil

	default:
		return storeHandle{}, fmt.Errorf("unsupported store %q", cfg.Store)
	}
}

func openSQLite(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sqlite.Storage, error) {
	storage, err := sqlite.Open(ctx, migration.DefaultSQLiteConfig(cfg.DatabasePath), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	logger.InfoContext(ctx, "opened sqlite database", "path", cfg.DatabasePath)
	return storage, nil
}
