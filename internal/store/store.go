// Package store opens the configured cooldown.Store backend.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"libdb.so/fogo-faucet/internal/config"
	"libdb.so/fogo-faucet/internal/cooldown"
	"libdb.so/fogo-faucet/internal/cooldown/badgerstore"
	"libdb.so/fogo-faucet/internal/cooldown/redisstore"
	"libdb.so/fogo-faucet/internal/cooldown/sqlstore"
)

// Open opens the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (cooldown.Store, error) {
	var (
		s   cooldown.Store
		err error
	)

	switch cfg.Driver {
	case "", "badger":
		s, err = badgerstore.Open(cfg.Path)
	case "sqlite":
		s, err = sqlstore.Open(cfg.Path)
	case "redis":
		s, err = redisstore.Open(ctx, cfg.RedisURL, cfg.KeyPrefix)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	slog.Info(
		"Cooldown store is open.",
		"driver", cfg.Driver,
		"path", cfg.Path)

	return s, nil
}
