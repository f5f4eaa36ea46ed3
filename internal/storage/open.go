// Package storage provides the blob backends the workout store persists to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claude/mapty/internal/config"
	"github.com/claude/mapty/internal/store"
)

// ErrNotConfigured is returned for an unknown storage driver.
var ErrNotConfigured = errors.New("storage driver not configured")

// Backend is a store.Persister that holds a connection or file handle.
type Backend interface {
	store.Persister
	Close() error
}

var (
	_ Backend = (*SQLite)(nil)
	_ Backend = (*Postgres)(nil)
	_ Backend = (*Valkey)(nil)
	_ Backend = (*Memory)(nil)
)

// Open connects the backend selected by cfg.Driver. For postgres the
// embedded migrations are applied first.
func Open(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (Backend, error) {
	switch cfg.Driver {
	case "sqlite":
		b, err := OpenSQLite(cfg.SQLite.Path, cfg.Key)
		if err != nil {
			return nil, err
		}
		log.Info("storage opened", "driver", "sqlite", "path", cfg.SQLite.Path)
		return b, nil
	case "postgres":
		dsn := cfg.Postgres.DSN()
		if err := RunMigrations(dsn); err != nil {
			return nil, err
		}
		log.Info("migrations applied")
		b, err := NewPostgres(ctx, dsn, cfg.Key)
		if err != nil {
			return nil, err
		}
		log.Info("storage opened", "driver", "postgres", "host", cfg.Postgres.Host)
		return b, nil
	case "valkey":
		b, err := NewValkey(cfg.Valkey.Addr, cfg.Key)
		if err != nil {
			return nil, err
		}
		log.Info("storage opened", "driver", "valkey", "addr", cfg.Valkey.Addr)
		return b, nil
	case "memory":
		log.Warn("storage opened", "driver", "memory", "note", "workouts are lost on restart")
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotConfigured, cfg.Driver)
}
