package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/buddy/internal/config"
	"github.com/abhisek/buddy/internal/store"
)

// backend bundles the session store and the LLM event log. Events always
// live in the SQLite database; sessions go wherever the config says.
type backend struct {
	db       *store.DB
	sessions store.SessionStore
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	path, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	b := &backend{db: db}
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		b.sessions = db.Sessions()
	case config.BackendFile:
		b.sessions, err = store.NewFileStore(cfg.Store.SessionDir)
	case config.BackendRedis:
		b.sessions, err = store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			Prefix:   cfg.Store.Redis.Prefix,
		})
	case config.BackendMemory:
		b.sessions = store.NewMemoryStore()
	default:
		err = fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s session store: %w", cfg.Store.Backend, err)
	}
	return b, nil
}

func (b *backend) events() *store.EventRepo {
	return b.db.EventRepo()
}

func (b *backend) Close() error {
	err := b.sessions.Close()
	if dbErr := b.db.Close(); err == nil {
		err = dbErr
	}
	return err
}
