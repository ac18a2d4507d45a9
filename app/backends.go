package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kilianp07/rentmatch/config"
	"github.com/kilianp07/rentmatch/core/directory"
	"github.com/kilianp07/rentmatch/core/store"
	"github.com/kilianp07/rentmatch/infra/memory"
	"github.com/kilianp07/rentmatch/infra/postgres"
)

// Backends holds the store and directory selected by configuration.
type Backends struct {
	Store     store.Store
	Directory directory.Directory
	// Pool is set when either side uses PostgreSQL.
	Pool *pgxpool.Pool
}

// OpenBackends connects the configured store and directory.
func OpenBackends(ctx context.Context, cfg *config.Config) (*Backends, error) {
	b := &Backends{}
	if cfg.Store.Type == config.BackendPostgres || cfg.Directory.Type == config.BackendPostgres {
		pool, err := postgres.Connect(ctx, cfg.Store.Postgres)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		b.Pool = pool
	}
	if cfg.Store.Type == config.BackendPostgres {
		b.Store = postgres.NewStore(b.Pool)
	} else {
		b.Store = memory.NewStore()
	}
	if cfg.Directory.Type == config.BackendPostgres {
		b.Directory = postgres.NewDirectory(b.Pool)
		return b, nil
	}
	if cfg.Directory.Fixture == "" {
		b.Directory = memory.NewDirectory()
		return b, nil
	}
	dir, err := memory.LoadFixture(cfg.Directory.Fixture)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Directory = dir
	return b, nil
}

// Close releases the pool, if any.
func (b *Backends) Close() {
	if b.Pool != nil {
		b.Pool.Close()
	}
}
