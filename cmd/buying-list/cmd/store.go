package cmd

import (
	"context"
	"fmt"

	"github.com/donaldgifford/buying-list/internal/config"
	"github.com/donaldgifford/buying-list/internal/store"
)

// openStore returns the configured store and a func that releases it.
func openStore(ctx context.Context, cfg *config.StorageConfig) (store.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pg, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		return pg, pg.Close, nil
	default:
		fs, err := store.NewFileStore(cfg.File.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening data file: %w", err)
		}
		return fs, func() {}, nil
	}
}
