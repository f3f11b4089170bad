package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/buying-list/internal/config"
	"github.com/donaldgifford/buying-list/internal/store"
	"github.com/donaldgifford/buying-list/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the storage schema",
	Long: "Runs the database migrations for the postgres driver. For the file\n" +
		"driver it creates the data file with the default categories and settings.",
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	if cfg.Storage.Driver != config.DriverPostgres {
		fs, err := store.NewFileStore(cfg.Storage.File.Path)
		if err != nil {
			return fmt.Errorf("opening data file: %w", err)
		}
		if err := fs.Migrate(ctx); err != nil {
			return fmt.Errorf("initializing data file: %w", err)
		}
		log.Info("data file ready", "path", cfg.Storage.File.Path)
		return nil
	}

	pool, err := pgxpool.New(ctx, cfg.Storage.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	log.Info("running migrations", "host", cfg.Storage.Database.Host)

	if err := store.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	log.Info("migrations complete")
	return nil
}
