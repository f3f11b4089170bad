package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationLockKey is the advisory lock held while migrating, so two
// servers starting against one database apply each file once.
const migrationLockKey int64 = 0x626c74 // "blt"

// RunMigrations applies the embedded migrations that schema_migrations does
// not list yet, in filename order and one transaction per file. Migrations
// only move forward.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	versions, err := migrationVersions(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring migration connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
		return fmt.Errorf("taking migration lock: %w", err)
	}
	defer conn.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", migrationLockKey) //nolint:errcheck // released with the session anyway

	if _, err := conn.Exec(ctx, queryCreateSchemaMigrations); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	for _, version := range versions {
		if err := applyMigration(ctx, conn.Conn(), version); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(ctx context.Context, conn *pgx.Conn, version string) error {
	var applied bool
	if err := conn.QueryRow(ctx, queryMigrationApplied, version).Scan(&applied); err != nil {
		return fmt.Errorf("checking migration %s: %w", version, err)
	}
	if applied {
		return nil
	}

	sql, err := migrationsFS.ReadFile(path.Join("migrations", version))
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", version, err)
	}

	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, queryRecordMigration, version)
		return err
	})
	if err != nil {
		return fmt.Errorf("applying migration %s: %w", version, err)
	}
	return nil
}

// migrationVersions lists the .sql files directly under dir, sorted.
func migrationVersions(fsys fs.FS, dir string) ([]string, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}
	versions := make([]string, 0, len(matches))
	for _, m := range matches {
		versions = append(versions, path.Base(m))
	}
	slices.Sort(versions)
	return versions, nil
}
