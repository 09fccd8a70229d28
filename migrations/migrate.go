// Package migrations embeds the goose SQL migrations of the service schema.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
)

//go:embed *.sql
var migrationFiles embed.FS

// FS returns the embedded migration files.
func FS() fs.FS {
	return migrationFiles
}

// Apply opens dsn with the pgx database/sql driver and applies all pending
// migrations. Concurrent callers are serialized by a PostgreSQL advisory lock.
// It returns the number of migrations applied.
func Apply(ctx context.Context, dsn string) (int, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return 0, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("ping database: %w", err)
	}

	return ApplyDB(ctx, db)
}

// ApplyDB applies pending migrations using an already opened *sql.DB.
func ApplyDB(ctx context.Context, db *sql.DB) (int, error) {
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return 0, fmt.Errorf("create migration lock: %w", err)
	}

	// goose.NewProvider handles $$-delimited statements, unlike the legacy goose.Up.
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrationFiles,
		goose.WithSessionLocker(locker),
	)
	if err != nil {
		return 0, fmt.Errorf("goose new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose up: %w", err)
	}
	return len(results), nil
}
