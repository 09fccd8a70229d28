// Package legacy reads the SQLite games catalog of the previous bot.
package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/heartmarshall/ingrid-backend/internal/provider"
)

// DB is an open games database.
type DB struct {
	db *sql.DB
}

// Open opens the games database at path for reading.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("legacy: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("legacy: open %s: %w", path, err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA query_only=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("legacy: setting pragma %q: %w", p, err)
		}
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error { return d.db.Close() }

// Count returns the number of rows in the games table.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, "SELECT count(*) FROM games").Scan(&n); err != nil {
		return 0, fmt.Errorf("legacy: count games: %w", err)
	}
	return n, nil
}

// Each streams the games table in appID order and calls fn with batches
// of at most batchSize records. Rows without a positive id or a name are
// skipped. Iteration stops at the first error returned by fn.
func (d *DB) Each(ctx context.Context, batchSize int, fn func([]provider.StoreItem) error) (skipped int, err error) {
	if batchSize < 1 {
		batchSize = 500
	}

	query, args, err := sq.
		Select(
			"appID", "name", "release_date", "about_the_game", "header_image",
			"price", "developers", "publishers", "genres",
		).
		From("games").
		OrderBy("appID").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("legacy: build query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("legacy: query games: %w", err)
	}
	defer rows.Close()

	batch := make([]provider.StoreItem, 0, batchSize)
	for rows.Next() {
		var (
			id                             int64
			name, release, about, header   sql.NullString
			developers, publishers, genres sql.NullString
			price                          sql.NullFloat64
		)
		if err := rows.Scan(&id, &name, &release, &about, &header, &price, &developers, &publishers, &genres); err != nil {
			return skipped, fmt.Errorf("legacy: scan game: %w", err)
		}
		if id <= 0 || strings.TrimSpace(name.String) == "" {
			skipped++
			continue
		}

		batch = append(batch, provider.StoreItem{
			ID:               strconv.FormatInt(id, 10),
			Name:             strings.TrimSpace(name.String),
			ReleaseText:      release.String,
			ShortDescription: about.String,
			HeaderImage:      header.String,
			Price:            formatPrice(price),
			Developers:       splitList(developers.String),
			Publishers:       splitList(publishers.String),
			Genres:           splitList(genres.String),
		})
		if len(batch) == batchSize {
			if err := fn(batch); err != nil {
				return skipped, err
			}
			batch = make([]provider.StoreItem, 0, batchSize)
		}
	}
	if err := rows.Err(); err != nil {
		return skipped, fmt.Errorf("legacy: iterate games: %w", err)
	}

	if len(batch) > 0 {
		if err := fn(batch); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

func formatPrice(p sql.NullFloat64) string {
	if !p.Valid {
		return ""
	}
	if p.Float64 <= 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", p.Float64)
}

// splitList parses the comma separated lists of the games table.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
