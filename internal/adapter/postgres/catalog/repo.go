// Package catalog implements the CatalogItem repository using PostgreSQL.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/heartmarshall/ingrid-backend/internal/adapter/postgres"
	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

const table = "catalog_items"

var columns = []string{
	"id", "name", "name_normalized", "release_at", "release_precision",
	"release_text", "metadata", "created_at", "updated_at",
}

// upsertSuffix replaces every mutable column on conflict; created_at is kept.
const upsertSuffix = `ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	name_normalized = EXCLUDED.name_normalized,
	release_at = EXCLUDED.release_at,
	release_precision = EXCLUDED.release_precision,
	release_text = EXCLUDED.release_text,
	metadata = EXCLUDED.metadata,
	updated_at = EXCLUDED.updated_at`

// Repo provides catalog persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new catalog repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type itemRow struct {
	ID               string     `db:"id"`
	Name             string     `db:"name"`
	NameNormalized   string     `db:"name_normalized"`
	ReleaseAt        *time.Time `db:"release_at"`
	ReleasePrecision string     `db:"release_precision"`
	ReleaseText      *string    `db:"release_text"`
	Metadata         []byte     `db:"metadata"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

func (r itemRow) toDomain() domain.CatalogItem {
	item := domain.CatalogItem{
		ID:               r.ID,
		Name:             r.Name,
		NameNormalized:   r.NameNormalized,
		ReleasePrecision: domain.ReleasePrecision(r.ReleasePrecision),
		ReleaseText:      r.ReleaseText,
		Metadata:         r.Metadata,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.ReleaseAt != nil {
		t := r.ReleaseAt.UTC()
		item.ReleaseAt = &t
	}
	return item
}

func metadataOrEmpty(m []byte) []byte {
	if len(m) == 0 {
		return []byte(`{}`)
	}
	return m
}

// Upsert inserts the item or replaces the stored version with the same id.
// The item must already be validated.
func (r *Repo) Upsert(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error) {
	now := time.Now().UTC()
	query, args, err := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(item.ID, item.Name, item.NameNormalized, item.ReleaseAt, string(item.ReleasePrecision),
			item.ReleaseText, metadataOrEmpty(item.Metadata), now, now).
		Suffix(upsertSuffix + " RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert catalog item: %w", err)
	}

	var row itemRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, query, args...); err != nil {
		return nil, postgres.MapError(err, "catalog_item", item.ID)
	}

	out := row.toDomain()
	return &out, nil
}

// UpsertBatch upserts items in a single statement and returns the number of
// rows written. When the batch repeats an id, the last occurrence wins.
func (r *Repo) UpsertBatch(ctx context.Context, items []domain.CatalogItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	last := make(map[string]int, len(items))
	for i, it := range items {
		last[it.ID] = i
	}

	now := time.Now().UTC()
	insert := postgres.Builder().Insert(table).Columns(columns...)
	for i, it := range items {
		if last[it.ID] != i {
			continue
		}
		insert = insert.Values(it.ID, it.Name, it.NameNormalized, it.ReleaseAt, string(it.ReleasePrecision),
			it.ReleaseText, metadataOrEmpty(it.Metadata), now, now)
	}

	query, args, err := insert.Suffix(upsertSuffix).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build upsert catalog batch: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return 0, postgres.MapError(err, "catalog_item", "batch")
	}
	return int(tag.RowsAffected()), nil
}

// GetByID returns the item with the given id.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id string) (*domain.CatalogItem, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get catalog item: %w", err)
	}

	var row itemRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, query, args...); err != nil {
		return nil, postgres.MapError(err, "catalog_item", id)
	}

	item := row.toDomain()
	return &item, nil
}

// ListCandidates returns up to limit items whose normalized name contains at
// least one token of text. Normalization leaves only letters, digits and
// single spaces, so the patterns carry no LIKE metacharacters.
//
// Rows are ranked in SQL by the same tiers the resolver scores with (exact
// name, name prefix, substring, then the number of query tokens found), so
// the limit drops only the weakest candidates. Ties follow the resolver's
// order: shorter name, then name, then id.
func (r *Repo) ListCandidates(ctx context.Context, text string, limit int) ([]domain.CatalogItem, error) {
	normalized := domain.NormalizeText(text)
	tokens := domain.Tokens(normalized)
	if len(tokens) == 0 || limit <= 0 {
		return []domain.CatalogItem{}, nil
	}

	anyToken := make(squirrel.Or, 0, len(tokens))
	found := make([]string, 0, len(tokens))
	foundArgs := make([]any, 0, len(tokens))
	for _, tok := range tokens {
		anyToken = append(anyToken, squirrel.ILike{"name_normalized": "%" + tok + "%"})
		found = append(found, "(name_normalized LIKE ?)::int")
		foundArgs = append(foundArgs, "%"+tok+"%")
	}

	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(anyToken).
		OrderByClause(
			"CASE WHEN name_normalized = ? THEN 3 WHEN name_normalized LIKE ? THEN 2 WHEN name_normalized LIKE ? THEN 1 ELSE 0 END DESC",
			normalized, normalized+"%", "%"+normalized+"%",
		).
		OrderByClause("("+strings.Join(found, " + ")+") DESC", foundArgs...).
		OrderBy("octet_length(name) ASC", `name COLLATE "C" ASC`, "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list candidates: %w", err)
	}

	return r.selectItems(ctx, query, args)
}

// ListWithPendingSubscriptions returns up to limit items that have at least
// one pending subscription and an id sorting after afterID, ordered by id.
// An empty afterID starts from the beginning.
func (r *Repo) ListWithPendingSubscriptions(ctx context.Context, afterID string, limit int) ([]domain.CatalogItem, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From(table + " c").
		Where("EXISTS (SELECT 1 FROM subscriptions s WHERE s.item_id = c.id AND s.notified_at IS NULL)").
		Where(`c.id COLLATE "C" > ?`, afterID).
		OrderBy(`c.id COLLATE "C" ASC`).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list with pending subscriptions: %w", err)
	}

	return r.selectItems(ctx, query, args)
}

func (r *Repo) selectItems(ctx context.Context, query string, args []any) ([]domain.CatalogItem, error) {
	var rows []itemRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, "catalog_item", "list")
	}

	items := make([]domain.CatalogItem, len(rows))
	for i, row := range rows {
		items[i] = row.toDomain()
	}
	return items, nil
}
