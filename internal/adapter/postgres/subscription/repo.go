// Package subscription implements the Subscription repository using PostgreSQL.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/heartmarshall/ingrid-backend/internal/adapter/postgres"
	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

const (
	table = "subscriptions"

	// pendingIndex enforces at most one pending subscription per (user, item).
	pendingIndex = "ux_subscriptions_pending"
)

var columns = []string{"id", "user_id", "item_id", "created_at", "notified_at"}

// Repo provides subscription persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new subscription repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type subscriptionRow struct {
	ID         uuid.UUID  `db:"id"`
	UserID     string     `db:"user_id"`
	ItemID     string     `db:"item_id"`
	CreatedAt  time.Time  `db:"created_at"`
	NotifiedAt *time.Time `db:"notified_at"`
}

func (r subscriptionRow) toDomain() domain.Subscription {
	return domain.Subscription{
		ID:         r.ID,
		UserID:     r.UserID,
		ItemID:     r.ItemID,
		CreatedAt:  r.CreatedAt.UTC(),
		NotifiedAt: utcPtr(r.NotifiedAt),
	}
}

type viewRow struct {
	subscriptionRow
	ItemName         string     `db:"item_name"`
	ReleaseAt        *time.Time `db:"release_at"`
	ReleasePrecision string     `db:"release_precision"`
}

// dueRow is a pending subscription LEFT JOINed with its catalog item.
// CatalogID is NULL when the item no longer exists.
type dueRow struct {
	subscriptionRow
	CatalogID        *string    `db:"catalog_id"`
	ItemName         *string    `db:"item_name"`
	NameNormalized   *string    `db:"item_name_normalized"`
	ReleaseAt        *time.Time `db:"item_release_at"`
	ReleasePrecision *string    `db:"item_release_precision"`
	ReleaseText      *string    `db:"item_release_text"`
	Metadata         []byte     `db:"item_metadata"`
	ItemCreatedAt    *time.Time `db:"item_created_at"`
	ItemUpdatedAt    *time.Time `db:"item_updated_at"`
}

func (r dueRow) toDomain() domain.DueReminder {
	due := domain.DueReminder{Subscription: r.subscriptionRow.toDomain()}
	if r.CatalogID == nil {
		return due
	}
	item := domain.CatalogItem{
		ID:          *r.CatalogID,
		ReleaseAt:   utcPtr(r.ReleaseAt),
		ReleaseText: r.ReleaseText,
		Metadata:    r.Metadata,
	}
	if r.ItemName != nil {
		item.Name = *r.ItemName
	}
	if r.NameNormalized != nil {
		item.NameNormalized = *r.NameNormalized
	}
	if r.ReleasePrecision != nil {
		item.ReleasePrecision = domain.ReleasePrecision(*r.ReleasePrecision)
	}
	if r.ItemCreatedAt != nil {
		item.CreatedAt = *r.ItemCreatedAt
	}
	if r.ItemUpdatedAt != nil {
		item.UpdatedAt = *r.ItemUpdatedAt
	}
	due.Item = &item
	return due
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Create inserts a pending subscription.
// Returns domain.ErrConflict if the user already has a pending subscription
// to the item, domain.ErrNotFound if the item does not exist.
func (r *Repo) Create(ctx context.Context, sub domain.Subscription) (*domain.Subscription, error) {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	query, args, err := postgres.Builder().
		Insert(table).
		Columns("id", "user_id", "item_id", "created_at").
		Values(sub.ID, sub.UserID, sub.ItemID, sub.CreatedAt).
		Suffix("RETURNING id, user_id, item_id, created_at, notified_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert subscription: %w", err)
	}

	var row subscriptionRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, query, args...); err != nil {
		if postgres.IsUniqueViolation(err, pendingIndex) {
			return nil, fmt.Errorf("subscription %s/%s: %w", sub.UserID, sub.ItemID, domain.ErrConflict)
		}
		return nil, postgres.MapError(err, "subscription", sub.ItemID)
	}

	out := row.toDomain()
	return &out, nil
}

// ListByUser returns the user's subscriptions joined with the current item
// name and release data, newest first. Notified subscriptions are included
// only when includeNotified is set.
func (r *Repo) ListByUser(ctx context.Context, userID string, includeNotified bool) ([]domain.SubscriptionView, error) {
	q := postgres.Builder().
		Select("s.id", "s.user_id", "s.item_id", "s.created_at", "s.notified_at",
			"c.name AS item_name", "c.release_at", "c.release_precision").
		From(table + " s").
		Join("catalog_items c ON c.id = s.item_id").
		Where(squirrel.Eq{"s.user_id": userID}).
		OrderBy("s.created_at DESC", "s.id ASC")
	if !includeNotified {
		q = q.Where("s.notified_at IS NULL")
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list subscriptions: %w", err)
	}

	var rows []viewRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, "subscription", userID)
	}

	views := make([]domain.SubscriptionView, len(rows))
	for i, row := range rows {
		views[i] = domain.SubscriptionView{
			Subscription:     row.subscriptionRow.toDomain(),
			ItemName:         row.ItemName,
			ReleaseAt:        utcPtr(row.ReleaseAt),
			ReleasePrecision: domain.ReleasePrecision(row.ReleasePrecision),
		}
	}
	return views, nil
}

// DeletePending removes the user's pending subscription to itemID.
// Returns domain.ErrNotFound if there is none.
func (r *Repo) DeletePending(ctx context.Context, userID, itemID string) error {
	query, args, err := postgres.Builder().
		Delete(table).
		Where(squirrel.Eq{"user_id": userID, "item_id": itemID}).
		Where("notified_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete subscription: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "subscription", itemID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subscription %s/%s: %w", userID, itemID, domain.ErrNotFound)
	}
	return nil
}

// ListDue returns up to limit pending subscriptions whose item releases
// before the given instant. There is no lower bound, so releases missed
// while the scheduler was down are returned too. Unknown releases are never
// due. Subscriptions whose item row is missing are returned with a nil Item,
// after all others.
//
// A non-nil after continues a listing: only rows strictly past that cursor
// in (release_at, created_at, id) order are returned.
func (r *Repo) ListDue(ctx context.Context, before time.Time, after *domain.DueCursor, limit int) ([]domain.DueReminder, error) {
	builder := postgres.Builder().
		Select("s.id", "s.user_id", "s.item_id", "s.created_at", "s.notified_at",
			"c.id AS catalog_id",
			"c.name AS item_name",
			"c.name_normalized AS item_name_normalized",
			"c.release_at AS item_release_at",
			"c.release_precision AS item_release_precision",
			"c.release_text AS item_release_text",
			"c.metadata AS item_metadata",
			"c.created_at AS item_created_at",
			"c.updated_at AS item_updated_at",
		).
		From(table + " s").
		LeftJoin("catalog_items c ON c.id = s.item_id").
		Where("s.notified_at IS NULL").
		Where(squirrel.Or{
			squirrel.Expr("c.id IS NULL"),
			squirrel.Lt{"c.release_at": before},
		}).
		OrderBy("c.release_at ASC NULLS LAST", "s.created_at ASC", "s.id ASC").
		Limit(uint64(limit))

	switch {
	case after == nil:
	case after.ReleaseAt == nil:
		builder = builder.Where("c.release_at IS NULL AND (s.created_at, s.id) > (?, ?)",
			after.CreatedAt, after.ID)
	default:
		builder = builder.Where("(c.release_at IS NULL OR (c.release_at, s.created_at, s.id) > (?, ?, ?))",
			*after.ReleaseAt, after.CreatedAt, after.ID)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list due: %w", err)
	}

	var rows []dueRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, "subscription", "due")
	}

	due := make([]domain.DueReminder, len(rows))
	for i, row := range rows {
		due[i] = row.toDomain()
	}
	return due, nil
}

// ClaimPending row-locks the subscription if it is still pending. It must
// run inside a transaction. It reports false when the subscription is
// already notified, deleted, or locked by an overlapping tick.
func (r *Repo) ClaimPending(ctx context.Context, id uuid.UUID) (bool, error) {
	query, args, err := postgres.Builder().
		Select("id").
		From(table).
		Where(squirrel.Eq{"id": id}).
		Where("notified_at IS NULL").
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build claim subscription: %w", err)
	}

	var claimed uuid.UUID
	err = postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&claimed)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, postgres.MapError(err, "subscription", id.String())
	}
	return true, nil
}

// MarkNotified sets notified_at if the subscription is still pending.
// Returns domain.ErrStateViolation when another writer got there first.
func (r *Repo) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	query, args, err := postgres.Builder().
		Update(table).
		Set("notified_at", at.UTC()).
		Where(squirrel.Eq{"id": id}).
		Where("notified_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark notified: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "subscription", id.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subscription %s: already notified: %w", id, domain.ErrStateViolation)
	}
	return nil
}

// PruneNotified deletes notified subscriptions with notified_at before
// olderThan and returns how many were removed.
func (r *Repo) PruneNotified(ctx context.Context, olderThan time.Time) (int, error) {
	query, args, err := postgres.Builder().
		Delete(table).
		Where("notified_at IS NOT NULL").
		Where(squirrel.Lt{"notified_at": olderThan.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build prune notified: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return 0, postgres.MapError(err, "subscription", "prune")
	}
	return int(tag.RowsAffected()), nil
}
