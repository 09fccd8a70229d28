package testhelper

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

var itemSeq atomic.Int64

func init() {
	itemSeq.Store(100000)
}

// UniqueSuffix returns a short unique lowercase token for generating
// non-conflicting test data. It contains letters only so that it survives
// name normalization as a single token.
func UniqueSuffix() string {
	raw := uuid.New().String()
	out := make([]byte, 0, 8)
	for i := 0; i < len(raw) && len(out) < 8; i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'f':
			out = append(out, c)
		case c >= '0' && c <= '9':
			out = append(out, 'g'+(c-'0'))
		}
	}
	return string(out)
}

// NextItemID returns a catalog id that is unique within the test process.
func NextItemID() string {
	return strconv.FormatInt(itemSeq.Add(1), 10)
}

// UserID returns a unique chat-platform user id.
func UserID() string {
	return "user-" + UniqueSuffix()
}

// SeedItem inserts a catalog item with the given name and release instant.
// A nil releaseAt stores an unknown release.
func SeedItem(t *testing.T, pool *pgxpool.Pool, name string, releaseAt *time.Time) domain.CatalogItem {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	item := domain.CatalogItem{
		ID:        NextItemID(),
		Name:      name,
		ReleaseAt: releaseAt,
		Metadata:  []byte(`{"short_description":"seeded"}`),
	}
	if err := item.Validate(); err != nil {
		t.Fatalf("testhelper: SeedItem validate: %v", err)
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := pool.Exec(ctx,
		`INSERT INTO catalog_items (id, name, name_normalized, release_at, release_precision, metadata, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.Name, item.NameNormalized, item.ReleaseAt, string(item.ReleasePrecision), item.Metadata, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedItem insert: %v", err)
	}

	return item
}

// SeedSubscription inserts a pending subscription of userID to itemID.
func SeedSubscription(t *testing.T, pool *pgxpool.Pool, userID, itemID string) domain.Subscription {
	t.Helper()
	ctx := context.Background()

	sub := domain.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		ItemID:    itemID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO subscriptions (id, user_id, item_id, created_at) VALUES ($1, $2, $3, $4)`,
		sub.ID, sub.UserID, sub.ItemID, sub.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSubscription insert: %v", err)
	}

	return sub
}

// SeedNotifiedSubscription inserts a subscription already marked notified at notifiedAt.
func SeedNotifiedSubscription(t *testing.T, pool *pgxpool.Pool, userID, itemID string, notifiedAt time.Time) domain.Subscription {
	t.Helper()
	ctx := context.Background()

	at := notifiedAt.UTC().Truncate(time.Microsecond)
	sub := domain.Subscription{
		ID:         uuid.New(),
		UserID:     userID,
		ItemID:     itemID,
		CreatedAt:  at.Add(-time.Hour),
		NotifiedAt: &at,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO subscriptions (id, user_id, item_id, created_at, notified_at) VALUES ($1, $2, $3, $4, $5)`,
		sub.ID, sub.UserID, sub.ItemID, sub.CreatedAt, sub.NotifiedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedNotifiedSubscription insert: %v", err)
	}

	return sub
}

// SeedApproval inserts an approval record in the given state whose last
// activity happened at lastActivity.
func SeedApproval(t *testing.T, pool *pgxpool.Pool, state domain.ApprovalState, lastActivity time.Time) domain.ApprovalRecord {
	t.Helper()
	ctx := context.Background()

	at := lastActivity.UTC().Truncate(time.Microsecond)
	rec := domain.ApprovalRecord{
		UserID:         UserID(),
		State:          state,
		RequestedAt:    at,
		LastActivityAt: at,
	}
	if state.IsDecision() {
		rec.DecidedAt = &at
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO approvals (user_id, state, requested_at, last_activity_at, decided_at) VALUES ($1, $2, $3, $4, $5)`,
		rec.UserID, string(rec.State), rec.RequestedAt, rec.LastActivityAt, rec.DecidedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedApproval insert: %v", err)
	}

	return rec
}
