package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

func newMockRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock), mock
}

func itemRows(now time.Time) *pgxmock.Rows {
	release := now.Add(48 * time.Hour)
	return pgxmock.NewRows(columns).
		AddRow("620", "Portal 2", "portal 2", &release, "day", nil, []byte(`{}`), now, now)
}

func TestRepo_GetByID_Mock(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM catalog_items WHERE id = \$1`).
		WithArgs("620").
		WillReturnRows(itemRows(now))

	got, err := repo.GetByID(context.Background(), "620")
	require.NoError(t, err)
	assert.Equal(t, "Portal 2", got.Name)
	assert.Equal(t, domain.ReleasePrecisionDay, got.ReleasePrecision)
	require.NotNil(t, got.ReleaseAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_GetByID_Mock_NoRows(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM catalog_items`).
		WithArgs("1").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "1")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_ListCandidates_Mock_RanksBeforeLimit(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM catalog_items ` +
		`WHERE \(name_normalized ILIKE \$1 OR name_normalized ILIKE \$2\) ` +
		`ORDER BY CASE WHEN name_normalized = \$3 THEN 3 WHEN name_normalized LIKE \$4 THEN 2 WHEN name_normalized LIKE \$5 THEN 1 ELSE 0 END DESC, ` +
		`\(\(name_normalized LIKE \$6\)::int \+ \(name_normalized LIKE \$7\)::int\) DESC, ` +
		`octet_length\(name\) ASC, name COLLATE "C" ASC, id ASC LIMIT 50`).
		WithArgs("%portal%", "%2%", "portal 2", "portal 2%", "%portal 2%", "%portal%", "%2%").
		WillReturnRows(itemRows(now))

	got, err := repo.ListCandidates(context.Background(), "Portal™ 2", 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "620", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_ListWithPendingSubscriptions_Mock_Keyset(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM catalog_items c WHERE EXISTS \(.+\) AND c.id COLLATE "C" > \$1 ORDER BY c.id COLLATE "C" ASC LIMIT 1000`).
		WithArgs("620").
		WillReturnRows(pgxmock.NewRows(columns))

	got, err := repo.ListWithPendingSubscriptions(context.Background(), "620", 1000)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_UpsertBatch_Mock_DedupesIDs(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	items := []domain.CatalogItem{
		{ID: "10", Name: "A", NameNormalized: "a", ReleasePrecision: domain.ReleasePrecisionUnknown},
		{ID: "10", Name: "A2", NameNormalized: "a2", ReleasePrecision: domain.ReleasePrecisionUnknown},
	}

	args := make([]any, len(columns))
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	mock.ExpectExec(`INSERT INTO catalog_items (.+) VALUES \((.+)\) ON CONFLICT \(id\) DO UPDATE`).
		WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := repo.UpsertBatch(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_UpsertBatch_Empty(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	n, err := repo.UpsertBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
