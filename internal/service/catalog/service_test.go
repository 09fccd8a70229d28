package catalog

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
	"github.com/heartmarshall/ingrid-backend/internal/provider"
)

//go:generate moq -out catalog_repo_mock_test.go -pkg catalog . catalogRepo storeProvider errorReporter

func newTestService(repo *catalogRepoMock, store *storeProviderMock, rep *errorReporterMock) *Service {
	if rep == nil {
		rep = &errorReporterMock{}
	}
	var sp storeProvider
	if store != nil {
		sp = store
	}
	return NewService(slog.Default(), repo, sp, rep)
}

func echoUpsert(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error) {
	return &item, nil
}

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// UpsertItem / GetItem
// ---------------------------------------------------------------------------

func TestUpsertItem_ValidatesAndNormalizes(t *testing.T) {
	t.Parallel()

	repo := &catalogRepoMock{UpsertFunc: echoUpsert}
	svc := newTestService(repo, nil, nil)

	release := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	got, err := svc.UpsertItem(context.Background(), domain.CatalogItem{ID: "620", Name: "  Portal 2 ", ReleaseAt: &release})
	require.NoError(t, err)

	assert.Equal(t, "Portal 2", got.Name)
	assert.Equal(t, "portal 2", got.NameNormalized)
	assert.Equal(t, domain.ReleasePrecisionDay, got.ReleasePrecision)
	require.Len(t, repo.UpsertCalls(), 1)
}

func TestUpsertItem_InvalidNotStored(t *testing.T) {
	t.Parallel()

	repo := &catalogRepoMock{}
	svc := newTestService(repo, nil, nil)

	_, err := svc.UpsertItem(context.Background(), domain.CatalogItem{ID: "x", Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, repo.UpsertCalls())
}

func TestGetItem(t *testing.T) {
	t.Parallel()

	repo := &catalogRepoMock{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.CatalogItem, error) {
			if id == "620" {
				return &domain.CatalogItem{ID: id, Name: "Portal 2"}, nil
			}
			return nil, domain.ErrNotFound
		},
	}
	svc := newTestService(repo, nil, nil)

	item, err := svc.GetItem(context.Background(), "620")
	require.NoError(t, err)
	assert.Equal(t, "Portal 2", item.Name)

	_, err = svc.GetItem(context.Background(), "621")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetItem(context.Background(), "portal")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func TestRefresh_UpdatesChangedReleaseText(t *testing.T) {
	t.Parallel()

	repo := &catalogRepoMock{
		ListWithPendingSubscriptionsFunc: func(ctx context.Context, afterID string, limit int) ([]domain.CatalogItem, error) {
			assert.Empty(t, afterID)
			assert.Equal(t, DefaultRefreshLimit, limit)
			return []domain.CatalogItem{
				{ID: "1", Name: "Slipped", ReleaseText: strPtr("Q1 2026")},
				{ID: "2", Name: "Same", ReleaseText: strPtr("Mar 3, 2026")},
				{ID: "3", Name: "Gone"},
				{ID: "4", Name: "Broken"},
			}, nil
		},
		UpsertFunc: echoUpsert,
	}
	store := &storeProviderMock{
		FetchAppFunc: func(ctx context.Context, appID string) (*provider.StoreItem, error) {
			switch appID {
			case "1":
				return &provider.StoreItem{ID: "1", Name: "Slipped", ReleaseText: "Jun 5, 2026", ComingSoon: true}, nil
			case "2":
				return &provider.StoreItem{ID: "2", Name: "Same", ReleaseText: "Mar 3, 2026", ComingSoon: true}, nil
			case "3":
				return nil, nil
			default:
				return nil, domain.ErrTransient
			}
		},
	}
	rep := &errorReporterMock{}
	svc := newTestService(repo, store, rep)

	report, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RefreshReport{Checked: 4, Updated: 1, Missing: 1, Failed: 1}, report)
	require.Len(t, repo.UpsertCalls(), 1)
	upserted := repo.UpsertCalls()[0]
	assert.Equal(t, "1", upserted.ID)
	require.NotNil(t, upserted.ReleaseAt)
	assert.True(t, upserted.ReleaseAt.Equal(time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)))
	assert.Len(t, rep.CaptureErrorCalls(), 1)
}

func TestRefresh_PagesPastFirstBatch(t *testing.T) {
	t.Parallel()

	pending := []domain.CatalogItem{
		{ID: "10", Name: "A"}, {ID: "11", Name: "B"}, {ID: "12", Name: "C"},
		{ID: "13", Name: "D"}, {ID: "14", Name: "Slipped", ReleaseText: strPtr("2026")},
	}
	var afterIDs []string
	repo := &catalogRepoMock{
		ListWithPendingSubscriptionsFunc: func(ctx context.Context, afterID string, limit int) ([]domain.CatalogItem, error) {
			afterIDs = append(afterIDs, afterID)
			var page []domain.CatalogItem
			for _, it := range pending {
				if it.ID > afterID && len(page) < limit {
					page = append(page, it)
				}
			}
			return page, nil
		},
		UpsertFunc: echoUpsert,
	}
	store := &storeProviderMock{
		FetchAppFunc: func(ctx context.Context, appID string) (*provider.StoreItem, error) {
			for _, it := range pending {
				if it.ID == appID && appID == "14" {
					return &provider.StoreItem{ID: appID, Name: it.Name, ReleaseText: "Aug 1, 2026", ComingSoon: true}, nil
				}
				if it.ID == appID {
					return &provider.StoreItem{ID: appID, Name: it.Name}, nil
				}
			}
			return nil, nil
		},
	}
	svc := newTestService(repo, store, nil)
	svc.refreshLimit = 2

	report, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"", "11", "13"}, afterIDs)
	assert.Equal(t, 5, report.Checked)
	assert.Equal(t, 1, report.Updated, "the item past the first page is refreshed")
	require.Len(t, repo.UpsertCalls(), 1)
	assert.Equal(t, "14", repo.UpsertCalls()[0].ID)
}

func TestRefresh_ListFailure(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("connection refused")
	repo := &catalogRepoMock{
		ListWithPendingSubscriptionsFunc: func(ctx context.Context, afterID string, limit int) ([]domain.CatalogItem, error) {
			return nil, dbErr
		},
	}
	svc := newTestService(repo, &storeProviderMock{}, nil)

	err := svc.RunRefresh(context.Background())
	assert.ErrorIs(t, err, dbErr)
}

func TestRefresh_NoStore(t *testing.T) {
	t.Parallel()

	svc := newTestService(&catalogRepoMock{}, nil, nil)
	_, err := svc.Refresh(context.Background())
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Import
// ---------------------------------------------------------------------------

type sliceSource struct {
	records []provider.StoreItem
	skipped int
}

func (s sliceSource) Each(ctx context.Context, batchSize int, fn func([]provider.StoreItem) error) (int, error) {
	for start := 0; start < len(s.records); start += batchSize {
		end := min(start+batchSize, len(s.records))
		if err := fn(s.records[start:end]); err != nil {
			return s.skipped, err
		}
	}
	return s.skipped, nil
}

func TestImport_BatchesAndSkipsInvalid(t *testing.T) {
	t.Parallel()

	repo := &catalogRepoMock{
		UpsertBatchFunc: func(ctx context.Context, items []domain.CatalogItem) (int, error) {
			return len(items), nil
		},
	}
	svc := newTestService(repo, nil, nil)

	src := sliceSource{
		records: []provider.StoreItem{
			{ID: "10", Name: "Half-Life", ReleaseText: "Nov 8, 1998"},
			{ID: "20", Name: "Team Fortress Classic", ReleaseText: "Apr 1, 1999"},
			{ID: "bad", Name: "Broken"},
			{ID: "30", Name: "Day of Defeat", ReleaseText: "May 1, 2003"},
			{ID: "40", Name: "Upcoming", ReleaseText: "TBA"},
		},
		skipped: 2,
	}

	report, err := svc.Import(context.Background(), src, 2)
	require.NoError(t, err)

	assert.Equal(t, ImportReport{Read: 7, Imported: 4, Invalid: 3}, report)
	calls := repo.UpsertBatchCalls()
	require.Len(t, calls, 3)
	assert.Len(t, calls[0], 2)
	assert.Len(t, calls[1], 1)
	assert.Equal(t, domain.ReleasePrecisionUnknown, calls[2][0].ReleasePrecision)
}

func TestImport_StoreFailureAborts(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("disk full")
	repo := &catalogRepoMock{
		UpsertBatchFunc: func(ctx context.Context, items []domain.CatalogItem) (int, error) {
			return 0, dbErr
		},
	}
	svc := newTestService(repo, nil, nil)

	src := sliceSource{records: []provider.StoreItem{
		{ID: "10", Name: "Half-Life"},
		{ID: "20", Name: "Opposing Force"},
	}}
	_, err := svc.Import(context.Background(), src, 1)
	assert.ErrorIs(t, err, dbErr)
	assert.Len(t, repo.UpsertBatchCalls(), 1)
}
