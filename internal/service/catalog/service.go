// Package catalog maintains the game catalog: direct upserts, periodic
// refresh from the Steam store and bulk import of the legacy database.
package catalog

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
	"github.com/heartmarshall/ingrid-backend/internal/provider"
)

type catalogRepo interface {
	Upsert(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error)
	UpsertBatch(ctx context.Context, items []domain.CatalogItem) (int, error)
	GetByID(ctx context.Context, id string) (*domain.CatalogItem, error)
	ListWithPendingSubscriptions(ctx context.Context, afterID string, limit int) ([]domain.CatalogItem, error)
}

type storeProvider interface {
	FetchApp(ctx context.Context, appID string) (*provider.StoreItem, error)
}

type errorReporter interface {
	CaptureError(ctx context.Context, err error, tags map[string]string)
}

// DefaultRefreshLimit is how many items a refresh reads per page.
const DefaultRefreshLimit = 1000

// Service provides catalog operations.
type Service struct {
	items        catalogRepo
	store        storeProvider
	reporter     errorReporter
	refreshLimit int
	log          *slog.Logger
}

// NewService creates a new catalog service. store may be nil when the
// refresher is disabled.
func NewService(log *slog.Logger, items catalogRepo, store storeProvider, reporter errorReporter) *Service {
	return &Service{
		items:        items,
		store:        store,
		reporter:     reporter,
		refreshLimit: DefaultRefreshLimit,
		log:          log.With("service", "catalog"),
	}
}
