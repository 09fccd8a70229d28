package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

// UpsertItem validates and stores an item, replacing any existing row
// with the same id.
func (s *Service) UpsertItem(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.items.Upsert(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("catalog.UpsertItem: %w", err)
	}

	s.log.InfoContext(ctx, "catalog item upserted",
		slog.String("item_id", saved.ID),
		slog.String("name", saved.Name),
		slog.String("precision", string(saved.ReleasePrecision)),
	)
	return saved, nil
}

// GetItem returns the item with the given id.
func (s *Service) GetItem(ctx context.Context, id string) (*domain.CatalogItem, error) {
	if !domain.IsCatalogID(id) {
		return nil, domain.NewValidationError("id", "must be a numeric app id")
	}

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("catalog.GetItem: %w", err)
	}
	return item, nil
}
