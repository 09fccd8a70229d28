package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
	"github.com/heartmarshall/ingrid-backend/internal/provider"
)

type importSource interface {
	Each(ctx context.Context, batchSize int, fn func([]provider.StoreItem) error) (int, error)
}

// ImportReport summarizes a bulk import.
type ImportReport struct {
	Read     int
	Imported int
	Invalid  int
}

// Import upserts every record of src in batches. Records that fail
// validation are counted and skipped; a store failure aborts the import.
func (s *Service) Import(ctx context.Context, src importSource, batchSize int) (ImportReport, error) {
	var report ImportReport

	skipped, err := src.Each(ctx, batchSize, func(records []provider.StoreItem) error {
		report.Read += len(records)

		items := make([]domain.CatalogItem, 0, len(records))
		for _, rec := range records {
			item, err := rec.CatalogItem()
			if err != nil {
				report.Invalid++
				s.log.DebugContext(ctx, "skipping invalid record",
					slog.String("item_id", rec.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			return nil
		}

		n, err := s.items.UpsertBatch(ctx, items)
		if err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		report.Imported += n

		s.log.InfoContext(ctx, "import progress",
			slog.Int("read", report.Read),
			slog.Int("imported", report.Imported),
		)
		return nil
	})
	report.Read += skipped
	report.Invalid += skipped
	if err != nil {
		return report, fmt.Errorf("catalog.Import: %w", err)
	}

	s.log.InfoContext(ctx, "import finished",
		slog.Int("read", report.Read),
		slog.Int("imported", report.Imported),
		slog.Int("invalid", report.Invalid),
	)
	return report, nil
}
