package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

// RefreshReport summarizes one refresh run.
type RefreshReport struct {
	Checked int
	Updated int
	Missing int
	Failed  int
}

// Refresh re-fetches every item that still has pending subscriptions and
// upserts those whose name or release text changed upstream. Items are read
// in id order, refreshLimit at a time, until a short page. A failing item is
// logged, reported and counted; only a failure to list items is returned.
func (s *Service) Refresh(ctx context.Context) (RefreshReport, error) {
	var report RefreshReport
	if s.store == nil {
		return report, errors.New("catalog.Refresh: no store provider configured")
	}

	afterID := ""
	for {
		items, err := s.items.ListWithPendingSubscriptions(ctx, afterID, s.refreshLimit)
		if err != nil {
			return report, fmt.Errorf("catalog.Refresh: list items: %w", err)
		}

		for _, item := range items {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			s.refreshOne(ctx, item, &report)
		}

		if len(items) < s.refreshLimit {
			break
		}
		afterID = items[len(items)-1].ID
	}

	s.log.InfoContext(ctx, "catalog refreshed",
		slog.Int("checked", report.Checked),
		slog.Int("updated", report.Updated),
		slog.Int("missing", report.Missing),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *Service) refreshOne(ctx context.Context, item domain.CatalogItem, report *RefreshReport) {
	report.Checked++

	updated, err := s.refreshItem(ctx, item)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		report.Missing++
		s.log.WarnContext(ctx, "item no longer in store", slog.String("item_id", item.ID))
	case err != nil:
		report.Failed++
		s.log.ErrorContext(ctx, "item refresh failed",
			slog.String("item_id", item.ID),
			slog.String("error", err.Error()),
		)
		s.reporter.CaptureError(ctx, err, map[string]string{"component": "catalog-refresh", "item_id": item.ID})
	case updated:
		report.Updated++
	}
}

// RunRefresh adapts Refresh to a worker function.
func (s *Service) RunRefresh(ctx context.Context) error {
	_, err := s.Refresh(ctx)
	return err
}

func (s *Service) refreshItem(ctx context.Context, current domain.CatalogItem) (bool, error) {
	fetched, err := s.store.FetchApp(ctx, current.ID)
	if err != nil {
		return false, fmt.Errorf("fetch: %w", err)
	}
	if fetched == nil {
		return false, domain.ErrNotFound
	}

	next, err := fetched.CatalogItem()
	if err != nil {
		return false, fmt.Errorf("convert: %w", err)
	}
	if !changed(current, next) {
		return false, nil
	}

	if _, err := s.items.Upsert(ctx, next); err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	s.log.InfoContext(ctx, "release data changed",
		slog.String("item_id", next.ID),
		slog.String("release_text", deref(next.ReleaseText)),
		slog.String("precision", string(next.ReleasePrecision)),
	)
	return true, nil
}

func changed(current, next domain.CatalogItem) bool {
	if current.Name != next.Name {
		return true
	}
	return deref(current.ReleaseText) != deref(next.ReleaseText)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
