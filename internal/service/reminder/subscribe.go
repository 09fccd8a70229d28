package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
	"github.com/heartmarshall/ingrid-backend/internal/service/resolver"
)

// Subscribe creates a pending reminder for the item given by id or
// resolved from a free-text query.
func (s *Service) Subscribe(ctx context.Context, input SubscribeInput) (*SubscribeResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	userID := strings.TrimSpace(input.UserID)

	item, err := s.lookup(ctx, input)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if item.ReleaseAt != nil && item.ReleaseAt.Before(now.Add(-s.grace)) {
		return nil, domain.NewValidationError("item", "already released")
	}

	sub, err := s.subs.Create(ctx, domain.Subscription{
		UserID:    userID,
		ItemID:    item.ID,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("reminder.Subscribe: %w", err)
	}

	s.log.InfoContext(ctx, "subscription created",
		slog.String("user_id", userID),
		slog.String("item_id", item.ID),
		slog.String("subscription_id", sub.ID.String()),
	)
	return &SubscribeResult{Subscription: *sub, Item: item}, nil
}

func (s *Service) lookup(ctx context.Context, input SubscribeInput) (domain.CatalogItem, error) {
	if id := strings.TrimSpace(input.ItemID); id != "" {
		item, err := s.items.GetByID(ctx, id)
		if err != nil {
			return domain.CatalogItem{}, fmt.Errorf("reminder.Subscribe: %w", err)
		}
		return *item, nil
	}

	query := strings.TrimSpace(input.Query)
	matches, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("reminder.Subscribe: resolve: %w", err)
	}
	if len(matches) == 0 {
		return domain.CatalogItem{}, fmt.Errorf("reminder.Subscribe: no item matches %q: %w", query, domain.ErrNotFound)
	}

	best, ok := resolver.Pick(matches)
	if !ok {
		return domain.CatalogItem{}, &AmbiguousError{Query: query, Candidates: matches}
	}
	return best.Item, nil
}

// List returns the user's subscriptions, newest first.
func (s *Service) List(ctx context.Context, userID string, includeNotified bool) ([]domain.SubscriptionView, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.NewValidationError("user_id", "required")
	}
	views, err := s.subs.ListByUser(ctx, userID, includeNotified)
	if err != nil {
		return nil, fmt.Errorf("reminder.List: %w", err)
	}
	return views, nil
}

// Cancel deletes the user's pending subscription for itemID.
func (s *Service) Cancel(ctx context.Context, userID, itemID string) error {
	if err := s.subs.DeletePending(ctx, userID, itemID); err != nil {
		return fmt.Errorf("reminder.Cancel: %w", err)
	}
	s.log.InfoContext(ctx, "subscription cancelled",
		slog.String("user_id", userID),
		slog.String("item_id", itemID),
	)
	return nil
}

// PruneNotified deletes delivered subscriptions notified before olderThan.
func (s *Service) PruneNotified(ctx context.Context, olderThan time.Time) (int, error) {
	n, err := s.subs.PruneNotified(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("reminder.PruneNotified: %w", err)
	}
	s.log.InfoContext(ctx, "notified history pruned",
		slog.Int("removed", n),
		slog.Time("older_than", olderThan),
	)
	return n, nil
}
