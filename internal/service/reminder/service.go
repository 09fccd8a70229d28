// Package reminder manages release subscriptions and delivers the
// reminders when releases come due.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/ingrid-backend/internal/clock"
	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

type subscriptionRepo interface {
	Create(ctx context.Context, sub domain.Subscription) (*domain.Subscription, error)
	ListByUser(ctx context.Context, userID string, includeNotified bool) ([]domain.SubscriptionView, error)
	DeletePending(ctx context.Context, userID, itemID string) error
	PruneNotified(ctx context.Context, olderThan time.Time) (int, error)
}

type itemRepo interface {
	GetByID(ctx context.Context, id string) (*domain.CatalogItem, error)
}

type itemResolver interface {
	Resolve(ctx context.Context, query string) ([]domain.Match, error)
}

// Service handles user subscription commands.
type Service struct {
	subs     subscriptionRepo
	items    itemRepo
	resolver itemResolver
	clock    clock.Clock
	grace    time.Duration
	log      *slog.Logger
}

// NewService creates a new subscription service. Items released up to
// grace ago can still be subscribed to.
func NewService(
	log *slog.Logger,
	subs subscriptionRepo,
	items itemRepo,
	resolver itemResolver,
	clk clock.Clock,
	grace time.Duration,
) *Service {
	return &Service{
		subs:     subs,
		items:    items,
		resolver: resolver,
		clock:    clk,
		grace:    grace,
		log:      log.With("service", "reminder"),
	}
}
