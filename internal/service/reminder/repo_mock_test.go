package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

var (
	_ subscriptionRepo = &subscriptionRepoMock{}
	_ itemRepo         = &itemRepoMock{}
	_ itemResolver     = &itemResolverMock{}
)

type subscriptionRepoMock struct {
	CreateFunc        func(ctx context.Context, sub domain.Subscription) (*domain.Subscription, error)
	ListByUserFunc    func(ctx context.Context, userID string, includeNotified bool) ([]domain.SubscriptionView, error)
	DeletePendingFunc func(ctx context.Context, userID, itemID string) error
	PruneNotifiedFunc func(ctx context.Context, olderThan time.Time) (int, error)

	mu    sync.Mutex
	calls struct {
		Create []domain.Subscription
	}
}

func (m *subscriptionRepoMock) Create(ctx context.Context, sub domain.Subscription) (*domain.Subscription, error) {
	if m.CreateFunc == nil {
		panic("subscriptionRepoMock.CreateFunc: method is nil but subscriptionRepo.Create was just called")
	}
	m.mu.Lock()
	m.calls.Create = append(m.calls.Create, sub)
	m.mu.Unlock()
	return m.CreateFunc(ctx, sub)
}

func (m *subscriptionRepoMock) CreateCalls() []domain.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Create
}

func (m *subscriptionRepoMock) ListByUser(ctx context.Context, userID string, includeNotified bool) ([]domain.SubscriptionView, error) {
	if m.ListByUserFunc == nil {
		panic("subscriptionRepoMock.ListByUserFunc: method is nil but subscriptionRepo.ListByUser was just called")
	}
	return m.ListByUserFunc(ctx, userID, includeNotified)
}

func (m *subscriptionRepoMock) DeletePending(ctx context.Context, userID, itemID string) error {
	if m.DeletePendingFunc == nil {
		panic("subscriptionRepoMock.DeletePendingFunc: method is nil but subscriptionRepo.DeletePending was just called")
	}
	return m.DeletePendingFunc(ctx, userID, itemID)
}

func (m *subscriptionRepoMock) PruneNotified(ctx context.Context, olderThan time.Time) (int, error) {
	if m.PruneNotifiedFunc == nil {
		panic("subscriptionRepoMock.PruneNotifiedFunc: method is nil but subscriptionRepo.PruneNotified was just called")
	}
	return m.PruneNotifiedFunc(ctx, olderThan)
}

type itemRepoMock struct {
	GetByIDFunc func(ctx context.Context, id string) (*domain.CatalogItem, error)
}

func (m *itemRepoMock) GetByID(ctx context.Context, id string) (*domain.CatalogItem, error) {
	if m.GetByIDFunc == nil {
		panic("itemRepoMock.GetByIDFunc: method is nil but itemRepo.GetByID was just called")
	}
	return m.GetByIDFunc(ctx, id)
}

type itemResolverMock struct {
	ResolveFunc func(ctx context.Context, query string) ([]domain.Match, error)

	mu    sync.Mutex
	calls []string
}

func (m *itemResolverMock) Resolve(ctx context.Context, query string) ([]domain.Match, error) {
	if m.ResolveFunc == nil {
		panic("itemResolverMock.ResolveFunc: method is nil but itemResolver.Resolve was just called")
	}
	m.mu.Lock()
	m.calls = append(m.calls, query)
	m.mu.Unlock()
	return m.ResolveFunc(ctx, query)
}

func (m *itemResolverMock) ResolveCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
