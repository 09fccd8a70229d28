package catalog

import (
	"context"
	"sync"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
	"github.com/heartmarshall/ingrid-backend/internal/provider"
)

var (
	_ catalogRepo   = &catalogRepoMock{}
	_ storeProvider = &storeProviderMock{}
	_ errorReporter = &errorReporterMock{}
)

type catalogRepoMock struct {
	UpsertFunc                       func(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error)
	UpsertBatchFunc                  func(ctx context.Context, items []domain.CatalogItem) (int, error)
	GetByIDFunc                      func(ctx context.Context, id string) (*domain.CatalogItem, error)
	ListWithPendingSubscriptionsFunc func(ctx context.Context, afterID string, limit int) ([]domain.CatalogItem, error)

	mu    sync.Mutex
	calls struct {
		Upsert      []domain.CatalogItem
		UpsertBatch [][]domain.CatalogItem
	}
}

func (m *catalogRepoMock) Upsert(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error) {
	if m.UpsertFunc == nil {
		panic("catalogRepoMock.UpsertFunc: method is nil but catalogRepo.Upsert was just called")
	}
	m.mu.Lock()
	m.calls.Upsert = append(m.calls.Upsert, item)
	m.mu.Unlock()
	return m.UpsertFunc(ctx, item)
}

func (m *catalogRepoMock) UpsertCalls() []domain.CatalogItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Upsert
}

func (m *catalogRepoMock) UpsertBatch(ctx context.Context, items []domain.CatalogItem) (int, error) {
	if m.UpsertBatchFunc == nil {
		panic("catalogRepoMock.UpsertBatchFunc: method is nil but catalogRepo.UpsertBatch was just called")
	}
	m.mu.Lock()
	m.calls.UpsertBatch = append(m.calls.UpsertBatch, items)
	m.mu.Unlock()
	return m.UpsertBatchFunc(ctx, items)
}

func (m *catalogRepoMock) UpsertBatchCalls() [][]domain.CatalogItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.UpsertBatch
}

func (m *catalogRepoMock) GetByID(ctx context.Context, id string) (*domain.CatalogItem, error) {
	if m.GetByIDFunc == nil {
		panic("catalogRepoMock.GetByIDFunc: method is nil but catalogRepo.GetByID was just called")
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *catalogRepoMock) ListWithPendingSubscriptions(ctx context.Context, afterID string, limit int) ([]domain.CatalogItem, error) {
	if m.ListWithPendingSubscriptionsFunc == nil {
		panic("catalogRepoMock.ListWithPendingSubscriptionsFunc: method is nil but catalogRepo.ListWithPendingSubscriptions was just called")
	}
	return m.ListWithPendingSubscriptionsFunc(ctx, afterID, limit)
}

type storeProviderMock struct {
	FetchAppFunc func(ctx context.Context, appID string) (*provider.StoreItem, error)

	mu    sync.Mutex
	calls []string
}

func (m *storeProviderMock) FetchApp(ctx context.Context, appID string) (*provider.StoreItem, error) {
	if m.FetchAppFunc == nil {
		panic("storeProviderMock.FetchAppFunc: method is nil but storeProvider.FetchApp was just called")
	}
	m.mu.Lock()
	m.calls = append(m.calls, appID)
	m.mu.Unlock()
	return m.FetchAppFunc(ctx, appID)
}

func (m *storeProviderMock) FetchAppCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type errorReporterMock struct {
	mu     sync.Mutex
	errors []error
}

func (m *errorReporterMock) CaptureError(_ context.Context, err error, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
}

func (m *errorReporterMock) CaptureErrorCalls() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors
}
