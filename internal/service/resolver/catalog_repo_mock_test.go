package resolver

import (
	"context"
	"sync"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

var _ catalogRepo = &catalogRepoMock{}

type catalogRepoMock struct {
	GetByIDFunc        func(ctx context.Context, id string) (*domain.CatalogItem, error)
	ListCandidatesFunc func(ctx context.Context, text string, limit int) ([]domain.CatalogItem, error)

	mu    sync.Mutex
	calls struct {
		GetByID        []string
		ListCandidates []string
	}
}

func (m *catalogRepoMock) GetByID(ctx context.Context, id string) (*domain.CatalogItem, error) {
	if m.GetByIDFunc == nil {
		panic("catalogRepoMock.GetByIDFunc: method is nil but catalogRepo.GetByID was just called")
	}
	m.mu.Lock()
	m.calls.GetByID = append(m.calls.GetByID, id)
	m.mu.Unlock()
	return m.GetByIDFunc(ctx, id)
}

func (m *catalogRepoMock) GetByIDCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.GetByID
}

func (m *catalogRepoMock) ListCandidates(ctx context.Context, text string, limit int) ([]domain.CatalogItem, error) {
	if m.ListCandidatesFunc == nil {
		panic("catalogRepoMock.ListCandidatesFunc: method is nil but catalogRepo.ListCandidates was just called")
	}
	m.mu.Lock()
	m.calls.ListCandidates = append(m.calls.ListCandidates, text)
	m.mu.Unlock()
	return m.ListCandidatesFunc(ctx, text, limit)
}

func (m *catalogRepoMock) ListCandidatesCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.ListCandidates
}
