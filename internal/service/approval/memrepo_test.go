package approval

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

var _ approvalRepo = &memRepo{}

// memRepo is an in-memory approval store with the same upsert semantics
// as the SQL repository.
type memRepo struct {
	mu      sync.Mutex
	records map[string]domain.ApprovalRecord
	err     error
}

func newMemRepo() *memRepo {
	return &memRepo{records: map[string]domain.ApprovalRecord{}}
}

func (m *memRepo) put(rec domain.ApprovalRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.UserID] = rec
}

func (m *memRepo) get(userID string) (domain.ApprovalRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	return rec, ok
}

func (m *memRepo) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *memRepo) Touch(ctx context.Context, userID string, now time.Time) (domain.ApprovalRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.ApprovalRecord{}, false, m.err
	}
	rec, ok := m.records[userID]
	if !ok {
		rec = domain.ApprovalRecord{UserID: userID, State: domain.ApprovalStatePending, RequestedAt: now, LastActivityAt: now}
		m.records[userID] = rec
		return rec, true, nil
	}
	rec.LastActivityAt = now
	m.records[userID] = rec
	return rec, false, nil
}

func (m *memRepo) SetState(ctx context.Context, userID string, state domain.ApprovalState, now time.Time) (*domain.ApprovalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		rec = domain.ApprovalRecord{UserID: userID, RequestedAt: now}
	}
	rec.State = state
	rec.LastActivityAt = now
	rec.DecidedAt = &now
	m.records[userID] = rec
	return &rec, nil
}

func (m *memRepo) Get(ctx context.Context, userID string) (*domain.ApprovalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (m *memRepo) List(ctx context.Context, state *domain.ApprovalState, limit, offset int) ([]domain.ApprovalRecord, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ApprovalRecord
	for _, rec := range m.records {
		if state == nil || rec.State == *state {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivityAt.After(out[j].LastActivityAt) })
	total := len(out)
	if offset >= len(out) {
		return []domain.ApprovalRecord{}, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *memRepo) DeleteInactive(ctx context.Context, cutoff time.Time) ([]domain.ApprovalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var removed []domain.ApprovalRecord
	for id, rec := range m.records {
		if !rec.LastActivityAt.After(cutoff) {
			removed = append(removed, rec)
			delete(m.records, id)
		}
	}
	return removed, nil
}

type sinkMock struct {
	DeliverFunc func(ctx context.Context, userID, message string) error

	mu    sync.Mutex
	calls []struct{ UserID, Message string }
}

func (m *sinkMock) Deliver(ctx context.Context, userID, message string) error {
	m.mu.Lock()
	m.calls = append(m.calls, struct{ UserID, Message string }{userID, message})
	m.mu.Unlock()
	if m.DeliverFunc == nil {
		return nil
	}
	return m.DeliverFunc(ctx, userID, message)
}

func (m *sinkMock) DeliverCalls() []struct{ UserID, Message string } {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
