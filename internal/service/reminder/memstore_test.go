package reminder

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

// memStore is an in-memory dueStore and txManager. ClaimPending skips rows
// locked by another open transaction, like FOR UPDATE SKIP LOCKED, and
// MarkNotified only takes effect when the transaction commits.
type memStore struct {
	mu     sync.Mutex
	items  map[string]domain.CatalogItem
	subs   map[uuid.UUID]*domain.Subscription
	locked map[uuid.UUID]bool

	// listErr fails ListDue once listErrAfter calls have succeeded.
	listErr      error
	listErrAfter int
	listed       int
}

type memTx struct {
	locks []uuid.UUID
	marks map[uuid.UUID]time.Time
}

type memTxKey struct{}

func newMemStore() *memStore {
	return &memStore{
		items:  map[string]domain.CatalogItem{},
		subs:   map[uuid.UUID]*domain.Subscription{},
		locked: map[uuid.UUID]bool{},
	}
}

func (m *memStore) addItem(item domain.CatalogItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
}

func (m *memStore) addSub(userID, itemID string, createdAt time.Time) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.subs[id] = &domain.Subscription{ID: id, UserID: userID, ItemID: itemID, CreatedAt: createdAt}
	return id
}

func (m *memStore) notifiedAt(id uuid.UUID) *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subs[id].NotifiedAt
}

func (m *memStore) ListDue(ctx context.Context, before time.Time, after *domain.DueCursor, limit int) ([]domain.DueReminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil && m.listed >= m.listErrAfter {
		return nil, m.listErr
	}
	m.listed++

	var due []domain.DueReminder
	for _, sub := range m.subs {
		if sub.NotifiedAt != nil {
			continue
		}
		var d domain.DueReminder
		item, ok := m.items[sub.ItemID]
		switch {
		case !ok:
			d = domain.DueReminder{Subscription: *sub}
		case item.ReleaseAt != nil && item.ReleaseAt.Before(before):
			it := item
			d = domain.DueReminder{Subscription: *sub, Item: &it}
		default:
			continue
		}
		if after != nil && !after.Before(d.Cursor()) {
			continue
		}
		due = append(due, d)
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].Cursor().Before(due[j].Cursor())
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (m *memStore) listCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listed
}

func (m *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx := &memTx{marks: map[uuid.UUID]time.Time{}}
	err := fn(context.WithValue(ctx, memTxKey{}, tx))

	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		for id, at := range tx.marks {
			t := at
			m.subs[id].NotifiedAt = &t
		}
	}
	for _, id := range tx.locks {
		delete(m.locked, id)
	}
	return err
}

func (m *memStore) ClaimPending(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return false, fmt.Errorf("ClaimPending outside transaction")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sub, exists := m.subs[id]
	if !exists || sub.NotifiedAt != nil || m.locked[id] {
		return false, nil
	}
	m.locked[id] = true
	tx.locks = append(tx.locks, id)
	return true, nil
}

func (m *memStore) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return fmt.Errorf("MarkNotified outside transaction")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sub, exists := m.subs[id]
	if !exists || sub.NotifiedAt != nil {
		return domain.ErrStateViolation
	}
	if _, dup := tx.marks[id]; dup {
		return domain.ErrStateViolation
	}
	tx.marks[id] = at
	return nil
}

// recordingSink counts deliveries per user and message.
type recordingSink struct {
	mu       sync.Mutex
	messages []string
	byUser   map[string]int
	delay    time.Duration
	fail     func(userID string) error

	inFlight    int
	maxInFlight int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{byUser: map[string]int{}}
}

func (r *recordingSink) Deliver(ctx context.Context, userID, message string) error {
	r.mu.Lock()
	r.inFlight++
	r.maxInFlight = max(r.maxInFlight, r.inFlight)
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.inFlight--
		r.mu.Unlock()
	}()

	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if r.fail != nil {
		if err := r.fail(userID); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	r.byUser[userID]++
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *recordingSink) deliveries(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byUser[userID]
}

type reporterMock struct {
	mu       sync.Mutex
	errors   []error
	messages []string
}

func (m *reporterMock) CaptureError(_ context.Context, err error, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
}

func (m *reporterMock) CaptureMessage(_ context.Context, msg string, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *reporterMock) CaptureErrorCalls() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors
}

func (m *reporterMock) CaptureMessageCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages
}
