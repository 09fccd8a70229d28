// Package approval gates privileged actions behind a per-user approval
// state and expires records after ApprovalRetention of inactivity.
package approval

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/ingrid-backend/internal/clock"
	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

type approvalRepo interface {
	Touch(ctx context.Context, userID string, now time.Time) (domain.ApprovalRecord, bool, error)
	SetState(ctx context.Context, userID string, state domain.ApprovalState, now time.Time) (*domain.ApprovalRecord, error)
	Get(ctx context.Context, userID string) (*domain.ApprovalRecord, error)
	List(ctx context.Context, state *domain.ApprovalState, limit, offset int) ([]domain.ApprovalRecord, int, error)
	DeleteInactive(ctx context.Context, cutoff time.Time) ([]domain.ApprovalRecord, error)
}

type notifier interface {
	Deliver(ctx context.Context, userID, message string) error
}

// notifyTimeout bounds one courtesy message.
const notifyTimeout = 5 * time.Second

// Service holds the gate, the administrative decision operations and the
// inactivity sweep. They share one store.
type Service struct {
	approvals   approvalRepo
	sink        notifier
	clock       clock.Clock
	adminUserID string
	log         *slog.Logger

	pending sync.WaitGroup
}

// NewService creates a new approval service. adminUserID receives access
// request notifications; empty disables them.
func NewService(log *slog.Logger, approvals approvalRepo, sink notifier, clk clock.Clock, adminUserID string) *Service {
	return &Service{
		approvals:   approvals,
		sink:        sink,
		clock:       clk,
		adminUserID: adminUserID,
		log:         log.With("service", "approval"),
	}
}

// Wait blocks until background notifications started by Check finish.
func (s *Service) Wait() {
	s.pending.Wait()
}

// notifyAsync is notify off the caller's path.
func (s *Service) notifyAsync(ctx context.Context, userID, msg string) {
	if userID == "" || s.sink == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.notify(ctx, userID, msg)
	}()
}

// notify delivers msg and only logs a failure.
func (s *Service) notify(ctx context.Context, userID, msg string) {
	if userID == "" || s.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.sink.Deliver(ctx, userID, msg); err != nil {
		s.log.WarnContext(ctx, "notification failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
