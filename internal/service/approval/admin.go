package approval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
	"github.com/heartmarshall/ingrid-backend/pkg/ctxutil"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// SetState records an administrator's decision for userID. Only approved
// and denied can be set. The caller must carry the admin role.
func (s *Service) SetState(ctx context.Context, userID string, state domain.ApprovalState) (*domain.ApprovalRecord, error) {
	if !ctxutil.IsAdminCtx(ctx) {
		return nil, domain.ErrForbidden
	}

	var errs []domain.FieldError
	userID = strings.TrimSpace(userID)
	if userID == "" {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if !state.IsDecision() {
		errs = append(errs, domain.FieldError{Field: "state", Message: "must be approved or denied"})
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	rec, err := s.approvals.SetState(ctx, userID, state, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("approval.SetState: %w", err)
	}

	admin, _ := ctxutil.SubjectFromCtx(ctx)
	s.log.InfoContext(ctx, "approval decided",
		slog.String("user_id", userID),
		slog.String("state", state.String()),
		slog.String("admin", admin),
	)

	if state == domain.ApprovalStateApproved {
		s.notify(ctx, userID, "Your access request was approved.")
	} else {
		s.notify(ctx, userID, "Your access request was denied.")
	}
	return rec, nil
}

// Get returns the record of userID. Admin only.
func (s *Service) Get(ctx context.Context, userID string) (*domain.ApprovalRecord, error) {
	if !ctxutil.IsAdminCtx(ctx) {
		return nil, domain.ErrForbidden
	}
	rec, err := s.approvals.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("approval.Get: %w", err)
	}
	return rec, nil
}

// ListInput filters the admin listing. A nil State lists every state.
type ListInput struct {
	State  *domain.ApprovalState
	Limit  int
	Offset int
}

// List returns a page of records, most recently active first, and the
// total number of records matching the filter. Admin only.
func (s *Service) List(ctx context.Context, input ListInput) ([]domain.ApprovalRecord, int, error) {
	if !ctxutil.IsAdminCtx(ctx) {
		return nil, 0, domain.ErrForbidden
	}

	var errs []domain.FieldError
	if input.State != nil && !input.State.IsValid() {
		errs = append(errs, domain.FieldError{Field: "state", Message: "unknown state"})
	}
	if input.Limit < 0 || input.Limit > MaxListLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: fmt.Sprintf("must be between 0 and %d", MaxListLimit)})
	}
	if input.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be >= 0"})
	}
	if len(errs) > 0 {
		return nil, 0, domain.NewValidationErrors(errs)
	}

	limit := input.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}

	records, total, err := s.approvals.List(ctx, input.State, limit, input.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("approval.List: %w", err)
	}
	return records, total, nil
}
