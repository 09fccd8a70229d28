package approval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

// Check records a gated action by userID and returns whether it may
// proceed. The first check creates a pending record and asks the
// administrator for a decision in the background. Every check refreshes the activity
// timestamp, whatever the state.
func (s *Service) Check(ctx context.Context, userID string) (domain.GateDecision, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domain.NewValidationError("user_id", "required")
	}

	rec, created, err := s.approvals.Touch(ctx, userID, s.clock.Now())
	if err != nil {
		return "", fmt.Errorf("approval.Check: %w", err)
	}

	decision := domain.DecisionFor(rec.State)
	if created {
		s.log.InfoContext(ctx, "access requested", slog.String("user_id", userID))
		s.notifyAsync(ctx, s.adminUserID, fmt.Sprintf(
			"User <@%s> requested access. Approve or deny with PUT /api/admin/approvals/%s", userID, userID))
		return domain.GatePendingApproval, nil
	}

	s.log.DebugContext(ctx, "gate checked",
		slog.String("user_id", userID),
		slog.String("decision", decision.String()),
	)
	return decision, nil
}
