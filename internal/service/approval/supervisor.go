package approval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

// Sweep removes every record inactive for domain.ApprovalRetention or
// longer, whatever its state. Removing an approved record revokes access;
// the next gate check starts over as pending. Running it twice in a row
// removes nothing the second time.
func (s *Service) Sweep(ctx context.Context) (domain.SweepReport, error) {
	report := domain.SweepReport{ByState: map[domain.ApprovalState]int{}}

	cutoff := s.clock.Now().Add(-domain.ApprovalRetention)
	removed, err := s.approvals.DeleteInactive(ctx, cutoff)
	if err != nil {
		return report, fmt.Errorf("approval.Sweep: %w", err)
	}

	report.Removed = len(removed)
	for _, rec := range removed {
		report.ByState[rec.State]++
	}

	s.log.InfoContext(ctx, "approval sweep finished",
		slog.Int("removed", report.Removed),
		slog.Int("approved", report.ByState[domain.ApprovalStateApproved]),
		slog.Int("denied", report.ByState[domain.ApprovalStateDenied]),
		slog.Int("pending", report.ByState[domain.ApprovalStatePending]),
		slog.Time("cutoff", cutoff),
	)
	return report, nil
}

// RunSweep adapts Sweep to a worker function.
func (s *Service) RunSweep(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}
