package domain

import "time"

// ApprovalRetention is the inactivity period after which an approval record
// is removed, whatever its state.
const ApprovalRetention = 20 * 24 * time.Hour

// ApprovalState is the gate state of a user.
type ApprovalState string

const (
	ApprovalStatePending  ApprovalState = "pending"
	ApprovalStateApproved ApprovalState = "approved"
	ApprovalStateDenied   ApprovalState = "denied"
)

func (s ApprovalState) String() string { return string(s) }

func (s ApprovalState) IsValid() bool {
	switch s {
	case ApprovalStatePending, ApprovalStateApproved, ApprovalStateDenied:
		return true
	}
	return false
}

// IsDecision reports whether s can be set by an administrator.
func (s ApprovalState) IsDecision() bool {
	return s == ApprovalStateApproved || s == ApprovalStateDenied
}

// ApprovalRecord is the per-user gate state.
type ApprovalRecord struct {
	UserID         string
	State          ApprovalState
	RequestedAt    time.Time
	LastActivityAt time.Time
	DecidedAt      *time.Time
}

// IsExpiredAt reports whether the record has been inactive for the full
// retention window.
func (r ApprovalRecord) IsExpiredAt(now time.Time) bool {
	return now.Sub(r.LastActivityAt) >= ApprovalRetention
}

// GateDecision is the outcome of an approval gate check.
type GateDecision string

const (
	GateAllowed         GateDecision = "allowed"
	GateDenied          GateDecision = "denied"
	GatePendingApproval GateDecision = "pending_approval"
)

func (d GateDecision) String() string { return string(d) }

// DecisionFor maps a record state to the gate outcome.
func DecisionFor(state ApprovalState) GateDecision {
	switch state {
	case ApprovalStateApproved:
		return GateAllowed
	case ApprovalStateDenied:
		return GateDenied
	default:
		return GatePendingApproval
	}
}

// SweepReport summarizes one supervisor run.
type SweepReport struct {
	Removed int
	ByState map[ApprovalState]int
}
