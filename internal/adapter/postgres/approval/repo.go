// Package approval implements the ApprovalRecord repository using PostgreSQL.
package approval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/heartmarshall/ingrid-backend/internal/adapter/postgres"
	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

const table = "approvals"

var columns = []string{"user_id", "state", "requested_at", "last_activity_at", "decided_at"}

// Repo provides approval persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new approval repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type approvalRow struct {
	UserID         string     `db:"user_id"`
	State          string     `db:"state"`
	RequestedAt    time.Time  `db:"requested_at"`
	LastActivityAt time.Time  `db:"last_activity_at"`
	DecidedAt      *time.Time `db:"decided_at"`
}

type touchRow struct {
	approvalRow
	Created bool `db:"created"`
}

func (r approvalRow) toDomain() domain.ApprovalRecord {
	rec := domain.ApprovalRecord{
		UserID:         r.UserID,
		State:          domain.ApprovalState(r.State),
		RequestedAt:    r.RequestedAt.UTC(),
		LastActivityAt: r.LastActivityAt.UTC(),
	}
	if r.DecidedAt != nil {
		t := r.DecidedAt.UTC()
		rec.DecidedAt = &t
	}
	return rec
}

func returning(extra ...string) string {
	return "RETURNING " + strings.Join(append(append([]string{}, columns...), extra...), ", ")
}

// Touch records a gated action by userID at now. A missing record is
// created in the pending state; an existing one only has last_activity_at
// refreshed. created reports whether this call inserted the record.
// Concurrent calls for the same user never produce duplicates.
func (r *Repo) Touch(ctx context.Context, userID string, now time.Time) (rec domain.ApprovalRecord, created bool, err error) {
	now = now.UTC()
	query, args, err := postgres.Builder().
		Insert(table).
		Columns("user_id", "state", "requested_at", "last_activity_at").
		Values(userID, string(domain.ApprovalStatePending), now, now).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET last_activity_at = EXCLUDED.last_activity_at " +
			returning("(xmax = 0) AS created")).
		ToSql()
	if err != nil {
		return domain.ApprovalRecord{}, false, fmt.Errorf("build touch approval: %w", err)
	}

	var row touchRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, query, args...); err != nil {
		return domain.ApprovalRecord{}, false, postgres.MapError(err, "approval", userID)
	}
	return row.approvalRow.toDomain(), row.Created, nil
}

// SetState records an administrative decision, creating the record when the
// user never passed the gate. decided_at and last_activity_at become now.
func (r *Repo) SetState(ctx context.Context, userID string, state domain.ApprovalState, now time.Time) (*domain.ApprovalRecord, error) {
	now = now.UTC()
	query, args, err := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(userID, string(state), now, now, now).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
	state = EXCLUDED.state,
	decided_at = EXCLUDED.decided_at,
	last_activity_at = EXCLUDED.last_activity_at ` + returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build set approval state: %w", err)
	}

	var row approvalRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, query, args...); err != nil {
		return nil, postgres.MapError(err, "approval", userID)
	}
	rec := row.toDomain()
	return &rec, nil
}

// Get returns the record of userID.
// Returns domain.ErrNotFound if the user has none.
func (r *Repo) Get(ctx context.Context, userID string) (*domain.ApprovalRecord, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get approval: %w", err)
	}

	var row approvalRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, query, args...); err != nil {
		return nil, postgres.MapError(err, "approval", userID)
	}
	rec := row.toDomain()
	return &rec, nil
}

// List returns records ordered by most recent activity, optionally
// filtered by state, and the total number of matching records.
func (r *Repo) List(ctx context.Context, state *domain.ApprovalState, limit, offset int) ([]domain.ApprovalRecord, int, error) {
	filter := squirrel.And{}
	if state != nil {
		filter = append(filter, squirrel.Eq{"state": string(*state)})
	}

	countQuery, countArgs, err := postgres.Builder().
		Select("count(*)").
		From(table).
		Where(filter).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count approvals: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	var total int
	if err := q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(err, "approval", "count")
	}

	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(filter).
		OrderBy("last_activity_at DESC", "user_id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list approvals: %w", err)
	}

	var rows []approvalRow
	if err := pgxscan.Select(ctx, q, &rows, query, args...); err != nil {
		return nil, 0, postgres.MapError(err, "approval", "list")
	}

	out := make([]domain.ApprovalRecord, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, total, nil
}

// DeleteInactive removes every record whose last activity is at or before
// cutoff, whatever its state, and returns the removed records.
func (r *Repo) DeleteInactive(ctx context.Context, cutoff time.Time) ([]domain.ApprovalRecord, error) {
	query, args, err := postgres.Builder().
		Delete(table).
		Where(squirrel.LtOrEq{"last_activity_at": cutoff.UTC()}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete inactive approvals: %w", err)
	}

	var rows []approvalRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, "approval", "sweep")
	}

	out := make([]domain.ApprovalRecord, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}
