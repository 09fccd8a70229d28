package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
	"github.com/heartmarshall/ingrid-backend/internal/service/approval"
	"github.com/heartmarshall/ingrid-backend/internal/worker"
)

type approvalAdmin interface {
	SetState(ctx context.Context, userID string, state domain.ApprovalState) (*domain.ApprovalRecord, error)
	Get(ctx context.Context, userID string) (*domain.ApprovalRecord, error)
	List(ctx context.Context, input approval.ListInput) ([]domain.ApprovalRecord, int, error)
}

type taskRegistry interface {
	Tasks() []*worker.Task
	Trigger(name string) error
}

// AdminHandler serves admin REST endpoints.
type AdminHandler struct {
	approvals approvalAdmin
	tasks     taskRegistry
	log       *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(approvals approvalAdmin, tasks taskRegistry, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		approvals: approvals,
		tasks:     tasks,
		log:       logger.With("handler", "admin"),
	}
}

// ListApprovals returns approval records filtered by state.
// GET /api/admin/approvals?state=pending&limit=50&offset=0
func (h *AdminHandler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	var input approval.ListInput
	if v := r.URL.Query().Get("state"); v != "" {
		state := domain.ApprovalState(v)
		input.State = &state
	}

	var err error
	if input.Limit, err = queryInt(r, "limit"); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if input.Offset, err = queryInt(r, "offset"); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	records, total, err := h.approvals.List(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := make([]approvalResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toApprovalResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"approvals": resp, "total": total})
}

// GetApproval returns one user's approval record.
// GET /api/admin/approvals/{userID}
func (h *AdminHandler) GetApproval(w http.ResponseWriter, r *http.Request) {
	rec, err := h.approvals.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toApprovalResponse(*rec))
}

type setApprovalRequest struct {
	State string `json:"state"`
}

// SetApproval records an administrative decision.
// PUT /api/admin/approvals/{userID}
func (h *AdminHandler) SetApproval(w http.ResponseWriter, r *http.Request) {
	var req setApprovalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.approvals.SetState(r.Context(), chi.URLParam(r, "userID"), domain.ApprovalState(req.State))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toApprovalResponse(*rec))
}

type taskResponse struct {
	Name     string `json:"name"`
	Interval string `json:"interval"`
}

// ListTasks returns the registered background tasks.
// GET /api/admin/tasks
func (h *AdminHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := h.tasks.Tasks()
	resp := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, taskResponse{Name: t.Name(), Interval: t.Interval().String()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": resp})
}

// RunTask queues one run of a background task.
// POST /api/admin/tasks/{name}/run
func (h *AdminHandler) RunTask(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.tasks.Trigger(name); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	h.log.InfoContext(r.Context(), "task run requested", slog.String("task", name))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "task": name})
}
