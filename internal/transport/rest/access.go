package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
	"github.com/heartmarshall/ingrid-backend/internal/service/fulfillment"
)

type approvalGate interface {
	Check(ctx context.Context, userID string) (domain.GateDecision, error)
}

type fulfillmentService interface {
	Request(ctx context.Context, input fulfillment.RequestInput) (domain.FulfillmentOutcome, error)
}

// AccessHandler serves the approval gate and gated fulfillment requests.
type AccessHandler struct {
	gate        approvalGate
	fulfillment fulfillmentService
	log         *slog.Logger
}

// NewAccessHandler creates an AccessHandler.
func NewAccessHandler(gate approvalGate, fulfillment fulfillmentService, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{gate: gate, fulfillment: fulfillment, log: logger.With("handler", "access")}
}

// Gate records activity for the user and returns the gate decision.
// POST /api/users/{userID}/gate
func (h *AccessHandler) Gate(w http.ResponseWriter, r *http.Request) {
	decision, err := h.gate.Check(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"decision": decision.String()})
}

type fulfillmentRequest struct {
	Kind       string `json:"kind"`
	ExternalID string `json:"external_id"`
}

// Fulfill checks the gate and forwards the request to Radarr or Sonarr.
// A gate refusal is a 200 carrying the decision; a provider rejection is
// a 200 with status "rejected".
// POST /api/users/{userID}/fulfillment
func (h *AccessHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	var req fulfillmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.fulfillment.Request(r.Context(), fulfillment.RequestInput{
		UserID:     chi.URLParam(r, "userID"),
		Kind:       domain.FulfillmentKind(req.Kind),
		ExternalID: req.ExternalID,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toFulfillmentResponse(out))
}
