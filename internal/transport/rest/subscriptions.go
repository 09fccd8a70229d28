package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
	"github.com/heartmarshall/ingrid-backend/internal/service/reminder"
)

type subscriptionService interface {
	Subscribe(ctx context.Context, input reminder.SubscribeInput) (*reminder.SubscribeResult, error)
	List(ctx context.Context, userID string, includeNotified bool) ([]domain.SubscriptionView, error)
	Cancel(ctx context.Context, userID, itemID string) error
}

// SubscriptionHandler serves per-user reminder subscriptions.
type SubscriptionHandler struct {
	svc subscriptionService
	log *slog.Logger
}

// NewSubscriptionHandler creates a SubscriptionHandler.
func NewSubscriptionHandler(svc subscriptionService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc, log: logger.With("handler", "subscriptions")}
}

type subscribeRequest struct {
	Query  string `json:"query"`
	ItemID string `json:"item_id"`
}

type subscribeResponse struct {
	Subscription subscriptionResponse `json:"subscription"`
	Item         itemResponse         `json:"item"`
}

// Create subscribes a user to an item given by query or id.
// POST /api/users/{userID}/subscriptions
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.Subscribe(r.Context(), reminder.SubscribeInput{
		UserID: chi.URLParam(r, "userID"),
		Query:  req.Query,
		ItemID: req.ItemID,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	view := domain.SubscriptionView{
		Subscription:     result.Subscription,
		ItemName:         result.Item.Name,
		ReleaseAt:        result.Item.ReleaseAt,
		ReleasePrecision: result.Item.ReleasePrecision,
	}
	writeJSON(w, http.StatusCreated, subscribeResponse{
		Subscription: toSubscriptionResponse(view),
		Item:         toItemResponse(result.Item),
	})
}

// List returns a user's subscriptions, pending only unless
// include_notified=true.
// GET /api/users/{userID}/subscriptions
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	includeNotified := false
	if v := r.URL.Query().Get("include_notified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			handleError(w, r, h.log, domain.NewValidationError("include_notified", "must be a boolean"))
			return
		}
		includeNotified = b
	}

	views, err := h.svc.List(r.Context(), chi.URLParam(r, "userID"), includeNotified)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := make([]subscriptionResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toSubscriptionResponse(v))
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": resp})
}

// Delete cancels a pending subscription.
// DELETE /api/users/{userID}/subscriptions/{itemID}
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cancel(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "itemID")); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
