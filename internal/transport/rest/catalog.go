package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

type itemResolver interface {
	Resolve(ctx context.Context, query string) ([]domain.Match, error)
}

type catalogService interface {
	GetItem(ctx context.Context, id string) (*domain.CatalogItem, error)
	UpsertItem(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error)
}

// CatalogHandler serves catalog lookup and maintenance endpoints.
type CatalogHandler struct {
	resolver itemResolver
	catalog  catalogService
	log      *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(resolver itemResolver, catalog catalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		resolver: resolver,
		catalog:  catalog,
		log:      logger.With("handler", "catalog"),
	}
}

// Resolve ranks catalog items against a free-text query.
// GET /api/catalog/resolve?q=portal
func (h *CatalogHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	matches, err := h.resolver.Resolve(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		resp = append(resp, toMatchResponse(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": resp})
}

// GetItem returns a single catalog item.
// GET /api/catalog/items/{id}
func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(*item))
}

type putItemRequest struct {
	Name             string          `json:"name"`
	ReleaseAt        *time.Time      `json:"release_at"`
	ReleasePrecision string          `json:"release_precision"`
	ReleaseText      *string         `json:"release_text"`
	Metadata         json.RawMessage `json:"metadata"`
}

// PutItem creates or replaces a catalog item. When only release_text is
// given the release instant is parsed from it.
// PUT /api/catalog/items/{id}
func (h *CatalogHandler) PutItem(w http.ResponseWriter, r *http.Request) {
	var req putItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item := domain.CatalogItem{
		ID:               chi.URLParam(r, "id"),
		Name:             req.Name,
		ReleaseAt:        req.ReleaseAt,
		ReleasePrecision: domain.ReleasePrecision(req.ReleasePrecision),
		ReleaseText:      req.ReleaseText,
		Metadata:         req.Metadata,
	}
	if item.ReleaseAt == nil && item.ReleasePrecision == "" && req.ReleaseText != nil {
		item.ReleaseAt, item.ReleasePrecision = domain.ParseReleaseText(*req.ReleaseText)
	}

	saved, err := h.catalog.UpsertItem(r.Context(), item)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(*saved))
}
