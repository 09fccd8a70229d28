// Package resolver turns free text or an app id into ranked catalog matches.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

type catalogRepo interface {
	GetByID(ctx context.Context, id string) (*domain.CatalogItem, error)
	ListCandidates(ctx context.Context, text string, limit int) ([]domain.CatalogItem, error)
}

// Config holds ranking limits.
type Config struct {
	TopN           int
	MinScore       float64
	CandidateLimit int
}

// Service resolves user queries against the catalog. It only reads.
type Service struct {
	catalog catalogRepo
	cfg     Config
	log     *slog.Logger
}

// NewService creates a new resolver service.
func NewService(log *slog.Logger, catalog catalogRepo, cfg Config) *Service {
	return &Service{
		catalog: catalog,
		cfg:     cfg,
		log:     log.With("service", "resolver"),
	}
}

// Resolve returns at most TopN matches for query, best first.
// A query holding an app id (bare or as a store URL) that exists returns
// exactly that item with domain.MaxScore. Blank or unmatched queries return
// an empty slice and no error.
func (s *Service) Resolve(ctx context.Context, query string) ([]domain.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Match{}, nil
	}

	if id, ok := domain.ParseCatalogID(query); ok {
		item, err := s.catalog.GetByID(ctx, id)
		switch {
		case err == nil:
			return []domain.Match{{Item: *item, Score: domain.MaxScore}}, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("resolver.Resolve: get by id: %w", err)
		}
		s.log.DebugContext(ctx, "id lookup missed, falling back to text", slog.String("id", id))
	}

	normalized := domain.NormalizeText(query)
	if normalized == "" {
		return []domain.Match{}, nil
	}

	candidates, err := s.catalog.ListCandidates(ctx, normalized, s.cfg.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("resolver.Resolve: list candidates: %w", err)
	}

	matches := Rank(query, candidates, s.cfg.MinScore, s.cfg.TopN)
	s.log.DebugContext(ctx, "query resolved",
		slog.Int("candidates", len(candidates)),
		slog.Int("matches", len(matches)),
	)
	return matches, nil
}
