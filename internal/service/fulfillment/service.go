// Package fulfillment forwards gated media requests to Radarr or Sonarr.
package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

type gate interface {
	Check(ctx context.Context, userID string) (domain.GateDecision, error)
}

// Provider adds a title by its external id.
type Provider interface {
	RequestFulfillment(ctx context.Context, externalID string) (domain.FulfillmentResult, error)
}

// Service routes requests by kind after the approval gate allows them.
type Service struct {
	gate      gate
	providers map[domain.FulfillmentKind]Provider
	log       *slog.Logger
}

// NewService creates a new fulfillment service. A kind without a provider
// is rejected as not configured.
func NewService(log *slog.Logger, g gate, movies, shows Provider) *Service {
	providers := map[domain.FulfillmentKind]Provider{}
	if movies != nil {
		providers[domain.FulfillmentKindMovie] = movies
	}
	if shows != nil {
		providers[domain.FulfillmentKindShow] = shows
	}
	return &Service{
		gate:      g,
		providers: providers,
		log:       log.With("service", "fulfillment"),
	}
}

// RequestInput holds the parameters of a fulfillment request.
type RequestInput struct {
	UserID     string
	Kind       domain.FulfillmentKind
	ExternalID string
}

// Validate checks all fields and collects all errors.
func (i RequestInput) Validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(i.UserID) == "" {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if !i.Kind.IsValid() {
		errs = append(errs, domain.FieldError{Field: "kind", Message: "must be movie or show"})
	}
	if strings.TrimSpace(i.ExternalID) == "" {
		errs = append(errs, domain.FieldError{Field: "external_id", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Request checks the gate and, when allowed, asks the provider for the
// title. A gate decision other than allowed is returned without calling
// the provider. Provider transport failures wrap domain.ErrTransient and
// are not retried.
func (s *Service) Request(ctx context.Context, input RequestInput) (domain.FulfillmentOutcome, error) {
	if err := input.Validate(); err != nil {
		return domain.FulfillmentOutcome{}, err
	}
	userID := strings.TrimSpace(input.UserID)

	decision, err := s.gate.Check(ctx, userID)
	if err != nil {
		return domain.FulfillmentOutcome{}, fmt.Errorf("fulfillment.Request: gate: %w", err)
	}
	if decision != domain.GateAllowed {
		s.log.InfoContext(ctx, "fulfillment blocked by gate",
			slog.String("user_id", userID),
			slog.String("decision", decision.String()),
		)
		return domain.FulfillmentOutcome{Decision: decision}, nil
	}

	p, ok := s.providers[input.Kind]
	if !ok {
		res := domain.Rejected("provider not configured", "")
		return domain.FulfillmentOutcome{Decision: decision, Result: &res}, nil
	}

	res, err := p.RequestFulfillment(ctx, strings.TrimSpace(input.ExternalID))
	if err != nil {
		return domain.FulfillmentOutcome{}, fmt.Errorf("fulfillment.Request: %s: %w", input.Kind, err)
	}

	s.log.InfoContext(ctx, "fulfillment requested",
		slog.String("user_id", userID),
		slog.String("kind", input.Kind.String()),
		slog.String("external_id", input.ExternalID),
		slog.String("status", string(res.Status)),
		slog.String("reason", res.Reason),
	)
	return domain.FulfillmentOutcome{Decision: decision, Result: &res}, nil
}
