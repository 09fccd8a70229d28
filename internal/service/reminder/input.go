package reminder

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

// SubscribeInput holds the parameters for a subscription. Exactly one of
// Query and ItemID is set.
type SubscribeInput struct {
	UserID string
	Query  string
	ItemID string
}

// Validate checks all fields and collects all errors.
func (i SubscribeInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.UserID) == "" {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}

	query := strings.TrimSpace(i.Query)
	itemID := strings.TrimSpace(i.ItemID)
	switch {
	case query == "" && itemID == "":
		errs = append(errs, domain.FieldError{Field: "query", Message: "query or item_id is required"})
	case query != "" && itemID != "":
		errs = append(errs, domain.FieldError{Field: "query", Message: "give either query or item_id, not both"})
	case itemID != "" && !domain.IsCatalogID(itemID):
		errs = append(errs, domain.FieldError{Field: "item_id", Message: "must be a numeric app id"})
	}
	if len(query) > 200 {
		errs = append(errs, domain.FieldError{Field: "query", Message: "max 200 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// SubscribeResult is a created subscription with its item.
type SubscribeResult struct {
	Subscription domain.Subscription
	Item         domain.CatalogItem
}

// AmbiguousError is returned when a query matches several items and none
// of them is a clear winner. The caller should ask the user to pick one of
// Candidates.
type AmbiguousError struct {
	Query      string
	Candidates []domain.Match
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("query %q is ambiguous: %d candidates", e.Query, len(e.Candidates))
}

func (e *AmbiguousError) Unwrap() error { return domain.ErrValidation }
