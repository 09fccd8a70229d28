package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ReleasePrecision tells how precise a parsed release date is.
type ReleasePrecision string

const (
	ReleasePrecisionDay     ReleasePrecision = "day"
	ReleasePrecisionMonth   ReleasePrecision = "month"
	ReleasePrecisionQuarter ReleasePrecision = "quarter"
	ReleasePrecisionSeason  ReleasePrecision = "season"
	ReleasePrecisionYear    ReleasePrecision = "year"
	ReleasePrecisionUnknown ReleasePrecision = "unknown"
)

func (p ReleasePrecision) String() string { return string(p) }

func (p ReleasePrecision) IsValid() bool {
	switch p {
	case ReleasePrecisionDay, ReleasePrecisionMonth, ReleasePrecisionQuarter,
		ReleasePrecisionSeason, ReleasePrecisionYear, ReleasePrecisionUnknown:
		return true
	}
	return false
}

// CatalogItem is a releasable entry of the catalog, keyed by its Steam app id.
type CatalogItem struct {
	ID               string
	Name             string
	NameNormalized   string
	ReleaseAt        *time.Time
	ReleasePrecision ReleasePrecision
	ReleaseText      *string
	Metadata         json.RawMessage
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ItemMetadata is the shape the refresher and the importer write into
// CatalogItem.Metadata. Readers treat the blob as opaque.
type ItemMetadata struct {
	ShortDescription string   `json:"short_description,omitempty"`
	HeaderImage      string   `json:"header_image,omitempty"`
	Price            string   `json:"price,omitempty"`
	Developers       []string `json:"developers,omitempty"`
	Publishers       []string `json:"publishers,omitempty"`
	Genres           []string `json:"genres,omitempty"`
}

// StoreURL returns the public Steam store page of the item.
func (c CatalogItem) StoreURL() string {
	return "https://store.steampowered.com/app/" + c.ID
}

// IsReleasedAt reports whether the release instant is known and not after now.
func (c CatalogItem) IsReleasedAt(now time.Time) bool {
	return c.ReleaseAt != nil && !c.ReleaseAt.After(now)
}

// Validate checks the fields an upsert needs. It also fills NameNormalized
// and defaults ReleasePrecision.
func (c *CatalogItem) Validate() error {
	var errs []FieldError

	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)

	if c.ID == "" {
		errs = append(errs, FieldError{Field: "id", Message: "required"})
	} else if !IsCatalogID(c.ID) {
		errs = append(errs, FieldError{Field: "id", Message: "must be a numeric app id"})
	}
	if c.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}

	if c.ReleasePrecision == "" {
		if c.ReleaseAt == nil {
			c.ReleasePrecision = ReleasePrecisionUnknown
		} else {
			c.ReleasePrecision = ReleasePrecisionDay
		}
	}
	if !c.ReleasePrecision.IsValid() {
		errs = append(errs, FieldError{Field: "release_precision", Message: fmt.Sprintf("invalid value %q", c.ReleasePrecision)})
	}
	if c.ReleaseAt == nil && c.ReleasePrecision != ReleasePrecisionUnknown {
		errs = append(errs, FieldError{Field: "release_at", Message: "required when precision is known"})
	}

	if len(c.Metadata) > 0 && !json.Valid(c.Metadata) {
		errs = append(errs, FieldError{Field: "metadata", Message: "must be valid JSON"})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}

	c.NameNormalized = NormalizeText(c.Name)
	if c.ReleaseAt != nil {
		t := c.ReleaseAt.UTC()
		c.ReleaseAt = &t
	}
	return nil
}

// IsCatalogID reports whether s has the canonical identifier format:
// a non-empty string of ASCII digits without a leading zero.
func IsCatalogID(s string) bool {
	if s == "" || len(s) > 12 || s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseCatalogID extracts a canonical identifier from a query. Besides a bare
// app id it accepts a store link such as
// "https://store.steampowered.com/app/1091500/Cyberpunk_2077/".
func ParseCatalogID(query string) (string, bool) {
	q := strings.TrimSpace(query)
	if IsCatalogID(q) {
		return q, true
	}

	const marker = "store.steampowered.com/app/"
	idx := strings.Index(strings.ToLower(q), marker)
	if idx < 0 {
		return "", false
	}
	rest := q[idx+len(marker):]
	if end := strings.IndexAny(rest, "/?#"); end >= 0 {
		rest = rest[:end]
	}
	if IsCatalogID(rest) {
		return rest, true
	}
	return "", false
}

// MaxScore is the score of an identifier hit and of an exact name match.
const MaxScore = 1.0

// Match is one ranked resolver candidate.
type Match struct {
	Item  CatalogItem
	Score float64
}
