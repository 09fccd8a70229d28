// Package provider holds the result types returned by upstream catalog providers.
package provider

import (
	"encoding/json"
	"strings"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

// StoreItem is the upstream store record of one app.
type StoreItem struct {
	ID               string
	Name             string
	ReleaseText      string
	ComingSoon       bool
	ShortDescription string
	HeaderImage      string
	Price            string
	Developers       []string
	Publishers       []string
	Genres           []string
}

// CatalogItem converts the record into a validated catalog item, parsing
// the free-form release text.
func (s StoreItem) CatalogItem() (domain.CatalogItem, error) {
	item := domain.CatalogItem{
		ID:   s.ID,
		Name: s.Name,
	}

	if text := strings.TrimSpace(s.ReleaseText); text != "" {
		item.ReleaseText = &text
	}
	item.ReleaseAt, item.ReleasePrecision = domain.ParseReleaseText(s.ReleaseText)

	meta, err := json.Marshal(domain.ItemMetadata{
		ShortDescription: s.ShortDescription,
		HeaderImage:      s.HeaderImage,
		Price:            s.Price,
		Developers:       s.Developers,
		Publishers:       s.Publishers,
		Genres:           s.Genres,
	})
	if err != nil {
		return domain.CatalogItem{}, err
	}
	item.Metadata = meta

	if err := item.Validate(); err != nil {
		return domain.CatalogItem{}, err
	}
	return item, nil
}
