// Package steam fetches app details from the Steam store API.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heartmarshall/ingrid-backend/internal/config"
	"github.com/heartmarshall/ingrid-backend/internal/domain"
	"github.com/heartmarshall/ingrid-backend/internal/provider"
)

const retryDelay = 500 * time.Millisecond

// Provider fetches catalog data from the Steam store.
type Provider struct {
	baseURL    string
	country    string
	language   string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider from the steam config section.
func NewProvider(cfg config.SteamConfig, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		country:    cfg.Country,
		language:   cfg.Language,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.With("adapter", "steam"),
	}
}

// NewProviderWithURL creates a Provider with a custom base URL (for testing).
func NewProviderWithURL(baseURL string, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		country:    "US",
		language:   "english",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.With("adapter", "steam"),
	}
}

// FetchApp fetches the store record of appID.
// Returns nil, nil if Steam does not know the app.
// Network failures, 429 and 5xx responses wrap domain.ErrTransient.
func (p *Provider) FetchApp(ctx context.Context, appID string) (*provider.StoreItem, error) {
	q := url.Values{}
	q.Set("appids", appID)
	q.Set("l", p.language)
	q.Set("cc", p.country)
	reqURL := p.baseURL + "/api/appdetails?" + q.Encode()

	p.log.DebugContext(ctx, "steam request", slog.String("app_id", appID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("steam: create request: %w", err)
	}

	resp, err := p.doWithRetry(ctx, req, appID)
	if err != nil {
		p.log.ErrorContext(ctx, "steam request failed", slog.String("app_id", appID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("steam: request failed: %v: %w", err, domain.ErrTransient)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("steam: status %d: %w", resp.StatusCode, domain.ErrTransient)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("steam: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("steam: read body: %w", err)
	}

	var envelopes map[string]appDetailsEnvelope
	if err := json.Unmarshal(body, &envelopes); err != nil {
		return nil, fmt.Errorf("steam: decode json: %w", err)
	}

	env, ok := envelopes[appID]
	if !ok || !env.Success || env.Data == nil {
		p.log.DebugContext(ctx, "steam app not found", slog.String("app_id", appID))
		return nil, nil
	}

	item := mapAppDetails(appID, env.Data)

	p.log.DebugContext(ctx, "steam response",
		slog.String("app_id", appID),
		slog.String("name", item.Name),
		slog.String("release", item.ReleaseText),
	)

	return item, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (p *Provider) doWithRetry(ctx context.Context, req *http.Request, appID string) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "steam retry", slog.String("app_id", appID), slog.String("reason", reason))

	// Close body from the failed attempt before retrying.
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryDelay):
	}

	return p.httpClient.Do(req)
}

func mapAppDetails(appID string, d *appDetails) *provider.StoreItem {
	item := &provider.StoreItem{
		ID:               appID,
		Name:             strings.TrimSpace(d.Name),
		ReleaseText:      strings.TrimSpace(d.ReleaseDate.Date),
		ComingSoon:       d.ReleaseDate.ComingSoon,
		ShortDescription: d.ShortDescription,
		HeaderImage:      d.HeaderImage,
		Developers:       d.Developers,
		Publishers:       d.Publishers,
	}

	switch {
	case d.PriceOverview != nil:
		item.Price = d.PriceOverview.FinalFormatted
	case d.IsFree:
		item.Price = "Free"
	}

	for _, g := range d.Genres {
		if g.Description != "" {
			item.Genres = append(item.Genres, g.Description)
		}
	}
	return item
}
