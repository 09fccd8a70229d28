// Package arr requests movies from Radarr and shows from Sonarr.
package arr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/ingrid-backend/internal/config"
	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

// Rejection reasons surfaced to the user.
const (
	ReasonNotConfigured = "provider not configured"
	ReasonInvalidID     = "invalid external id"
	ReasonNotFound      = "not found"
	ReasonAlreadyAdded  = "already added"
)

const maxErrorBody = 1024

// kind describes the per-backend differences of the v3 API.
type kind struct {
	name         string
	resource     string
	idField      string
	termPrefix   string
	searchOption string
	sendLanguage bool
}

var (
	radarrKind = kind{
		name:         "radarr",
		resource:     "movie",
		idField:      "tmdbId",
		termPrefix:   "tmdb",
		searchOption: "searchForMovie",
	}
	sonarrKind = kind{
		name:         "sonarr",
		resource:     "series",
		idField:      "tvdbId",
		termPrefix:   "tvdb",
		searchOption: "searchForMissingEpisodes",
		sendLanguage: true,
	}
)

// Client talks to one Radarr or Sonarr instance.
type Client struct {
	kind       kind
	cfg        config.ArrConfig
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewRadarr creates a movie fulfillment client.
func NewRadarr(cfg config.ArrConfig, logger *slog.Logger) *Client {
	return newClient(radarrKind, cfg, logger)
}

// NewSonarr creates a show fulfillment client.
func NewSonarr(cfg config.ArrConfig, logger *slog.Logger) *Client {
	return newClient(sonarrKind, cfg, logger)
}

func newClient(k kind, cfg config.ArrConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		kind:       k,
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", k.name),
	}
}

// RequestFulfillment adds the title with the given TMDB (Radarr) or TVDB
// (Sonarr) id to the library. Titles already in the library, unknown ids
// and refusals by the backend are rejections. Network failures and 5xx
// responses wrap domain.ErrTransient.
func (c *Client) RequestFulfillment(ctx context.Context, externalID string) (domain.FulfillmentResult, error) {
	if !c.cfg.Enabled() {
		return domain.Rejected(ReasonNotConfigured, ""), nil
	}

	id, err := strconv.ParseInt(strings.TrimSpace(externalID), 10, 64)
	if err != nil || id <= 0 {
		return domain.Rejected(ReasonInvalidID, ""), nil
	}

	var library []map[string]any
	if err := c.get(ctx, "/api/v3/"+c.kind.resource, nil, &library); err != nil {
		return domain.FulfillmentResult{}, err
	}
	for _, entry := range library {
		if matchesID(entry[c.kind.idField], id) {
			return domain.Rejected(ReasonAlreadyAdded, titleOf(entry)), nil
		}
	}

	var results []map[string]any
	term := url.Values{"term": {fmt.Sprintf("%s:%d", c.kind.termPrefix, id)}}
	if err := c.get(ctx, "/api/v3/"+c.kind.resource+"/lookup", term, &results); err != nil {
		return domain.FulfillmentResult{}, err
	}
	if len(results) == 0 {
		return domain.Rejected(ReasonNotFound, ""), nil
	}

	payload := results[0]
	title := titleOf(payload)
	payload["qualityProfileId"] = c.cfg.QualityProfileID
	payload["rootFolderPath"] = c.cfg.RootFolder
	payload["monitored"] = true
	payload["addOptions"] = map[string]any{c.kind.searchOption: c.cfg.SearchOnAdd}
	if c.kind.sendLanguage && c.cfg.LanguageProfileID > 0 {
		payload["languageProfileId"] = c.cfg.LanguageProfileID
	}

	status, body, err := c.post(ctx, "/api/v3/"+c.kind.resource, payload)
	if err != nil {
		return domain.FulfillmentResult{}, err
	}
	if status >= 200 && status < 300 {
		c.log.InfoContext(ctx, "title added", slog.Int64("external_id", id), slog.String("title", title))
		return domain.Accepted(title), nil
	}

	lowered := strings.ToLower(body)
	if strings.Contains(lowered, "already been added") || strings.Contains(lowered, "already exists") {
		return domain.Rejected(ReasonAlreadyAdded, title), nil
	}
	c.log.WarnContext(ctx, "add refused",
		slog.Int64("external_id", id),
		slog.Int("status", status),
		slog.String("body", body),
	)
	return domain.Rejected(fmt.Sprintf("refused by %s (status %d)", c.kind.name, status), title), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.kind.name, err)
	}

	status, body, err := c.do(req)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%s: GET %s: status %d: %s", c.kind.name, path, status, body)
	}
	if body == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return fmt.Errorf("%s: decode %s: %w", c.kind.name, path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("%s: encode payload: %w", c.kind.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, "", fmt.Errorf("%s: create request: %w", c.kind.name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// do sends the request with the API key. Transport errors and 5xx
// responses are returned as domain.ErrTransient.
func (c *Client) do(req *http.Request) (int, string, error) {
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(req.Context(), "request failed",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("error", err.Error()),
		)
		return 0, "", fmt.Errorf("%s: %s %s: %v: %w", c.kind.name, req.Method, req.URL.Path, err, domain.ErrTransient)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return 0, "", fmt.Errorf("%s: read body: %v: %w", c.kind.name, err, domain.ErrTransient)
	}

	if resp.StatusCode >= 500 {
		return resp.StatusCode, "", fmt.Errorf("%s: %s %s: status %d: %w",
			c.kind.name, req.Method, req.URL.Path, resp.StatusCode, domain.ErrTransient)
	}

	text := string(body)
	if resp.StatusCode >= 300 && len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return resp.StatusCode, text, nil
}

func matchesID(v any, id int64) bool {
	switch n := v.(type) {
	case float64:
		return int64(n) == id
	case json.Number:
		got, err := n.Int64()
		return err == nil && got == id
	}
	return false
}

func titleOf(entry map[string]any) string {
	title, _ := entry["title"].(string)
	if year, ok := entry["year"].(float64); ok && year > 0 && title != "" {
		return fmt.Sprintf("%s (%d)", title, int(year))
	}
	return title
}
