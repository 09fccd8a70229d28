// Package webhook delivers chat messages through an incoming-webhook URL
// (Discord-compatible JSON payload).
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/ingrid-backend/internal/config"
	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

type payload struct {
	Username        string          `json:"username,omitempty"`
	Content         string          `json:"content"`
	AllowedMentions allowedMentions `json:"allowed_mentions"`
}

type allowedMentions struct {
	Users []string `json:"users"`
}

// Notifier posts messages to a webhook.
type Notifier struct {
	url        string
	username   string
	httpClient *http.Client
	log        *slog.Logger
}

// New creates a Notifier from config.
func New(cfg config.NotifierConfig, logger *slog.Logger) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		url:        cfg.WebhookURL,
		username:   cfg.Username,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "webhook"),
	}
}

// Deliver sends message with a mention of userID. Any non-2xx answer is
// an error; 429 and 5xx wrap domain.ErrTransient.
func (n *Notifier) Deliver(ctx context.Context, userID, message string) error {
	content := message
	var mentions []string
	if userID != "" {
		content = fmt.Sprintf("<@%s> %s", userID, message)
		mentions = []string{userID}
	}

	raw, err := json.Marshal(payload{
		Username:        n.username,
		Content:         content,
		AllowedMentions: allowedMentions{Users: mentions},
	})
	if err != nil {
		return fmt.Errorf("webhook: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %v: %w", err, domain.ErrTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		n.log.DebugContext(ctx, "message delivered", slog.String("user_id", userID))
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("webhook: status %d: %s: %w", resp.StatusCode, body, domain.ErrTransient)
	}
	return fmt.Errorf("webhook: status %d: %s", resp.StatusCode, body)
}
