package config

import (
	"fmt"
	"net/url"
)

// Default quality profiles of a fresh Radarr and Sonarr install.
const (
	defaultRadarrQualityProfile = 2
	defaultSonarrQualityProfile = 1
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Database.ConnectRetry < 0 {
		return fmt.Errorf("database: connect_retry must be >= 0 (got %s)", c.Database.ConnectRetry)
	}

	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server: rate_limit must be >= 0 (got %d)", c.Server.RateLimit)
	}

	if err := c.Scheduler.validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if c.Approval.SupervisorInterval <= 0 {
		return fmt.Errorf("approval: supervisor_interval must be > 0 (got %s)", c.Approval.SupervisorInterval)
	}
	if err := c.Resolver.validate(); err != nil {
		return fmt.Errorf("resolver: %w", err)
	}
	if c.Catalog.RefreshEnabled && c.Catalog.RefreshInterval <= 0 {
		return fmt.Errorf("catalog: refresh_interval must be > 0 (got %s)", c.Catalog.RefreshInterval)
	}
	if err := validateURL(c.Steam.BaseURL); err != nil {
		return fmt.Errorf("steam: base_url: %w", err)
	}
	if err := c.Radarr.validate(defaultRadarrQualityProfile); err != nil {
		return fmt.Errorf("radarr: %w", err)
	}
	if err := c.Sonarr.validate(defaultSonarrQualityProfile); err != nil {
		return fmt.Errorf("sonarr: %w", err)
	}
	if c.Notifier.WebhookURL != "" {
		if err := validateURL(c.Notifier.WebhookURL); err != nil {
			return fmt.Errorf("notifier: webhook_url: %w", err)
		}
	}
	if c.Retention.NotifiedHistoryDays < 1 {
		return fmt.Errorf("retention: notified_history_days must be >= 1 (got %d)", c.Retention.NotifiedHistoryDays)
	}

	return nil
}

func (s *SchedulerConfig) validate() error {
	if s.Interval <= 0 {
		return fmt.Errorf("interval must be > 0 (got %s)", s.Interval)
	}
	if s.NotificationWindow <= 0 {
		return fmt.Errorf("notification_window must be > 0 (got %s)", s.NotificationWindow)
	}
	if s.DeliveryTimeout <= 0 {
		return fmt.Errorf("delivery_timeout must be > 0 (got %s)", s.DeliveryTimeout)
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1 (got %d)", s.Concurrency)
	}
	if s.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1 (got %d)", s.BatchSize)
	}
	if s.SubscribeGrace < 0 {
		return fmt.Errorf("subscribe_grace must be >= 0 (got %s)", s.SubscribeGrace)
	}
	if s.RetryMaxInterval <= 0 {
		return fmt.Errorf("retry_max_interval must be > 0 (got %s)", s.RetryMaxInterval)
	}
	return nil
}

func (r *ResolverConfig) validate() error {
	if r.TopN < 1 {
		return fmt.Errorf("top_n must be >= 1 (got %d)", r.TopN)
	}
	if r.MinScore <= 0 || r.MinScore > 1 {
		return fmt.Errorf("min_score must be in (0, 1] (got %v)", r.MinScore)
	}
	if r.CandidateLimit < r.TopN {
		return fmt.Errorf("candidate_limit must be >= top_n (got %d)", r.CandidateLimit)
	}
	return nil
}

func (a *ArrConfig) validate(defaultQualityProfile int) error {
	if a.BaseURL == "" {
		return nil
	}
	if err := validateURL(a.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if a.APIKey == "" {
		return fmt.Errorf("api_key is required when base_url is set")
	}
	if a.RootFolder == "" {
		return fmt.Errorf("root_folder is required when base_url is set")
	}
	if a.QualityProfileID == 0 {
		a.QualityProfileID = defaultQualityProfile
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https (got %q)", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required (got %q)", raw)
	}
	return nil
}
