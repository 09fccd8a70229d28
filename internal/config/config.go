package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Approval  ApprovalConfig  `yaml:"approval"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Steam     SteamConfig     `yaml:"steam"`
	Radarr    ArrConfig       `yaml:"radarr" env-prefix:"RADARR_"`
	Sonarr    ArrConfig       `yaml:"sonarr" env-prefix:"SONARR_"`
	Notifier  NotifierConfig  `yaml:"notifier"`
	Sentry    SentryConfig    `yaml:"sentry"`
	Retention RetentionConfig `yaml:"retention"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// RateLimit is the per-client request budget per minute; 0 disables it.
	RateLimit int `yaml:"rate_limit" env:"SERVER_RATE_LIMIT" env-default:"120"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
	// ConnectRetry bounds how long startup keeps retrying an unreachable
	// database; 0 means a single attempt.
	ConnectRetry time.Duration `yaml:"connect_retry" env:"DATABASE_CONNECT_RETRY" env-default:"2m"`
}

// AuthConfig holds bearer-token settings for API clients.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	JWTIssuer string        `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"ingrid"`
	TokenTTL  time.Duration `yaml:"token_ttl"  env:"AUTH_TOKEN_TTL"  env-default:"8760h"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// SchedulerConfig holds Reminder Scheduler settings.
type SchedulerConfig struct {
	Interval           time.Duration `yaml:"interval"            env:"SCHEDULER_INTERVAL"            env-default:"24h"`
	NotificationWindow time.Duration `yaml:"notification_window" env:"SCHEDULER_NOTIFICATION_WINDOW" env-default:"24h"`
	DeliveryTimeout    time.Duration `yaml:"delivery_timeout"    env:"SCHEDULER_DELIVERY_TIMEOUT"    env-default:"10s"`
	Concurrency        int           `yaml:"concurrency"         env:"SCHEDULER_CONCURRENCY"         env-default:"4"`
	BatchSize          int           `yaml:"batch_size"          env:"SCHEDULER_BATCH_SIZE"          env-default:"500"`
	RunOnStart         bool          `yaml:"run_on_start"        env:"SCHEDULER_RUN_ON_START"        env-default:"true"`
	SubscribeGrace     time.Duration `yaml:"subscribe_grace"     env:"SCHEDULER_SUBSCRIBE_GRACE"     env-default:"24h"`
	RetryMaxInterval   time.Duration `yaml:"retry_max_interval"  env:"SCHEDULER_RETRY_MAX_INTERVAL"  env-default:"5m"`
}

// ApprovalConfig holds Approval Supervisor settings. The retention window
// itself is fixed (domain.ApprovalRetention).
type ApprovalConfig struct {
	SupervisorInterval time.Duration `yaml:"supervisor_interval" env:"APPROVAL_SUPERVISOR_INTERVAL" env-default:"24h"`
	AdminUserID        string        `yaml:"admin_user_id"       env:"APPROVAL_ADMIN_USER_ID"`
}

// ResolverConfig holds fuzzy lookup settings.
type ResolverConfig struct {
	TopN           int     `yaml:"top_n"           env:"RESOLVER_TOP_N"           env-default:"5"`
	MinScore       float64 `yaml:"min_score"       env:"RESOLVER_MIN_SCORE"       env-default:"0.35"`
	CandidateLimit int     `yaml:"candidate_limit" env:"RESOLVER_CANDIDATE_LIMIT" env-default:"2000"`
}

// CatalogConfig holds catalog refresh settings.
type CatalogConfig struct {
	RefreshEnabled  bool          `yaml:"refresh_enabled"  env:"CATALOG_REFRESH_ENABLED"  env-default:"true"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"CATALOG_REFRESH_INTERVAL" env-default:"24h"`
}

// SteamConfig holds Steam store API settings.
type SteamConfig struct {
	BaseURL  string        `yaml:"base_url" env:"STEAM_BASE_URL" env-default:"https://store.steampowered.com"`
	Country  string        `yaml:"country"  env:"STEAM_COUNTRY"  env-default:"US"`
	Language string        `yaml:"language" env:"STEAM_LANGUAGE" env-default:"english"`
	Timeout  time.Duration `yaml:"timeout"  env:"STEAM_TIMEOUT"  env-default:"10s"`
}

// ArrConfig holds Radarr or Sonarr settings. A backend with an empty
// BaseURL is treated as not configured.
type ArrConfig struct {
	BaseURL           string        `yaml:"base_url"            env:"BASE_URL"`
	APIKey            string        `yaml:"api_key"             env:"API_KEY"`
	RootFolder        string        `yaml:"root_folder"         env:"ROOT_FOLDER"`
	QualityProfileID  int           `yaml:"quality_profile_id"  env:"QUALITY_PROFILE_ID"`
	LanguageProfileID int           `yaml:"language_profile_id" env:"LANGUAGE_PROFILE_ID" env-default:"1"`
	SearchOnAdd       bool          `yaml:"search_on_add"       env:"SEARCH_ON_ADD"       env-default:"false"`
	Timeout           time.Duration `yaml:"timeout"             env:"TIMEOUT"             env-default:"10s"`
}

// Enabled reports whether the backend has enough settings to be called.
func (c ArrConfig) Enabled() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

// NotifierConfig holds Notification Sink settings. With an empty
// WebhookURL notifications are only logged.
type NotifierConfig struct {
	WebhookURL string        `yaml:"webhook_url" env:"NOTIFIER_WEBHOOK_URL"`
	Username   string        `yaml:"username"    env:"NOTIFIER_USERNAME"    env-default:"Ingrid"`
	Timeout    time.Duration `yaml:"timeout"     env:"NOTIFIER_TIMEOUT"     env-default:"10s"`
}

// SentryConfig holds error reporting settings. An empty DSN disables it.
type SentryConfig struct {
	DSN         string `yaml:"dsn"         env:"SENTRY_DSN"`
	Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT" env-default:"production"`
}

// RetentionConfig holds history pruning settings used by cmd/cleanup.
type RetentionConfig struct {
	NotifiedHistoryDays int `yaml:"notified_history_days" env:"RETENTION_NOTIFIED_HISTORY_DAYS" env-default:"30"`
}
