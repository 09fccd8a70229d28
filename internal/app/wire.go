package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/ingrid-backend/internal/adapter/notifier/logsink"
	"github.com/heartmarshall/ingrid-backend/internal/adapter/notifier/webhook"
	"github.com/heartmarshall/ingrid-backend/internal/adapter/postgres"
	approvalrepo "github.com/heartmarshall/ingrid-backend/internal/adapter/postgres/approval"
	catalogrepo "github.com/heartmarshall/ingrid-backend/internal/adapter/postgres/catalog"
	subscriptionrepo "github.com/heartmarshall/ingrid-backend/internal/adapter/postgres/subscription"
	"github.com/heartmarshall/ingrid-backend/internal/adapter/provider/arr"
	"github.com/heartmarshall/ingrid-backend/internal/adapter/provider/steam"
	"github.com/heartmarshall/ingrid-backend/internal/adapter/reporter"
	"github.com/heartmarshall/ingrid-backend/internal/clock"
	"github.com/heartmarshall/ingrid-backend/internal/config"
	"github.com/heartmarshall/ingrid-backend/internal/service/approval"
	"github.com/heartmarshall/ingrid-backend/internal/service/catalog"
	"github.com/heartmarshall/ingrid-backend/internal/service/fulfillment"
	"github.com/heartmarshall/ingrid-backend/internal/service/reminder"
	"github.com/heartmarshall/ingrid-backend/internal/service/resolver"
	"github.com/heartmarshall/ingrid-backend/migrations"
)

func connectBackOff(maxElapsed time.Duration) backoff.BackOff {
	if maxElapsed <= 0 {
		return &backoff.StopBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 15 * time.Second
	b.MaxElapsedTime = maxElapsed
	return b
}

// Notifier delivers a message to a user.
type Notifier interface {
	Deliver(ctx context.Context, userID, message string) error
}

// Components holds the assembled services shared by the server and the
// offline commands.
type Components struct {
	Pool     *pgxpool.Pool
	Reporter *reporter.Reporter
	Sink     Notifier
	Clock    clock.Clock

	Resolver    *resolver.Service
	Catalog     *catalog.Service
	Reminders   *reminder.Service
	Scheduler   *reminder.Scheduler
	Approvals   *approval.Service
	Fulfillment *fulfillment.Service
}

// Build connects to the database, retrying while it is unreachable,
// applies migrations when enabled and wires every service. Call Close when
// done.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	pool, err := postgres.Connect(ctx, cfg.Database, connectBackOff(cfg.Database.ConnectRetry),
		func(err error, wait time.Duration) {
			logger.WarnContext(ctx, "database unavailable, retrying",
				slog.Duration("retry_in", wait),
				slog.String("error", err.Error()),
			)
		})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		applied, err := migrations.Apply(ctx, cfg.Database.DSN)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.InfoContext(ctx, "migrations applied", slog.Int("count", applied))
	}

	rep, err := reporter.New(cfg.Sentry, Release())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init error reporter: %w", err)
	}
	if !rep.Enabled() {
		logger.InfoContext(ctx, "error reporting disabled")
	}

	c := &Components{
		Pool:     pool,
		Reporter: rep,
		Sink:     newSink(cfg.Notifier, logger),
		Clock:    clock.NewSystem(),
	}

	txm := postgres.NewTxManager(pool)
	items := catalogrepo.New(pool)
	subs := subscriptionrepo.New(pool)
	approvals := approvalrepo.New(pool)

	c.Resolver = resolver.NewService(logger, items, resolver.Config{
		TopN:           cfg.Resolver.TopN,
		MinScore:       cfg.Resolver.MinScore,
		CandidateLimit: cfg.Resolver.CandidateLimit,
	})
	c.Catalog = catalog.NewService(logger, items, steam.NewProvider(cfg.Steam, logger), rep)
	c.Reminders = reminder.NewService(logger, subs, items, c.Resolver, c.Clock, cfg.Scheduler.SubscribeGrace)
	c.Scheduler = reminder.NewScheduler(logger, subs, txm, c.Sink, rep, c.Clock, reminder.SchedulerConfig{
		Window:          cfg.Scheduler.NotificationWindow,
		DeliveryTimeout: cfg.Scheduler.DeliveryTimeout,
		Concurrency:     cfg.Scheduler.Concurrency,
		BatchSize:       cfg.Scheduler.BatchSize,
	})
	c.Approvals = approval.NewService(logger, approvals, c.Sink, c.Clock, cfg.Approval.AdminUserID)
	c.Fulfillment = fulfillment.NewService(logger, c.Approvals,
		arr.NewRadarr(cfg.Radarr, logger),
		arr.NewSonarr(cfg.Sonarr, logger),
	)

	return c, nil
}

// Close waits for admin notifications, flushes pending error reports and
// closes the pool.
func (c *Components) Close() {
	if c.Approvals != nil {
		c.Approvals.Wait()
	}
	c.Reporter.Flush(2 * time.Second)
	c.Pool.Close()
}

func newSink(cfg config.NotifierConfig, logger *slog.Logger) Notifier {
	if cfg.WebhookURL == "" {
		logger.Warn("notifier webhook not configured, reminders will only be logged")
		return logsink.New(logger)
	}
	return webhook.New(cfg, logger)
}
