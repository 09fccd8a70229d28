package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/ingrid-backend/internal/auth"
	"github.com/heartmarshall/ingrid-backend/internal/config"
	"github.com/heartmarshall/ingrid-backend/internal/transport/middleware"
	"github.com/heartmarshall/ingrid-backend/internal/transport/rest"
	"github.com/heartmarshall/ingrid-backend/internal/worker"
)

// Task names accepted by POST /api/admin/tasks/{name}/run.
const (
	TaskReminders      = "reminders"
	TaskApprovals      = "approvals"
	TaskCatalogRefresh = "catalog-refresh"
)

// Run starts the HTTP API and the background tasks and blocks until ctx is
// cancelled or one of them fails. In-flight work is given
// cfg.Server.ShutdownTimeout to finish.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.InfoContext(ctx, "starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	c, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	registry := worker.NewRegistry(newTasks(cfg, c, logger)...)

	limiter := middleware.NewRateLimiter(5 * time.Minute)
	defer limiter.Stop()

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	router := rest.NewRouter(rest.RouterConfig{
		Logger:    logger,
		Auth:      middleware.Auth(jwtManager),
		Recovery:  middleware.Recovery(logger, c.Reporter),
		Limiter:   limiter,
		RateLimit: cfg.Server.RateLimit,
	}, rest.Handlers{
		Health:        rest.NewHealthHandler(c.Pool, Version, c.Clock, nil),
		Catalog:       rest.NewCatalogHandler(c.Resolver, c.Catalog, logger),
		Subscriptions: rest.NewSubscriptionHandler(c.Reminders, logger),
		Access:        rest.NewAccessHandler(c.Approvals, c.Fulfillment, logger),
		Admin:         rest.NewAdminHandler(c.Approvals, registry, logger),
	})

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(gctx, "http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.InfoContext(shutdownCtx, "shutting down http server")
		return server.Shutdown(shutdownCtx)
	})

	for _, t := range registry.Tasks() {
		g.Go(func() error { return t.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("application stopped")
	return nil
}

func newTasks(cfg *config.Config, c *Components, logger *slog.Logger) []*worker.Task {
	retry := worker.WithMaxRetryInterval(cfg.Scheduler.RetryMaxInterval)

	tasks := []*worker.Task{
		worker.New(TaskReminders, cfg.Scheduler.Interval, c.Scheduler.RunTick, logger,
			worker.WithRunOnStart(cfg.Scheduler.RunOnStart), retry),
		worker.New(TaskApprovals, cfg.Approval.SupervisorInterval, c.Approvals.RunSweep, logger,
			worker.WithRunOnStart(true), retry),
	}
	if cfg.Catalog.RefreshEnabled {
		tasks = append(tasks, worker.New(TaskCatalogRefresh, cfg.Catalog.RefreshInterval, c.Catalog.RunRefresh, logger, retry))
	}
	return tasks
}
