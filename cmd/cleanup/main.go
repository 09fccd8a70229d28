// Command cleanup deletes delivered reminders older than the configured
// retention period and runs one approval supervisor sweep. It is intended
// to be invoked by an external cron job.
//
// Flags:
//
//	--days     override retention.notified_history_days
//	--dry-run  report the cutoff without deleting anything
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/ingrid-backend/internal/app"
	"github.com/heartmarshall/ingrid-backend/internal/config"
)

func main() {
	daysFlag := flag.Int("days", 0, "retention in days for delivered reminders (default: from config)")
	dryRunFlag := flag.Bool("dry-run", false, "report the cutoff without deleting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	days := cfg.Retention.NotifiedHistoryDays
	if *daysFlag > 0 {
		days = *daysFlag
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("init", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer c.Close()

	threshold := c.Clock.Now().AddDate(0, 0, -days)
	if *dryRunFlag {
		logger.Info("dry run, nothing deleted", slog.Time("threshold", threshold))
		return
	}

	pruned, err := c.Reminders.PruneNotified(ctx, threshold)
	if err != nil {
		logger.Error("prune notified reminders failed",
			slog.String("error", err.Error()),
			slog.Time("threshold", threshold),
		)
		os.Exit(1)
	}
	logger.Info("notified reminders pruned",
		slog.Int("deleted", pruned),
		slog.Time("threshold", threshold),
	)

	report, err := c.Approvals.Sweep(ctx)
	if err != nil {
		logger.Error("approval sweep failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("approval sweep completed", slog.Int("removed", report.Removed))
}
