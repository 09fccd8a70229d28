// Command import-catalog loads the SQLite games database of the previous
// bot into the catalog. Existing items are replaced. It is intended to be
// run once, offline.
//
// Flags:
//
//	--db          path to games.db (required)
//	--batch-size  rows per upsert batch (default: 500)
//	--dry-run     count the source rows without writing to the catalog
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/ingrid-backend/internal/adapter/legacy"
	"github.com/heartmarshall/ingrid-backend/internal/app"
	"github.com/heartmarshall/ingrid-backend/internal/config"
)

func main() {
	dbFlag := flag.String("db", "", "path to the legacy games.db")
	batchFlag := flag.Int("batch-size", 500, "rows per upsert batch")
	dryRunFlag := flag.Bool("dry-run", false, "count rows without writing")
	flag.Parse()

	if *dbFlag == "" {
		fmt.Fprintln(os.Stderr, "Usage: import-catalog --db=games.db [--batch-size=500] [--dry-run]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	src, err := legacy.Open(*dbFlag)
	if err != nil {
		logger.Error("open legacy database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	total, err := src.Count(ctx)
	if err != nil {
		logger.Error("count legacy rows", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("legacy database opened", slog.String("path", *dbFlag), slog.Int("rows", total))
	if *dryRunFlag {
		return
	}

	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("init", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer c.Close()

	report, err := c.Catalog.Import(ctx, src, *batchFlag)
	if err != nil {
		logger.Error("import failed",
			slog.String("error", err.Error()),
			slog.Int("imported", report.Imported),
		)
		os.Exit(1)
	}

	if report.Invalid > 0 {
		logger.Warn("import completed with invalid rows", slog.Int("invalid", report.Invalid))
	}
	logger.Info("import completed successfully",
		slog.Int("read", report.Read),
		slog.Int("imported", report.Imported),
	)
}
