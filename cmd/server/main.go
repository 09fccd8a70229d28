// Command server runs the HTTP API together with the reminder scheduler,
// the approval supervisor and the catalog refresher.
//
// Flags:
//
//	--config  path to the YAML config file (default: $CONFIG_PATH or ./config.yaml)
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/ingrid-backend/internal/app"
	"github.com/heartmarshall/ingrid-backend/internal/config"
)

func main() {
	configFlag := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config file")
	flag.Parse()

	cfg, err := config.LoadPath(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error("application failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
