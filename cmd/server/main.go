// @title Relay API
// @version 1.0
// @description Stores messages and returns the latest one translated into the target language.
// @BasePath /api
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"relay/backend/internal/app"
	"relay/backend/internal/config"
	"relay/backend/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("config load failed", "module", "main", "action", "init", "resource", "config", "result", "failed", "error", err)
		os.Exit(1)
	}
	logger.Init(logger.ParseLevel(cfg.Log.Level), cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("app init failed", "module", "main", "action", "init", "resource", "app", "result", "failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Serve(ctx); err != nil {
		logger.Error("server stopped", "module", "main", "action", "stop", "resource", "http", "result", "failed", "error", err)
		a.Close()
		os.Exit(1)
	}
}
