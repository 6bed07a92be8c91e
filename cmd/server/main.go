// Package main is the entry point for the devboom HTTP daemon.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/devboom/devboom/internal/config"
	"github.com/devboom/devboom/internal/icon"
	"github.com/devboom/devboom/internal/launch"
	"github.com/devboom/devboom/internal/server"
	"github.com/devboom/devboom/internal/service"
	"github.com/devboom/devboom/internal/storage"
	"github.com/devboom/devboom/internal/store"
)

func main() {
	// run() is separate so deferred cleanup executes before os.Exit.
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("DEVBOOM_CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// Sync commonly fails on stdout/stderr; not a real problem.
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	db, err := storage.NewDatabase(cfg.Storage.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	st := store.Open(cfg.Storage.StorePath(), logger)

	cache := icon.NewCache(cfg.Storage.IconCacheDir(), logger)
	fetcher := icon.NewFetcher(icon.DefaultVendorIcons, cache,
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second, cfg.Fetch.UserAgent, logger)
	resolver := icon.NewResolver(icon.NewExtractor(), cache, fetcher, logger)

	audit := storage.NewResolutionRepository(db)
	deps := server.Deps{
		Store:       st,
		Launcher:    launch.NewLauncher(logger),
		IconService: service.NewIconService(st, resolver, audit, logger),
		Audit:       audit,
	}

	srv := server.New(cfg, deps, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// Give in-flight requests 10 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
