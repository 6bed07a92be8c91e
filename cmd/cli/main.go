// Package main provides the devboom CLI: project scanning, IDE
// detection, and one-off icon resolution for debugging.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devboom/devboom/internal/config"
	"github.com/devboom/devboom/internal/icon"
	"github.com/devboom/devboom/internal/scan"
	"github.com/devboom/devboom/internal/service"
	"github.com/devboom/devboom/internal/storage"
	"github.com/devboom/devboom/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "devboom",
		Short: "Project launcher registry tools",
	}

	root.AddCommand(scanCmd())
	root.AddCommand(detectIDEsCmd())
	root.AddCommand(resolveIconCmd())
	return root
}

// env assembles the shared CLI dependencies: config, logger, registry.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

func setup() (*env, error) {
	cfg, err := config.Load(os.Getenv("DEVBOOM_CONFIG_PATH"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// CLI runs are interactive; always log human-readable.
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &env{
		cfg:    cfg,
		logger: logger,
		store:  store.Open(cfg.Storage.StorePath(), logger),
	}, nil
}

// signalContext returns a context cancelled by Ctrl+C.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

func scanCmd() *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "Discover projects under a directory and register them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			depth := maxDepth
			if depth <= 0 {
				depth = e.cfg.Scan.MaxDepth
			}

			added := 0
			for _, dir := range scan.Projects(args[0], depth) {
				if e.store.HasProjectPath(dir) {
					continue
				}
				project, err := e.store.AddProject(store.NewProjectInput{Path: dir}, scan.DetectProjectType)
				if err != nil {
					e.logger.Warn("registering project failed",
						zap.String("path", dir),
						zap.Error(err),
					)
					continue
				}
				fmt.Printf("added %s (%s) at %s\n", project.Name, project.ProjectType, project.Path)
				added++
			}
			fmt.Printf("%d project(s) added\n", added)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Directory depth to scan (0 uses the configured default)")
	return cmd
}

func detectIDEsCmd() *cobra.Command {
	var refreshIcons bool

	cmd := &cobra.Command{
		Use:   "detect-ides",
		Short: "Detect installed IDEs and register them",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			existing := make(map[string]bool)
			for _, ide := range e.store.IDEs() {
				existing[ide.ID] = true
			}

			added := 0
			for _, ide := range scan.DetectIDEs(existing) {
				ok, err := e.store.AddDetectedIDE(ide)
				if err != nil {
					e.logger.Warn("registering IDE failed",
						zap.String("ide", ide.ID),
						zap.Error(err),
					)
					continue
				}
				if ok {
					fmt.Printf("added %s (%s)\n", ide.Name, ide.Executable)
					added++
				}
			}
			fmt.Printf("%d IDE(s) added\n", added)

			if !refreshIcons {
				return nil
			}

			ctx, cancel := signalContext()
			defer cancel()

			icons, db, err := iconService(e)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Printf("%d icon(s) refreshed\n", icons.RefreshAll(ctx))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refreshIcons, "icons", true, "Resolve icons for registered IDEs after detection")
	return cmd
}

func resolveIconCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve-icon <ide-id>",
		Short: "Resolve one IDE's icon and print the outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			ctx, cancel := signalContext()
			defer cancel()

			icons, db, err := iconService(e)
			if err != nil {
				return err
			}
			defer db.Close()

			ide, err := icons.RefreshOne(ctx, args[0])
			if err != nil {
				return err
			}
			if ide.Icon == nil {
				fmt.Printf("%s: no icon found, placeholder applies\n", ide.ID)
				return nil
			}
			parsed, err := icon.ParseDataURL(*ide.Icon)
			if err != nil {
				return fmt.Errorf("stored icon is not a valid data URL: %w", err)
			}
			fmt.Printf("%s: %s via %s (%d bytes)\n", ide.ID, parsed.MIME, parsed.Source, len(parsed.Data))
			return nil
		},
	}
	return cmd
}

// iconService wires the resolution chain the same way the daemon does.
// The caller owns closing the returned database handle.
func iconService(e *env) (*service.IconService, *sqlx.DB, error) {
	db, err := storage.NewDatabase(e.cfg.Storage.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	cache := icon.NewCache(e.cfg.Storage.IconCacheDir(), e.logger)
	fetcher := icon.NewFetcher(icon.DefaultVendorIcons, cache,
		time.Duration(e.cfg.Fetch.TimeoutSeconds)*time.Second, e.cfg.Fetch.UserAgent, e.logger)
	resolver := icon.NewResolver(icon.NewExtractor(), cache, fetcher, e.logger)

	svc := service.NewIconService(e.store, resolver, storage.NewResolutionRepository(db), e.logger)
	return svc, db, nil
}
