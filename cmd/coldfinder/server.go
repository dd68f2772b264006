package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/coldfinder/internal/catalog"
	"github.com/hyperjump/coldfinder/internal/server"
	"github.com/hyperjump/coldfinder/internal/watcher"
)

func newServerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
}

func runServer(ctx context.Context, opts *rootOptions) error {
	components, resolvedConfigPath, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer components.Close()
	cfg, logger := components.Config, components.Logger
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug || opts.debug),
	)

	watchCtx, watchCancel := context.WithCancel(ctx)
	defer watchCancel()
	if cfg.Catalog.Watch && cfg.Catalog.DatabasePath == "" && cfg.Catalog.Path != "" {
		w := newCatalogWatcher(components, cfg.Catalog.Path, cfg.Catalog.Debounce)
		if err := w.Start(watchCtx); err != nil {
			return err
		}
		defer w.Stop()
	}

	srv := server.NewServer(components.Engine, components.Store, &cfg.Server, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	watchCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// newCatalogWatcher reloads the store from path whenever the file changes. A reload that
// fails validation keeps the current snapshot.
func newCatalogWatcher(components *Components, path string, debounce time.Duration) *watcher.Watcher {
	logger := components.Logger
	return watcher.NewWatcher(path, func(changed string) {
		err := components.Store.Reload(func() (*catalog.KnowledgeBase, error) {
			return catalog.LoadFile(changed)
		})
		if err != nil {
			logger.Warn("catalog reload failed, keeping previous snapshot", zap.String("path", changed), zap.Error(err))
			return
		}
		kb := components.Store.Snapshot()
		logger.Info("catalog reloaded",
			zap.String("path", changed),
			zap.String("version", kb.Version()),
			zap.Int("facilities", kb.Len()),
		)
	}, watcher.WithDebounce(debounce), watcher.WithLogger(logger))
}
