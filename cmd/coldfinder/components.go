package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/coldfinder/internal/catalog"
	"github.com/hyperjump/coldfinder/internal/config"
	"github.com/hyperjump/coldfinder/internal/remote"
	"github.com/hyperjump/coldfinder/internal/search"
	"github.com/hyperjump/coldfinder/pkg/utils"
)

// Components are the long-lived services built from a config.
type Components struct {
	Config *config.Config
	Logger *zap.Logger
	Store  *catalog.Store
	Engine *search.Engine
}

func (c *Components) Close() {
	if c.Engine != nil {
		_ = c.Engine.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

// setup loads the config named by opts and builds the components. opts.debug forces
// debug logging on.
func setup(ctx context.Context, opts *rootOptions) (*Components, string, error) {
	cfg, resolvedPath, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || opts.debug
	logger, err := utils.NewLogger(debugMode, cfg.LogLevel)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create logger: %w", err)
	}
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, "", err
	}
	return components, resolvedPath, nil
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	kb, err := loadCatalog(ctx, &cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	store := catalog.NewStore(kb, cfg.Catalog.Source())
	logger.Info("catalog loaded",
		zap.String("source", store.Source()),
		zap.String("version", kb.Version()),
		zap.Int("facilities", kb.Len()),
		zap.Int("crops", len(kb.Crops())),
	)

	// A nil *remote.Client must not end up inside the interface.
	var remoteSearcher search.RemoteSearcher
	if cfg.Remote.Enabled() {
		remoteSearcher = remote.NewClient(cfg.Remote.URL, remote.WithTimeout(cfg.Search.RemoteTimeout))
		logger.Info("remote search enabled", zap.String("url", cfg.Remote.URL))
	}
	engine := search.NewEngine(store, remoteSearcher, &cfg.Search, logger)

	return &Components{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Engine: engine,
	}, nil
}

// loadCatalog reads the knowledge base from the configured source.
func loadCatalog(ctx context.Context, cfg *config.CatalogConfig) (*catalog.KnowledgeBase, error) {
	switch {
	case cfg.DatabasePath != "":
		return catalog.LoadSQLite(ctx, cfg.DatabasePath)
	case cfg.Path != "":
		return catalog.LoadFile(cfg.Path)
	}
	return catalog.Default()
}
