package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/lineup/internal/catalog"
	"github.com/mmcdole/lineup/internal/config"
	"github.com/mmcdole/lineup/internal/domain"
	"github.com/mmcdole/lineup/internal/league"
	"github.com/mmcdole/lineup/internal/report"
	"github.com/mmcdole/lineup/internal/sleeper"
	"github.com/mmcdole/lineup/internal/store"
)

// App holds the wired services shared by the CLI and the HTTP server.
type App struct {
	Leagues *league.Service
	Players *catalog.Service

	store domain.CatalogStore
}

// New wires the upstream client, both cache tiers and the report services from cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	st, err := store.OpenCatalogStore(ctx, &cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog store: %w", err)
	}

	client := sleeper.NewClient(sleeper.Options{
		BaseURL:       cfg.Upstream.BaseURL,
		UserAgent:     cfg.Upstream.UserAgent,
		Sport:         cfg.Upstream.Sport,
		Attempts:      cfg.Upstream.Attempts,
		RetryInterval: cfg.Upstream.RetryInterval,
	}, logger)

	players := catalog.NewService(client, st, store.NewFreshness(loc), logger)
	leagues := league.NewService(
		client,
		store.NewMemoryCache(cfg.Cache.MemorySize, cfg.Cache.MemoryTTL),
		players,
		report.NewClassifier(cfg.Report.StatusOrder, cfg.Report.IncludeUnknown),
		league.Options{Season: cfg.Upstream.Season, TopN: cfg.Report.TopN},
		logger,
	)

	logger.Info("services ready",
		"backend", cfg.Cache.Backend,
		"sport", cfg.Upstream.Sport,
		"season", cfg.Upstream.Season,
	)
	return &App{Leagues: leagues, Players: players, store: st}, nil
}

// Close releases the persistent catalog store.
func (a *App) Close() error {
	return a.store.Close()
}
