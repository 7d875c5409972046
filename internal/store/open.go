package store

import (
	"context"
	"log/slog"

	"github.com/mmcdole/lineup/internal/config"
	"github.com/mmcdole/lineup/internal/domain"
)

// OpenCatalogStore creates the persistent catalog tier selected by cfg.Cache.Backend.
func OpenCatalogStore(ctx context.Context, cfg *config.CacheConfig, logger *slog.Logger) (domain.CatalogStore, error) {
	if cfg.Backend == config.BackendRedis {
		return NewRedisCatalogStore(ctx, cfg.RedisURL, logger)
	}
	return NewBoltCatalogStore(cfg.Dir, logger)
}
