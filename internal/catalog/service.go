package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/lineup/internal/domain"
	"github.com/mmcdole/lineup/internal/store"
	"golang.org/x/sync/singleflight"
)

// PlayerSource fetches the raw, unfiltered player catalog from upstream.
type PlayerSource interface {
	GetPlayers(ctx context.Context) (map[string]domain.Player, error)
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now, for schedule-dependent tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service loads the player catalog through the schedule-aware persistent tier.
type Service struct {
	source PlayerSource
	store  domain.CatalogStore
	fresh  *store.Freshness
	now    func() time.Time
	logger *slog.Logger

	// collapses concurrent misses into one upstream fetch
	group singleflight.Group
}

// NewService creates a catalog service.
func NewService(source PlayerSource, st domain.CatalogStore, fresh *store.Freshness, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if fresh == nil {
		fresh = store.NewFreshness(nil)
	}
	s := &Service{
		source: source,
		store:  st,
		fresh:  fresh,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the active-player catalog.
// A persisted snapshot is served while the freshness schedule allows it; otherwise
// the catalog is refetched and persisted. When upstream is unavailable an empty
// catalog is returned and the persisted snapshot is left alone.
func (s *Service) Catalog(ctx context.Context) domain.Catalog {
	if entry, ok := s.store.Load(ctx); ok {
		if s.fresh.Valid(entry.WrittenAt, s.now()) {
			s.logger.Debug("catalog cache hit", "players", len(entry.Players), "writtenAt", entry.WrittenAt)
			return entry.Players
		}
		s.logger.Debug("catalog cache stale", "writtenAt", entry.WrittenAt)
	}

	// The shared fetch outlives any one caller; the client's timeouts bound it.
	key := domain.CatalogKey().String()
	ch := s.group.DoChan(key, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx)), nil
	})
	select {
	case res := <-ch:
		return res.Val.(domain.Catalog)
	case <-ctx.Done():
		s.logger.Warn("catalog wait abandoned", "key", key, "error", ctx.Err())
		return domain.Catalog{}
	}
}

func (s *Service) fetch(ctx context.Context) domain.Catalog {
	raw, err := s.source.GetPlayers(ctx)
	if err != nil {
		s.logger.Warn("player catalog unavailable", "error", err)
		return domain.Catalog{}
	}

	players := domain.ActiveOnly(raw)
	if err := s.store.Save(ctx, players, s.now()); err != nil {
		s.logger.Error("failed to save catalog", "error", err)
	}
	s.logger.Info("loaded player catalog", "fetched", len(raw), "active", len(players))
	return players
}

// Refresh deletes the persisted catalog and loads a new one.
func (s *Service) Refresh(ctx context.Context) (domain.Catalog, error) {
	if err := s.store.Delete(ctx); err != nil {
		return nil, fmt.Errorf("failed to invalidate catalog: %w", err)
	}
	s.logger.Info("invalidated catalog cache")
	return s.Catalog(ctx), nil
}

// Info describes the persisted catalog as judged at the current time.
func (s *Service) Info(ctx context.Context) domain.CacheInfo {
	now := s.now()
	info := domain.CacheInfo{
		TTLSeconds: s.fresh.TTLAt(now).Seconds(),
		IsNight:    s.fresh.IsNight(now),
		IsMorning:  s.fresh.IsMorning(now),
	}

	entry, ok := s.store.Load(ctx)
	if !ok {
		return info
	}
	info.Cached = true
	info.LastUpdated = entry.WrittenAt
	info.ExpiresAt = s.fresh.ExpiresAt(entry.WrittenAt, now)
	info.SizeBytes = entry.SizeBytes
	info.Valid = s.fresh.Valid(entry.WrittenAt, now)
	return info
}
