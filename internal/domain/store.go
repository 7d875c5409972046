package domain

import (
	"context"
	"time"
)

// StoredCatalog is a catalog snapshot together with its write time.
type StoredCatalog struct {
	Players   Catalog
	WrittenAt time.Time
	SizeBytes int64
}

// CatalogStore is the persistent tier for the player catalog.
// Document and write time are always replaced together.
type CatalogStore interface {
	// Load returns the stored snapshot; ok is false when nothing is stored
	Load(ctx context.Context) (StoredCatalog, bool)

	// Save replaces the stored snapshot
	Save(ctx context.Context, players Catalog, writtenAt time.Time) error

	// Delete removes the stored snapshot, forcing the next read to miss
	Delete(ctx context.Context) error

	Close() error
}

// MemoryTier is the fixed-TTL process cache for league lists, rosters and settings.
type MemoryTier interface {
	Get(key CacheKey) (any, bool)
	Add(key CacheKey, value any)
	Purge()
	Len() int
}
