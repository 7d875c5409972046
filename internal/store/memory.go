package store

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mmcdole/lineup/internal/domain"
)

const (
	defaultMemorySize = 100
	defaultMemoryTTL  = 300 * time.Second
)

// MemoryCache is the fixed-TTL tier shared by league lists, rosters and settings.
// Entries expire after ttl; once size entries are live the least recently used is evicted.
type MemoryCache struct {
	lru *expirable.LRU[domain.CacheKey, any]
}

// NewMemoryCache creates a memory tier. Non-positive arguments use the defaults (100 entries, 300s).
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = defaultMemorySize
	}
	if ttl <= 0 {
		ttl = defaultMemoryTTL
	}
	return &MemoryCache{lru: expirable.NewLRU[domain.CacheKey, any](size, nil, ttl)}
}

func (m *MemoryCache) Get(key domain.CacheKey) (any, bool) {
	return m.lru.Get(key)
}

// Add stores value under key, replacing any previous value.
func (m *MemoryCache) Add(key domain.CacheKey, value any) {
	m.lru.Add(key, value)
}

// Purge drops every entry.
func (m *MemoryCache) Purge() {
	m.lru.Purge()
}

func (m *MemoryCache) Len() int {
	return m.lru.Len()
}
