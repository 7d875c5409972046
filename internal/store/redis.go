package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/lineup/internal/domain"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lineup:catalog:"

// RedisCatalogStore implements domain.CatalogStore on Redis, for deployments
// where several processes share one persisted catalog.
// The decoded snapshot is promoted to memory and reused while the stored
// write time is unchanged, so a save from another process is picked up.
type RedisCatalogStore struct {
	client    *redis.Client
	logger    *slog.Logger
	docKey    string
	tsKey     string
	ownClient bool

	mu       sync.RWMutex // Protects cached and cachedTS
	cached   *domain.StoredCatalog
	cachedTS string
}

// NewRedisCatalogStore connects to redisURL (redis://host:port/db) and verifies the connection.
func NewRedisCatalogStore(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisCatalogStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	s := NewRedisCatalogStoreWithClient(client, logger)
	s.ownClient = true
	return s, nil
}

// NewRedisCatalogStoreWithClient wraps an existing client; Close leaves the client open.
func NewRedisCatalogStoreWithClient(client *redis.Client, logger *slog.Logger) *RedisCatalogStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCatalogStore{
		client: client,
		logger: logger,
		docKey: redisKeyPrefix + "players",
		tsKey:  redisKeyPrefix + "written_at",
	}
}

func (s *RedisCatalogStore) Close() error {
	if s.ownClient {
		return s.client.Close()
	}
	return nil
}

func (s *RedisCatalogStore) Load(ctx context.Context) (domain.StoredCatalog, bool) {
	ts, err := s.client.Get(ctx, s.tsKey).Result()
	if errors.Is(err, redis.Nil) {
		s.forget()
		return domain.StoredCatalog{}, false
	}
	if err != nil {
		s.logger.Error("failed to read catalog write time from redis", "error", err)
		return domain.StoredCatalog{}, false
	}

	// Check memory first
	s.mu.RLock()
	if s.cached != nil && s.cachedTS == ts {
		entry := *s.cached
		s.mu.RUnlock()
		return entry, true
	}
	s.mu.RUnlock()

	vals, err := s.client.MGet(ctx, s.docKey, s.tsKey).Result()
	if err != nil {
		s.logger.Error("failed to read catalog from redis", "error", err)
		return domain.StoredCatalog{}, false
	}
	doc, ok1 := vals[0].(string)
	ts, ok2 := vals[1].(string)
	if !ok1 || !ok2 {
		return domain.StoredCatalog{}, false
	}

	entry, err := decodeCatalog([]byte(doc), []byte(ts))
	if err != nil {
		s.logger.Error("failed to decode stored catalog", "error", err)
		return domain.StoredCatalog{}, false
	}

	// Promote to memory
	s.remember(entry, ts)
	return entry, true
}

func (s *RedisCatalogStore) Save(ctx context.Context, players domain.Catalog, writtenAt time.Time) error {
	doc, ts, err := encodeCatalog(players, writtenAt)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey, doc, 0)
		pipe.Set(ctx, s.tsKey, ts, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write catalog to redis: %w", err)
	}

	s.remember(domain.StoredCatalog{Players: players, WrittenAt: writtenAt, SizeBytes: int64(len(doc))}, string(ts))
	return nil
}

func (s *RedisCatalogStore) Delete(ctx context.Context) error {
	s.forget()
	return s.client.Del(ctx, s.docKey, s.tsKey).Err()
}

func (s *RedisCatalogStore) remember(entry domain.StoredCatalog, ts string) {
	s.mu.Lock()
	s.cached = &entry
	s.cachedTS = ts
	s.mu.Unlock()
}

func (s *RedisCatalogStore) forget() {
	s.mu.Lock()
	s.cached = nil
	s.cachedTS = ""
	s.mu.Unlock()
}
