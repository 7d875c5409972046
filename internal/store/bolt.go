package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmcdole/lineup/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket and key names
var (
	bucketCatalog = []byte("catalog")

	keyPlayers   = []byte("players")
	keyWrittenAt = []byte("written_at")
)

// BoltCatalogStore implements domain.CatalogStore using BoltDB.
// The decoded snapshot is promoted to memory after the first read or write.
type BoltCatalogStore struct {
	db     *bolt.DB
	logger *slog.Logger

	mu     sync.RWMutex // Protects cached
	cached *domain.StoredCatalog
}

// NewBoltCatalogStore opens (or creates) lineup.db in dir.
// An empty dir gives a memory-only store with no persistence.
func NewBoltCatalogStore(dir string, logger *slog.Logger) (*BoltCatalogStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		return &BoltCatalogStore{logger: logger}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "lineup.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCatalog)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltCatalogStore{db: db, logger: logger}, nil
}

func (s *BoltCatalogStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *BoltCatalogStore) Load(ctx context.Context) (domain.StoredCatalog, bool) {
	// Check memory first
	s.mu.RLock()
	if s.cached != nil {
		entry := *s.cached
		s.mu.RUnlock()
		return entry, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return domain.StoredCatalog{}, false
	}

	var doc, ts []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCatalog)
		if b == nil {
			return nil
		}
		if v := b.Get(keyPlayers); v != nil {
			doc = make([]byte, len(v))
			copy(doc, v)
		}
		if v := b.Get(keyWrittenAt); v != nil {
			ts = make([]byte, len(v))
			copy(ts, v)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to read stored catalog", "error", err)
		return domain.StoredCatalog{}, false
	}
	if doc == nil || ts == nil {
		return domain.StoredCatalog{}, false
	}

	entry, err := decodeCatalog(doc, ts)
	if err != nil {
		s.logger.Error("failed to decode stored catalog", "error", err)
		return domain.StoredCatalog{}, false
	}

	// Promote to memory
	s.mu.Lock()
	s.cached = &entry
	s.mu.Unlock()

	return entry, true
}

func (s *BoltCatalogStore) Save(ctx context.Context, players domain.Catalog, writtenAt time.Time) error {
	doc, ts, err := encodeCatalog(players, writtenAt)
	if err != nil {
		return err
	}
	entry := domain.StoredCatalog{Players: players, WrittenAt: writtenAt, SizeBytes: int64(len(doc))}

	if s.db != nil {
		// Document and timestamp land in one transaction
		err = s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketCatalog)
			if err := b.Put(keyPlayers, doc); err != nil {
				return err
			}
			return b.Put(keyWrittenAt, ts)
		})
		if err != nil {
			return fmt.Errorf("failed to write catalog: %w", err)
		}
	}

	s.mu.Lock()
	s.cached = &entry
	s.mu.Unlock()
	return nil
}

func (s *BoltCatalogStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCatalog)
		if b == nil {
			return nil
		}
		if err := b.Delete(keyPlayers); err != nil {
			return err
		}
		return b.Delete(keyWrittenAt)
	})
}

// encodeCatalog serializes the document keyed by player ID and the write time.
func encodeCatalog(players domain.Catalog, writtenAt time.Time) ([]byte, []byte, error) {
	if players == nil {
		players = domain.Catalog{}
	}
	doc, err := json.Marshal(players)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}
	ts, err := writtenAt.MarshalText()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal write time: %w", err)
	}
	return doc, ts, nil
}

func decodeCatalog(doc, ts []byte) (domain.StoredCatalog, error) {
	var writtenAt time.Time
	if err := writtenAt.UnmarshalText(ts); err != nil {
		return domain.StoredCatalog{}, fmt.Errorf("bad write time: %w", err)
	}
	var players domain.Catalog
	if err := json.Unmarshal(doc, &players); err != nil {
		return domain.StoredCatalog{}, fmt.Errorf("bad catalog document: %w", err)
	}
	return domain.StoredCatalog{Players: players, WrittenAt: writtenAt, SizeBytes: int64(len(doc))}, nil
}
