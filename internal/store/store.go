package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/marquee/internal/domain"
)

// Bucket names
var (
	bucketCategories = []byte("categories")
	bucketProfiles   = []byte("profiles")
)

// SnapshotStore implements domain.Cache using BoltDB.
type SnapshotStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte

	now func() time.Time
}

// NewSnapshotStore opens the cache database under baseCacheDir.
// scope separates caches of different API endpoints or languages.
// An empty baseCacheDir gives a memory-only store.
func NewSnapshotStore(baseCacheDir, scope string) (*SnapshotStore, error) {
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return &SnapshotStore{cache: make(map[string][]byte), now: time.Now}, nil
	}

	dir := baseCacheDir
	if scope != "" {
		dir = filepath.Join(baseCacheDir, hashScope(scope))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "marquee.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCategories, bucketProfiles} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SnapshotStore{db: db, cache: make(map[string][]byte), now: time.Now}, nil
}

func hashScope(scope string) string {
	normalized := strings.TrimRight(strings.ToLower(scope), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *SnapshotStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *SnapshotStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *SnapshotStore) delete(bucket []byte, key string) {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

func (s *SnapshotStore) clearBucket(bucket []byte) {
	s.mu.Lock()
	prefix := string(bucket) + ":"
	for k := range s.cache {
		if strings.HasPrefix(k, prefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucket) != nil {
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(bucket)
		return err
	})
}

// === Categories ===

func (s *SnapshotStore) GetCategory(c domain.Category) (domain.CategorySnapshot, bool) {
	var snap domain.CategorySnapshot
	if !s.get(bucketCategories, c.String(), &snap) {
		return domain.CategorySnapshot{}, false
	}
	return snap, true
}

func (s *SnapshotStore) SaveCategory(c domain.Category, items []domain.MovieSummary) error {
	if !c.Valid() {
		return fmt.Errorf("save category: invalid category %d", int(c))
	}
	return s.set(bucketCategories, c.String(), domain.CategorySnapshot{
		Category: c,
		Items:    items,
		SavedAt:  s.now(),
	})
}

func (s *SnapshotStore) InvalidateCategory(c domain.Category) {
	s.delete(bucketCategories, c.String())
}

// === Movie profiles ===

func (s *SnapshotStore) GetProfile(movieID string) (*domain.MovieProfile, bool) {
	var p domain.MovieProfile
	if !s.get(bucketProfiles, movieID, &p) {
		return nil, false
	}
	return &p, true
}

func (s *SnapshotStore) SaveProfile(p *domain.MovieProfile) error {
	if p == nil || p.Details.ID == "" {
		return fmt.Errorf("save profile: missing movie id")
	}
	return s.set(bucketProfiles, p.Details.ID, p)
}

// === Invalidation ===

func (s *SnapshotStore) InvalidateAll() {
	s.clearBucket(bucketCategories)
	s.clearBucket(bucketProfiles)
}
