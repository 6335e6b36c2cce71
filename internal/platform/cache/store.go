package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
)

// Lookup outcomes reported to the Observer.
const (
	OutcomeMemoryHit  = "memory_hit"
	OutcomeDiskHit    = "disk_hit"
	OutcomeMiss       = "miss"
	OutcomeExpired    = "expired"
	OutcomeCorrupt    = "corrupt"
	OutcomeWrite      = "write"
	OutcomeWriteError = "write_error"
)

// Observer receives cache lookup and write outcomes per namespace.
type Observer interface {
	ObserveCache(namespace, outcome string)
}

type Config struct {
	// Dir is the root of the on-disk cache. Empty disables the disk layer.
	Dir           string
	MemoryCleanup time.Duration
	Logger        *logging.Logger
	Observer      Observer
	Now           func() time.Time
}

// Store is a best-effort, two-layer (memory, then disk) cache. Every entry
// lives in a namespaced Bucket that owns its TTL. Failures never surface to
// callers: a read failure is a miss and a write failure is logged.
type Store struct {
	dir      string
	memory   *gocache.Cache
	logger   *logging.Logger
	observer Observer
	now      func() time.Time

	mu      sync.Mutex
	buckets map[string]*Bucket
}

type memoryEntry struct {
	raw      []byte
	storedAt time.Time
}

func NewStore(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	cleanup := cfg.MemoryCleanup
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	dir := strings.TrimSpace(cfg.Dir)
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn("cache dir unavailable, running memory-only", "dir", dir, "error", err)
			dir = ""
		}
	}

	return &Store{
		dir:      dir,
		memory:   gocache.New(gocache.NoExpiration, cleanup),
		logger:   logger,
		observer: cfg.Observer,
		now:      now,
		buckets:  make(map[string]*Bucket),
	}
}

// Dir returns the disk root, or "" when the store is memory-only.
func (s *Store) Dir() string {
	return s.dir
}

// Bucket returns the namespace's bucket, creating it on first use. A ttl of
// zero or less disables caching for the namespace. The ttl of an existing
// bucket is not changed.
func (s *Store) Bucket(namespace string, ttl time.Duration) *Bucket {
	namespace = sanitizeKey(namespace)

	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.buckets[namespace]; ok {
		return b
	}
	b := &Bucket{store: s, namespace: namespace, ttl: ttl}
	s.buckets[namespace] = b
	return b
}

// Namespaces lists the buckets created so far.
func (s *Store) Namespaces() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.buckets))
	for name := range s.buckets {
		out = append(out, name)
	}
	return out
}

// ClearAll removes every entry of every namespace, including namespaces
// written by earlier processes that share the directory.
func (s *Store) ClearAll(ctx context.Context) {
	s.memory.Flush()
	if s.dir == "" {
		return
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.WarnContext(ctx, "list cache dir failed", "dir", s.dir, "error", err)
		return
	}
	for _, item := range entries {
		if !item.IsDir() {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.dir, item.Name())); err != nil {
			s.logger.WarnContext(ctx, "clear cache namespace failed", "namespace", item.Name(), "error", err)
		}
	}
	s.logger.InfoContext(ctx, "cache cleared", "dir", s.dir)
}

func (s *Store) observe(namespace, outcome string) {
	if s.observer != nil {
		s.observer.ObserveCache(namespace, outcome)
	}
}

func (s *Store) memoryKey(namespace, key string) string {
	return namespace + "/" + key
}

func (s *Store) clearMemoryPrefix(prefix string) {
	for key := range s.memory.Items() {
		if strings.HasPrefix(key, prefix) {
			s.memory.Delete(key)
		}
	}
}
