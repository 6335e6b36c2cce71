package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	sonic "github.com/bytedance/sonic"
)

const maxKeyLength = 120

// diskEntry is the on-disk layout: the payload plus the unix time it was
// written.
type diskEntry struct {
	Data      json.RawMessage `json:"data"`
	CacheTime float64         `json:"cache_time"`
}

func (s *Store) path(namespace, key string) string {
	return filepath.Join(s.dir, namespace, key+".json")
}

func (s *Store) readFile(ctx context.Context, namespace, key string, ttl time.Duration) ([]byte, time.Time, string) {
	if s.dir == "" {
		return nil, time.Time{}, OutcomeMiss
	}

	path := s.path(namespace, key)
	content, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "cache read failed", "path", path, "error", err)
		}
		return nil, time.Time{}, OutcomeMiss
	}

	var entry diskEntry
	if err := sonic.Unmarshal(content, &entry); err != nil || len(entry.Data) == 0 || entry.CacheTime <= 0 {
		s.logger.WarnContext(ctx, "cache entry corrupt, ignoring", "path", path, "error", err)
		_ = os.Remove(path)
		return nil, time.Time{}, OutcomeCorrupt
	}

	sec, frac := math.Modf(entry.CacheTime)
	storedAt := time.Unix(int64(sec), int64(frac*1e9))
	if s.now().Sub(storedAt) >= ttl {
		_ = os.Remove(path)
		return nil, time.Time{}, OutcomeExpired
	}
	return entry.Data, storedAt, OutcomeDiskHit
}

// writeFile replaces the entry atomically so a concurrent reader sees either
// the old or the new file, never a partial one. Concurrent writers race and
// the last rename wins.
func (s *Store) writeFile(namespace, key string, raw []byte, now time.Time) error {
	if s.dir == "" {
		return nil
	}

	content, err := sonic.Marshal(diskEntry{
		Data:      raw,
		CacheTime: float64(now.Unix()) + float64(now.Nanosecond())/1e9,
	})
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	dir := filepath.Join(s.dir, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create namespace dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(namespace, key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *Store) removeFile(ctx context.Context, namespace, key string) {
	if s.dir == "" {
		return
	}
	if err := os.Remove(s.path(namespace, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.WarnContext(ctx, "cache delete failed", "namespace", namespace, "key", key, "error", err)
	}
}

func (s *Store) removeNamespace(ctx context.Context, namespace string) {
	if s.dir == "" {
		return
	}
	if err := os.RemoveAll(filepath.Join(s.dir, namespace)); err != nil {
		s.logger.WarnContext(ctx, "cache namespace clear failed", "namespace", namespace, "error", err)
	}
}

// sanitizeKey keeps letters, digits, dots and dashes and turns everything
// else into underscores, so "espn_era_New York Yankees_Gerrit Cole" becomes a
// safe file name. Long keys are truncated with a hash suffix.
func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	cleaned = strings.TrimLeft(cleaned, ".")
	if cleaned == "" {
		cleaned = "_"
	}
	runes := []rune(cleaned)
	if len(runes) <= maxKeyLength {
		return cleaned
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return fmt.Sprintf("%s_%x", string(runes[:maxKeyLength-17]), h.Sum64())
}
