package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/mlb-predictions/internal/platform/resilience"
)

// Bucket is one namespace of the store with its own TTL.
type Bucket struct {
	store     *Store
	namespace string
	ttl       time.Duration
	flight    resilience.SingleFlight
}

func (b *Bucket) Namespace() string {
	return b.namespace
}

func (b *Bucket) TTL() time.Duration {
	return b.ttl
}

// Get decodes the entry for key into dest. It reports false on a miss, an
// expired entry or an entry that cannot be read or decoded.
func (b *Bucket) Get(ctx context.Context, key string, dest any) bool {
	raw, ok := b.getRaw(ctx, key)
	if !ok {
		return false
	}
	if err := sonic.Unmarshal(raw, dest); err != nil {
		b.store.logger.WarnContext(ctx, "cache entry decode failed", "namespace", b.namespace, "key", key, "error", err)
		b.store.observe(b.namespace, OutcomeCorrupt)
		b.Delete(ctx, key)
		return false
	}
	return true
}

// Put stores value under key stamped with the current time.
func (b *Bucket) Put(ctx context.Context, key string, value any) {
	if b.ttl <= 0 || key == "" {
		return
	}
	raw, err := sonic.Marshal(value)
	if err != nil {
		b.store.logger.WarnContext(ctx, "cache entry encode failed", "namespace", b.namespace, "key", key, "error", err)
		b.store.observe(b.namespace, OutcomeWriteError)
		return
	}
	b.putRaw(ctx, key, raw)
}

func (b *Bucket) Delete(ctx context.Context, key string) {
	key = sanitizeKey(key)
	if key == "" {
		return
	}
	b.store.memory.Delete(b.store.memoryKey(b.namespace, key))
	b.store.removeFile(ctx, b.namespace, key)
}

// Clear removes every entry in the namespace.
func (b *Bucket) Clear(ctx context.Context) {
	b.store.clearMemoryPrefix(b.namespace + "/")
	b.store.removeNamespace(ctx, b.namespace)
}

// GetOrLoad returns the cached value for key, or runs loader and caches its
// result. With force the read is skipped but the fresh value is still
// written. Concurrent loads of one key share a single loader call. The
// returned bool reports whether the value came from cache.
func (b *Bucket) GetOrLoad(ctx context.Context, key string, force bool, dest any, loader func(context.Context) (any, error)) (bool, error) {
	if loader == nil {
		return false, errors.New("loader is required")
	}
	if !force && b.Get(ctx, key, dest) {
		return true, nil
	}

	flightKey := key
	if force {
		flightKey = "force:" + key
	}
	out, err, _ := b.flight.DoContext(ctx, flightKey, func() (any, error) {
		if !force {
			if raw, ok := b.getRaw(ctx, key); ok {
				return raw, nil
			}
		}
		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		raw, encErr := sonic.Marshal(loaded)
		if encErr != nil {
			return nil, fmt.Errorf("encode loaded value: %w", encErr)
		}
		b.putRaw(ctx, key, raw)
		return raw, nil
	})
	if err != nil {
		return false, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return false, fmt.Errorf("unexpected cached payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode loaded value: %w", err)
	}
	return false, nil
}

func (b *Bucket) getRaw(ctx context.Context, key string) ([]byte, bool) {
	key = sanitizeKey(key)
	if b.ttl <= 0 || key == "" {
		return nil, false
	}

	now := b.store.now()
	memKey := b.store.memoryKey(b.namespace, key)
	if v, found := b.store.memory.Get(memKey); found {
		if entry, ok := v.(memoryEntry); ok && now.Sub(entry.storedAt) < b.ttl {
			b.store.observe(b.namespace, OutcomeMemoryHit)
			return entry.raw, true
		}
		b.store.memory.Delete(memKey)
	}

	raw, storedAt, outcome := b.store.readFile(ctx, b.namespace, key, b.ttl)
	if outcome != OutcomeDiskHit {
		b.store.observe(b.namespace, outcome)
		return nil, false
	}
	b.store.observe(b.namespace, OutcomeDiskHit)
	b.store.memory.Set(memKey, memoryEntry{raw: raw, storedAt: storedAt}, b.ttl-now.Sub(storedAt))
	return raw, true
}

func (b *Bucket) putRaw(ctx context.Context, key string, raw []byte) {
	key = sanitizeKey(key)
	if b.ttl <= 0 || key == "" {
		return
	}
	now := b.store.now()
	b.store.memory.Set(b.store.memoryKey(b.namespace, key), memoryEntry{raw: raw, storedAt: now}, b.ttl)
	if err := b.store.writeFile(b.namespace, key, raw, now); err != nil {
		b.store.logger.WarnContext(ctx, "cache write failed", "namespace", b.namespace, "key", key, "error", err)
		b.store.observe(b.namespace, OutcomeWriteError)
		return
	}
	b.store.observe(b.namespace, OutcomeWrite)
}
