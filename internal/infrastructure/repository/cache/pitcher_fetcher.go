// Package cache decorates source providers with the namespaced file cache
// and turns them into total fetchers that never return an error.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
	basecache "github.com/riskibarqy/mlb-predictions/internal/platform/cache"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/riskibarqy/mlb-predictions/internal/platform/metrics"
)

// Fetch outcomes recorded per source.
const (
	outcomeHit            = "hit"
	outcomeCached         = "cached"
	outcomeNegativeCached = "negative_cached"
	outcomeNotFound       = "not_found"
	outcomeError          = "error"
	outcomeTimeout        = "timeout"
	outcomePanic          = "panic"
	outcomeInvalid        = "invalid"
)

type PitcherFetcher struct {
	next     pitcher.Provider
	cache    *basecache.Bucket
	notFound *basecache.Bucket
	timeout  time.Duration
	logger   *logging.Logger
}

// NewPitcherFetcher wraps next. notFound may be nil to disable negative
// caching; a timeout of zero leaves the caller's deadline in charge.
func NewPitcherFetcher(next pitcher.Provider, cache, notFound *basecache.Bucket, timeout time.Duration, logger *logging.Logger) *PitcherFetcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &PitcherFetcher{
		next:     next,
		cache:    cache,
		notFound: notFound,
		timeout:  timeout,
		logger:   logger.With("source", next.Source()),
	}
}

func (f *PitcherFetcher) Source() pitcher.Source {
	return f.next.Source()
}

type notFoundMarker struct {
	Reason string
}

// FetchPitcherFact answers from cache unless the query forces a refresh,
// otherwise asks the provider once. Every failure is reported as ok=false.
func (f *PitcherFetcher) FetchPitcherFact(ctx context.Context, query pitcher.Query) (fact pitcher.Fact, ok bool) {
	source := string(f.next.Source())
	query = query.Normalize()
	if err := pitcher.ValidateQuery(query); err != nil {
		metrics.ObserveFetch(source, outcomeInvalid, 0)
		return pitcher.Fact{}, false
	}

	key := cacheKey(query)
	if !query.ForceRefresh {
		var cached pitcher.Fact
		if f.cache != nil && f.cache.Get(ctx, key, &cached) && cached.HasUsableERA() {
			metrics.ObserveFetch(source, outcomeCached, 0)
			cached.Cached = true
			return cached, true
		}
		var marker notFoundMarker
		if f.notFound != nil && f.notFound.Get(ctx, key, &marker) {
			metrics.ObserveFetch(source, outcomeNegativeCached, 0)
			return pitcher.Fact{}, false
		}
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			metrics.ObserveFetch(source, outcomePanic, time.Since(start))
			f.logger.ErrorContext(ctx, "pitcher provider panicked", "team", query.Team, "pitcher", query.Name, "panic", fmt.Sprint(rec))
			fact, ok = pitcher.Fact{}, false
		}
	}()

	callCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	fact, err := f.next.LookupPitcher(callCtx, query.Team, query.Name)
	elapsed := time.Since(start)
	if err == nil && !fact.HasUsableERA() {
		err = fmt.Errorf("%w: unusable era %v", pitcher.ErrNotFound, fact.ERA)
	}
	if err != nil {
		switch {
		case errors.Is(err, pitcher.ErrNotFound):
			metrics.ObserveFetch(source, outcomeNotFound, elapsed)
			f.logger.DebugContext(ctx, "pitcher not found", "team", query.Team, "pitcher", query.Name, "error", err)
			if f.notFound != nil {
				f.notFound.Put(ctx, key, notFoundMarker{Reason: err.Error()})
			}
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			metrics.ObserveFetch(source, outcomeTimeout, elapsed)
			f.logger.WarnContext(ctx, "pitcher lookup timed out", "team", query.Team, "pitcher", query.Name, "timeout", f.timeout)
		default:
			metrics.ObserveFetch(source, outcomeError, elapsed)
			f.logger.WarnContext(ctx, "pitcher lookup failed", "team", query.Team, "pitcher", query.Name, "error", err)
		}
		return pitcher.Fact{}, false
	}

	if fact.Source == "" {
		fact.Source = f.next.Source()
	}
	if strings.TrimSpace(fact.Team) == "" {
		fact.Team = query.Team
	}
	if f.cache != nil {
		f.cache.Put(ctx, key, fact)
	}
	if f.notFound != nil {
		f.notFound.Delete(ctx, key)
	}
	metrics.ObserveFetch(source, outcomeHit, elapsed)
	return fact, true
}

func cacheKey(query pitcher.Query) string {
	return query.Team + "_" + query.Name
}
