package webfetch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostLimiter hands out one token bucket per host so a slow site never
// starves requests to another.
type hostLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	minDelay time.Duration
}

func newHostLimiter(perSecond float64, burst int, minDelay time.Duration) *hostLimiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &hostLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
		minDelay: minDelay,
	}
}

func (l *hostLimiter) get(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[host]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok = l.limiters[host]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(l.limit, l.burst)
	l.limiters[host] = limiter
	return limiter
}

// Wait blocks for a token and then for the larger of the configured minimum
// delay and the crawl delay advertised by robots.txt.
func (l *hostLimiter) Wait(ctx context.Context, host string, crawlDelay time.Duration) error {
	if err := l.get(host).Wait(ctx); err != nil {
		return err
	}

	delay := l.minDelay
	if crawlDelay > delay {
		delay = crawlDelay
	}
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
