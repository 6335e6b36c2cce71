package webfetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// maxCrawlDelay caps what a robots.txt can make us sleep per request.
const maxCrawlDelay = 10 * time.Second

type robotsChecker struct {
	mu         sync.RWMutex
	cache      map[string]*robotstxt.RobotsData
	httpClient *http.Client
	agent      string
}

func newRobotsChecker(httpClient *http.Client, agent string) *robotsChecker {
	return &robotsChecker{
		cache:      make(map[string]*robotstxt.RobotsData),
		httpClient: httpClient,
		agent:      agent,
	}
}

// Allowed reports whether agent may fetch target. A robots.txt that cannot be
// fetched allows everything.
func (r *robotsChecker) Allowed(ctx context.Context, target *url.URL, userAgent string) (bool, time.Duration) {
	data, err := r.data(ctx, target)
	if err != nil || data == nil {
		return true, 0
	}

	agent := r.agent
	if agent == "" {
		agent = productToken(userAgent)
	}
	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if !data.TestAgent(path, agent) {
		return false, 0
	}

	var delay time.Duration
	if group := data.FindGroup(agent); group != nil {
		delay = group.CrawlDelay
	}
	if delay > maxCrawlDelay {
		delay = maxCrawlDelay
	}
	return true, delay
}

func (r *robotsChecker) data(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	host := target.Host

	r.mu.RLock()
	data, ok := r.cache[host]
	r.mu.RUnlock()
	if ok {
		return data, nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", target.Scheme, host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create robots request: %w", err)
	}
	req.Header.Set("User-Agent", r.agent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("fetch robots.txt: status %d", resp.StatusCode)
	}

	data, err = robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.mu.Lock()
	r.cache[host] = data
	r.mu.Unlock()
	return data, nil
}

func productToken(userAgent string) string {
	fields := strings.Fields(userAgent)
	if len(fields) == 0 {
		return "*"
	}
	return strings.SplitN(fields[0], "/", 2)[0]
}
