// Package webfetch is the polite HTML client shared by the scraped sources.
// Every request goes through a per-host rate limiter, an optional robots.txt
// check and a per-source circuit breaker.
package webfetch

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/riskibarqy/mlb-predictions/internal/platform/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 6 << 20
	maxRedirects    = 3
)

var (
	// ErrTransient marks failures worth retrying later: network errors,
	// timeouts, 429 and 5xx answers.
	ErrTransient = crerr.New("webfetch: transient failure")
	// ErrNotFound is returned for 404 and 410 answers.
	ErrNotFound = crerr.New("webfetch: page not found")
	// ErrDisallowed is returned when robots.txt forbids the path.
	ErrDisallowed = crerr.New("webfetch: disallowed by robots.txt")
	// ErrCircuitOpen is returned while the source breaker rejects calls.
	ErrCircuitOpen = resilience.ErrCircuitOpen
)

// DefaultUserAgents are rotated per request.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36",
}

type Config struct {
	// Source names the breaker and appears in logs.
	Source          string
	HTTPClient      *http.Client
	Timeout         time.Duration
	UserAgents      []string
	RobotsAgent     string
	RespectRobots   bool
	RatePerSecond   float64
	Burst           int
	MinDelay        time.Duration
	MaxBodyBytes    int64
	CircuitBreaker  resilience.CircuitBreakerConfig
	OnCircuitChange resilience.StateChangeFunc
	Logger          *logging.Logger
}

// Page is a fetched document decoded to UTF-8.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

type Client struct {
	source         string
	httpClient     *http.Client
	userAgents     []string
	maxBytes       int64
	limiter        *hostLimiter
	robots         *robotsChecker
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	logger         *logging.Logger
}

func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	agents := make([]string, 0, len(cfg.UserAgents))
	for _, agent := range cfg.UserAgents {
		if agent = strings.TrimSpace(agent); agent != "" {
			agents = append(agents, agent)
		}
	}
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}

	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	robotsAgent := strings.TrimSpace(cfg.RobotsAgent)
	if robotsAgent == "" {
		robotsAgent = "mlb-predictions"
	}

	c := &Client{
		source:         cfg.Source,
		httpClient:     httpClient,
		userAgents:     agents,
		maxBytes:       maxBytes,
		limiter:        newHostLimiter(cfg.RatePerSecond, cfg.Burst, cfg.MinDelay),
		breaker:        resilience.NewNamedCircuitBreaker(cfg.Source, cfg.CircuitBreaker, cfg.OnCircuitChange),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
		logger:         logger.With("source", cfg.Source),
	}
	if cfg.RespectRobots {
		c.robots = newRobotsChecker(httpClient, robotsAgent)
	}
	return c
}

func (c *Client) Source() string {
	return c.source
}

func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// Get fetches rawURL and returns the body decoded to UTF-8. Non-2xx answers
// are errors; use IsTransient to tell retryable failures apart.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Host == "" {
		return Page{}, fmt.Errorf("webfetch: invalid url %q", rawURL)
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.DebugContext(ctx, "circuit breaker rejected request", "url", rawURL, "state", c.breaker.State())
			return Page{}, err
		}
	}

	page, err := c.get(ctx, target)
	if c.circuitEnabled {
		// An expired caller context says nothing about the site.
		if err != nil && ctx.Err() != nil {
			c.breaker.Abandon()
		} else {
			c.breaker.Record(IsTransient(err))
		}
	}
	return page, err
}

func (c *Client) get(ctx context.Context, target *url.URL) (Page, error) {
	userAgent := c.userAgent()

	var crawlDelay time.Duration
	if c.robots != nil {
		allowed, delay := c.robots.Allowed(ctx, target, userAgent)
		if !allowed {
			return Page{}, fmt.Errorf("%w: %s", ErrDisallowed, target.Path)
		}
		crawlDelay = delay
	}

	if err := c.limiter.Wait(ctx, target.Host, crawlDelay); err != nil {
		return Page{}, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); stderrors.Is(ctxErr, context.Canceled) {
			return Page{}, ctxErr
		}
		return Page{}, fmt.Errorf("%w: send request: %v", ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return Page{}, fmt.Errorf("%w: read response body: %v", ErrTransient, err)
	}

	c.logger.DebugContext(ctx, "page fetched",
		"url", target.String(),
		"status", resp.StatusCode,
		"bytes", len(raw),
		"duration", time.Since(start),
	)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return Page{}, fmt.Errorf("%w: status=%d url=%s", ErrNotFound, resp.StatusCode, target.String())
	case isRetryableStatus(resp.StatusCode):
		return Page{}, fmt.Errorf("%w: status=%d url=%s", ErrTransient, resp.StatusCode, target.String())
	default:
		return Page{}, fmt.Errorf("unexpected status=%d url=%s", resp.StatusCode, target.String())
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := decodeCharset(raw, contentType)
	if err != nil {
		c.logger.WarnContext(ctx, "charset decode failed, using raw body", "url", target.String(), "error", err)
		body = raw
	}

	return Page{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (c *Client) userAgent() string {
	if len(c.userAgents) == 1 {
		return c.userAgents[0]
	}
	return c.userAgents[rand.IntN(len(c.userAgents))]
}

// IsTransient reports whether err is worth counting against a breaker.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, ErrTransient) ||
		stderrors.Is(err, context.DeadlineExceeded)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func decodeCharset(raw []byte, contentType string) ([]byte, error) {
	if contentType == "" {
		return raw, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return raw, nil
	}
	charset := strings.ToLower(strings.TrimSpace(params["charset"]))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return raw, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	decoded, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(raw)))
	if err != nil {
		return nil, fmt.Errorf("decode charset %q: %w", charset, err)
	}
	return decoded, nil
}
