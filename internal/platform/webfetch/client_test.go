package webfetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/platform/resilience"
)

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	if cfg.Source == "" {
		cfg.Source = "test"
	}
	cfg.RatePerSecond = 0
	return New(cfg)
}

func TestClientGet_ReturnsBodyAndSendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	client := newTestClient(t, Config{UserAgents: []string{"unit-test/1.0"}})
	page, err := client.Get(context.Background(), server.URL+"/players/c/colege01.shtml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(page.Body), "ok") {
		t.Fatalf("unexpected body: %q", page.Body)
	}
	if gotUA != "unit-test/1.0" {
		t.Fatalf("unexpected user agent: %q", gotUA)
	}
	if !strings.HasPrefix(gotAccept, "text/html") {
		t.Fatalf("unexpected accept header: %q", gotAccept)
	}
}

func TestClientGet_ClassifiesStatusCodes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/busy":
			w.WriteHeader(http.StatusTooManyRequests)
		case "/broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer server.Close()

	client := newTestClient(t, Config{})

	_, err := client.Get(context.Background(), server.URL+"/missing")
	if !errors.Is(err, ErrNotFound) || IsTransient(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	for _, path := range []string{"/busy", "/broken"} {
		_, err = client.Get(context.Background(), server.URL+path)
		if !IsTransient(err) {
			t.Fatalf("expected transient error for %s, got %v", path, err)
		}
	}
	_, err = client.Get(context.Background(), server.URL+"/forbidden")
	if err == nil || IsTransient(err) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestClientGet_OpensBreakerAfterTransientFailures(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	var opened atomic.Bool
	client := newTestClient(t, Config{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
		OnCircuitChange: func(_ string, _, to resilience.CircuitState) {
			if to == resilience.CircuitStateOpen {
				opened.Store(true)
			}
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := client.Get(context.Background(), server.URL); !IsTransient(err) {
			t.Fatalf("attempt %d: expected transient error, got %v", i, err)
		}
	}

	_, err := client.Get(context.Background(), server.URL)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open, got %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 upstream hits, got %d", hits.Load())
	}
	if !opened.Load() {
		t.Fatalf("expected state change callback")
	}
}

func TestClientGet_NotFoundDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, Config{
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1},
	})
	for i := 0; i < 3; i++ {
		if _, err := client.Get(context.Background(), server.URL); !errors.Is(err, ErrNotFound) {
			t.Fatalf("attempt %d: expected not found, got %v", i, err)
		}
	}
	if state := client.Breaker().State(); state != resilience.CircuitStateClosed {
		t.Fatalf("expected closed breaker, got %s", state)
	}
}

func TestClientGet_CallerDeadlineDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(t, Config{
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute},
	})
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := client.Get(ctx, server.URL)
		cancel()
		if err == nil {
			t.Fatalf("attempt %d: expected deadline error", i)
		}
	}
	if state := client.Breaker().State(); state != resilience.CircuitStateClosed {
		t.Fatalf("expected closed breaker, got %s", state)
	}
}

func TestClientGet_RespectsRobots(t *testing.T) {
	t.Parallel()

	var pageHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		pageHits.Add(1)
		_, _ = w.Write([]byte("public"))
	}))
	defer server.Close()

	client := newTestClient(t, Config{RespectRobots: true})

	if _, err := client.Get(context.Background(), server.URL+"/private/page"); !errors.Is(err, ErrDisallowed) {
		t.Fatalf("expected disallowed, got %v", err)
	}
	if _, err := client.Get(context.Background(), server.URL+"/public"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pageHits.Load() != 1 {
		t.Fatalf("expected one page hit, got %d", pageHits.Load())
	}
}

func TestClientGet_RobotsUnavailableFailsOpen(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("page"))
	}))
	defer server.Close()

	client := newTestClient(t, Config{RespectRobots: true})
	if _, err := client.Get(context.Background(), server.URL+"/anything"); err != nil {
		t.Fatalf("expected fail-open, got %v", err)
	}
}

func TestClientGet_DecodesDeclaredCharset(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Pe\xf1a" is "Peña" in latin-1.
		_, _ = w.Write([]byte("<td>Pe\xf1a</td>"))
	}))
	defer server.Close()

	client := newTestClient(t, Config{})
	page, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(page.Body), "Peña") {
		t.Fatalf("expected decoded body, got %q", page.Body)
	}
}

func TestClientGet_RejectsInvalidURL(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, Config{})
	if _, err := client.Get(context.Background(), "not a url"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestHostLimiter_MinDelayHonorsContext(t *testing.T) {
	t.Parallel()

	limiter := newHostLimiter(0, 1, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "example.com", 0); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestProductToken(t *testing.T) {
	t.Parallel()

	if got := productToken("Mozilla/5.0 (X11)"); got != "Mozilla" {
		t.Fatalf("unexpected token %q", got)
	}
	if got := productToken(""); got != "*" {
		t.Fatalf("unexpected token %q", got)
	}
}
