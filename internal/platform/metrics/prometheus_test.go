package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/platform/resilience"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	return rec.Body.String()
}

func TestObserveFetch_ExposesCounterAndHistogram(t *testing.T) {
	ObserveFetch("espn", "hit", 120*time.Millisecond)

	body := scrape(t)
	if !strings.Contains(body, `mlb_source_fetch_attempts_total{outcome="hit",source="espn"}`) {
		t.Fatalf("expected fetch counter in exposition")
	}
	if !strings.Contains(body, `mlb_source_fetch_duration_seconds_count{source="espn"}`) {
		t.Fatalf("expected fetch histogram in exposition")
	}
}

func TestObserveCircuit_SetsGauge(t *testing.T) {
	ObserveCircuit("bbref", resilience.CircuitStateClosed, resilience.CircuitStateOpen)
	if !strings.Contains(scrape(t), `mlb_circuit_breaker_state{name="bbref"} 2`) {
		t.Fatalf("expected open=2 for bbref")
	}

	ObserveCircuit("bbref", resilience.CircuitStateOpen, resilience.CircuitStateClosed)
	if !strings.Contains(scrape(t), `mlb_circuit_breaker_state{name="bbref"} 0`) {
		t.Fatalf("expected closed=0 for bbref")
	}
}

func TestCacheObserver_CountsOutcomes(t *testing.T) {
	CacheObserver{}.ObserveCache("games", "miss")

	if !strings.Contains(scrape(t), `mlb_cache_operations_total{namespace="games",outcome="miss"}`) {
		t.Fatalf("expected cache metric in exposition")
	}
}
