package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskibarqy/mlb-predictions/internal/platform/resilience"
)

var (
	FetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_source_fetch_attempts_total",
			Help: "Pitcher lookups per source and outcome",
		},
		[]string{"source", "outcome"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mlb_source_fetch_duration_seconds",
			Help:    "Duration of uncached source lookups in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"source"},
	)

	ReconcileResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_reconcile_results_total",
			Help: "Reconciled pitcher facts by winning source",
		},
		[]string{"source"},
	)

	ScheduleResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_schedule_resolutions_total",
			Help: "Schedules resolved by origin (official API or sample fallback)",
		},
		[]string{"source"},
	)

	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_cache_operations_total",
			Help: "Cache lookups and writes per namespace and outcome",
		},
		[]string{"namespace", "outcome"},
	)

	CircuitStateGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mlb_circuit_breaker_state",
			Help: "Circuit breaker state per upstream (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mlb_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	WarmupRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_warmup_runs_total",
			Help: "Scheduled cache warm-up runs",
		},
		[]string{"status"},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveFetch(source, outcome string, elapsed time.Duration) {
	FetchAttemptsTotal.WithLabelValues(source, outcome).Inc()
	if elapsed > 0 {
		FetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	}
}

func ObserveReconcile(source string) {
	ReconcileResultsTotal.WithLabelValues(source).Inc()
}

func ObserveSchedule(source string) {
	ScheduleResolutionsTotal.WithLabelValues(source).Inc()
}

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func ObserveWarmup(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	WarmupRunsTotal.WithLabelValues(status).Inc()
}

// ObserveCircuit matches resilience.StateChangeFunc.
func ObserveCircuit(name string, _, to resilience.CircuitState) {
	value := 0.0
	switch to {
	case resilience.CircuitStateHalfOpen:
		value = 1
	case resilience.CircuitStateOpen:
		value = 2
	}
	CircuitStateGauge.WithLabelValues(name).Set(value)
}

// CacheObserver feeds cache outcomes into CacheOperationsTotal.
type CacheObserver struct{}

func (CacheObserver) ObserveCache(namespace, outcome string) {
	CacheOperationsTotal.WithLabelValues(namespace, outcome).Inc()
}
