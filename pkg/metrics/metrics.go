// Package metrics defines the Prometheus metric collectors for the
// engine's build, search, and crawl phases, and exposes an HTTP handler
// for scraping. Grounded on the teacher's pkg/metrics, with the HTTP- and
// shard-specific collectors (a platform with no HTTP gateway or sharded
// index has no use for them) replaced by collectors over this engine's own
// domain: files built, query cache hits, pages crawled, circuit breaker
// state for the crawler's outbound fetches.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	FilesIndexedTotal    prometheus.Counter
	BuildDuration        prometheus.Histogram
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchResultsCount   prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	PagesCrawledTotal    prometheus.Counter
	CrawlBudgetRemaining prometheus.Gauge
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		FilesIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lexo_files_indexed_total",
				Help: "Total files successfully indexed by the file builder.",
			},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lexo_build_duration_seconds",
				Help:    "Wall-clock duration of a full index build.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexo_search_queries_total",
				Help: "Total queries run, by match mode (exact, partial).",
			},
			[]string{"mode"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lexo_search_latency_seconds",
				Help:    "Per-query latency in seconds, by cache status.",
				Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lexo_search_results_count",
				Help:    "Number of ranked results returned per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lexo_cache_hits_total",
				Help: "Total query-result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lexo_cache_misses_total",
				Help: "Total query-result cache misses.",
			},
		),
		PagesCrawledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lexo_pages_crawled_total",
				Help: "Total pages fetched and indexed by the crawler.",
			},
		),
		CrawlBudgetRemaining: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lexo_crawl_budget_remaining",
				Help: "Remaining crawl budget for the in-progress crawl run.",
			},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lexo_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	prometheus.MustRegister(
		m.FilesIndexedTotal,
		m.BuildDuration,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.PagesCrawledTotal,
		m.CrawlBudgetRemaining,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
