package observability

import "github.com/prometheus/client_golang/prometheus"

// Enrichment outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
	OutcomeRetried     = "retried"
)

// Cache tiers and lookup results.
const (
	TierRun   = "run"
	TierStore = "store"

	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheCorrupt = "corrupt"
)

var (
	// EnrichmentCalls counts remote hotel info calls by outcome. A call that
	// needed the validation retry is counted once as "retried" and once with
	// its final outcome.
	EnrichmentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_enrichment_calls_total",
			Help: "Remote hotel info calls by outcome.",
		},
		[]string{"outcome"},
	)

	// CacheLookups counts detail cache lookups by tier and result.
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_cache_lookups_total",
			Help: "Detail cache lookups by tier and result.",
		},
		[]string{"tier", "result"},
	)

	// CacheWriteFailures counts persistent cache writes that failed and were
	// ignored.
	CacheWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hotel_cache_write_failures_total",
			Help: "Failed best-effort writes to the persistent detail cache.",
		},
	)

	// ScanStops counts aggregation scans by the reason they stopped.
	ScanStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_scan_stops_total",
			Help: "Search page scans by stop reason.",
		},
		[]string{"reason"},
	)

	// ScanBudgetUsed observes how many enrichment calls a scan spent.
	ScanBudgetUsed = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hotel_scan_budget_used",
			Help:    "Enrichment calls spent per search page scan.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 200},
		},
	)
)

func init() {
	prometheus.MustRegister(EnrichmentCalls, CacheLookups, CacheWriteFailures, ScanStops, ScanBudgetUsed)
}
