// Package search implements bounded-enrichment pagination over the ordered
// hits of a region search.
//
// Producing a page requires detail records for hits, but detail calls are
// capped by a per-scan budget. The Aggregator walks hits in upstream order,
// rejects on price before spending budget, serves cached records for free,
// and stops as soon as the requested window is filled, the budget is spent,
// or upstream signals rate limiting. A page shorter than requested with
// Partial set is an expected outcome, not an error.
package search

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-hotel-search/internal/cache"
	"github.com/tbourn/go-hotel-search/internal/domain"
	"github.com/tbourn/go-hotel-search/internal/enrich"
	"github.com/tbourn/go-hotel-search/internal/observability"
)

// ErrInvalidScan is returned for a non-positive page size.
var ErrInvalidScan = errors.New("page size must be positive")

// SearchTransport is the remote region search.
type SearchTransport interface {
	SearchRegion(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error)
}

// Enricher resolves hit ids to detail records. Cached must never call
// upstream; Fetch checks the caches and then calls upstream; Remote always
// calls upstream.
type Enricher interface {
	Cached(ctx context.Context, run *cache.Run, id, lang string) (*domain.DetailRecord, enrich.Source, bool)
	Fetch(ctx context.Context, run *cache.Run, id, lang string) (*domain.DetailRecord, enrich.Source, error)
	Remote(ctx context.Context, run *cache.Run, id, lang string) (*domain.DetailRecord, enrich.Source, error)
}

// ScanRequest parameterizes one page scan.
type ScanRequest struct {
	Language string
	Page     int // 1-based; values below 1 mean 1
	PageSize int
	Filters  domain.Filters
	Budget   int // maximum remote enrichment calls
}

// Aggregator turns an ordered hit sequence into one page of summaries.
type Aggregator struct {
	enricher Enricher
	log      zerolog.Logger
}

// NewAggregator returns an Aggregator using e for enrichment.
func NewAggregator(e Enricher, log zerolog.Logger) *Aggregator {
	return &Aggregator{enricher: e, log: log.With().Str("component", "aggregator").Logger()}
}

// Aggregate scans hits for the page described by req. upstreamTotal is the
// total reported by the search transport, or nil.
//
// Total is the upstream total when present, otherwise the number of hits
// received. When both are known and disagree, Diagnostics.TotalMismatch is
// set; the upstream value is still the one reported.
//
// Aggregate returns an error only for an invalid request or when ctx is
// cancelled mid-scan.
func (a *Aggregator) Aggregate(ctx context.Context, hits []domain.SearchHit, upstreamTotal *int, req ScanRequest) (domain.PageResult, error) {
	if req.PageSize <= 0 {
		return domain.PageResult{}, ErrInvalidScan
	}
	if req.Page < 1 {
		req.Page = 1
	}

	ctx, span := otel.Tracer("search/Aggregator").Start(ctx, "Aggregate",
		trace.WithAttributes(
			attribute.Int("page", req.Page),
			attribute.Int("page_size", req.PageSize),
			attribute.Int("budget", req.Budget),
			attribute.Int("hits", len(hits)),
		),
	)
	defer span.End()

	s := &scanner{
		ctx:       ctx,
		enricher:  a.enricher,
		run:       cache.NewRun(),
		log:       a.log,
		lang:      req.Language,
		filters:   req.Filters,
		skip:      (req.Page - 1) * req.PageSize,
		pageSize:  req.PageSize,
		remaining: req.Budget,
		filtered:  make([]domain.Summary, 0, req.PageSize),
	}

	res := a.run(s, hits)

	observability.ScanStops.WithLabelValues(s.reason).Inc()
	observability.ScanBudgetUsed.Observe(float64(s.used))
	span.SetAttributes(
		attribute.String("stop_reason", s.reason),
		attribute.Int("budget_used", s.used),
		attribute.Int("items", len(s.filtered)),
	)

	if res == stepStopError {
		span.RecordError(s.err)
		return domain.PageResult{}, s.err
	}

	total := len(hits)
	if upstreamTotal != nil {
		total = *upstreamTotal
	}
	diag := &domain.ScanDiagnostics{
		UpstreamTotal: upstreamTotal,
		HitsReceived:  len(hits),
		Examined:      s.examined,
		Accepted:      s.accepted,
		Budget:        req.Budget,
		BudgetUsed:    s.used,
		StopReason:    s.reason,
		TotalMismatch: upstreamTotal != nil && *upstreamTotal != len(hits),
	}

	a.log.Debug().
		Int("page", req.Page).
		Int("items", len(s.filtered)).
		Int("examined", s.examined).
		Int("budget_used", s.used).
		Str("stop_reason", s.reason).
		Msg("page scan finished")

	return domain.PageResult{
		Items:       s.filtered,
		Page:        req.Page,
		PageSize:    req.PageSize,
		Total:       total,
		Partial:     s.partial(),
		Diagnostics: diag,
	}, nil
}

// run drives the scanner over hits until a step stops it.
func (a *Aggregator) run(s *scanner, hits []domain.SearchHit) stepResult {
	for _, h := range hits {
		if r := s.step(h); r != stepContinue {
			return r
		}
	}
	s.reason = StopExhausted
	return stepContinue
}
