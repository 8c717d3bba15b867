package search

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-hotel-search/internal/cache"
	"github.com/tbourn/go-hotel-search/internal/domain"
	"github.com/tbourn/go-hotel-search/internal/pricing"
	"github.com/tbourn/go-hotel-search/internal/ratehawk"
)

// stepResult is the outcome of examining one hit.
type stepResult int

const (
	stepContinue stepResult = iota
	stepStopPartial
	stepStopError
)

// Stop reasons reported in diagnostics and metrics.
const (
	StopExhausted   = "exhausted"    // every hit was examined
	StopPageFilled  = "page_filled"  // the requested window is complete
	StopBudget      = "budget"       // enrichment budget spent
	StopRateLimited = "rate_limited" // upstream refused an enrichment call
	StopCancelled   = "cancelled"    // caller went away
)

// scanner holds the state carried across one page scan.
type scanner struct {
	ctx      context.Context
	enricher Enricher
	run      *cache.Run
	log      zerolog.Logger

	lang     string
	filters  domain.Filters
	skip     int
	pageSize int

	remaining int
	used      int
	examined  int
	accepted  int
	filtered  []domain.Summary

	reason string
	err    error
}

// step examines one hit in upstream order.
func (s *scanner) step(hit domain.SearchHit) stepResult {
	if s.accepted >= s.skip+s.pageSize || len(s.filtered) >= s.pageSize {
		s.reason = StopPageFilled
		return stepStopPartial
	}
	if err := s.ctx.Err(); err != nil {
		s.reason, s.err = StopCancelled, err
		return stepStopError
	}
	s.examined++

	// Price-only rejection costs no budget.
	price := pricing.Select(hit.Rates)
	if !pricing.Passes(price, s.filters) {
		return stepContinue
	}

	rec, _, ok := s.enricher.Cached(s.ctx, s.run, hit.ID, s.lang)
	if !ok {
		if s.remaining <= 0 {
			s.reason = StopBudget
			return stepStopPartial
		}
		s.remaining--
		s.used++

		var err error
		rec, _, err = s.enricher.Remote(s.ctx, s.run, hit.ID, s.lang)
		switch {
		case err == nil:
		case ratehawk.IsRateLimited(err):
			s.reason = StopRateLimited
			return stepStopPartial
		case errors.Is(err, ratehawk.ErrNotFound):
			s.log.Debug().Str("hotel_id", hit.ID).Msg("hotel info not found, skipping hit")
			return stepContinue
		default:
			s.log.Warn().Err(err).Str("hotel_id", hit.ID).Msg("enrichment failed, skipping hit")
			return stepContinue
		}
	}

	if !passesRecord(rec, s.filters) {
		return stepContinue
	}
	s.accepted++
	if s.accepted > s.skip {
		s.filtered = append(s.filtered, domain.NewSummary(hit.ID, rec, price, pricing.Rating(hit.Rates)))
	}
	return stepContinue
}

// partial reports whether the page may be short because the scan was cut
// off rather than because qualifying hits ran out.
func (s *scanner) partial() bool {
	return s.reason == StopBudget || s.reason == StopRateLimited
}
