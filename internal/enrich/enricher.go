// Package enrich fetches hotel detail records cache-first.
//
// A lookup consults the run's Tier 1 cache, then the persistent Tier 2
// store, and only then the remote hotel info endpoint. Remote results are
// written through to both tiers; a failed persistent write is logged and
// otherwise ignored.
package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-hotel-search/internal/cache"
	"github.com/tbourn/go-hotel-search/internal/domain"
	"github.com/tbourn/go-hotel-search/internal/observability"
	"github.com/tbourn/go-hotel-search/internal/payload"
	"github.com/tbourn/go-hotel-search/internal/ratehawk"
)

// DetailTransport is the remote hotel info endpoint. HotelInfo decodes
// strictly and reports schema violations as *payload.ValidationError;
// HotelInfoRaw is the lower-level path used for the single retry.
type DetailTransport interface {
	HotelInfo(ctx context.Context, id, lang string) (*domain.DetailRecord, payload.Raw, error)
	HotelInfoRaw(ctx context.Context, id, lang string) (payload.Raw, error)
}

// Source tells where a record came from.
type Source int

const (
	SourceNone Source = iota
	SourceRun
	SourceStore
	SourceRemote
)

func (s Source) String() string {
	switch s {
	case SourceRun:
		return "run"
	case SourceStore:
		return "store"
	case SourceRemote:
		return "remote"
	default:
		return "none"
	}
}

// Enricher resolves hotel ids to detail records.
type Enricher struct {
	transport DetailTransport
	store     *cache.Store
	log       zerolog.Logger
}

// New returns an Enricher. store may be nil for an in-memory-only setup.
func New(transport DetailTransport, store *cache.Store, log zerolog.Logger) *Enricher {
	return &Enricher{
		transport: transport,
		store:     store,
		log:       log.With().Str("component", "enricher").Logger(),
	}
}

// Cached returns the record from Tier 1 or Tier 2 without calling upstream.
// A Tier 2 hit is promoted into run.
func (e *Enricher) Cached(ctx context.Context, run *cache.Run, id, lang string) (*domain.DetailRecord, Source, bool) {
	if rec, ok := run.Get(id, lang); ok {
		return rec, SourceRun, true
	}
	if rec, ok := e.store.Get(ctx, id, lang); ok {
		run.Set(id, lang, rec)
		return rec, SourceStore, true
	}
	return nil, SourceNone, false
}

// Fetch returns the record for (id, lang), calling upstream on a cache miss.
//
// Errors: ratehawk.ErrNotFound (possibly wrapped) when upstream has no such
// hotel, otherwise a *ratehawk.UpstreamError; rate limiting is detectable
// with ratehawk.IsRateLimited.
func (e *Enricher) Fetch(ctx context.Context, run *cache.Run, id, lang string) (*domain.DetailRecord, Source, error) {
	if rec, src, ok := e.Cached(ctx, run, id, lang); ok {
		return rec, src, nil
	}
	return e.Remote(ctx, run, id, lang)
}

// Remote calls upstream without consulting either cache tier and writes the
// sanitized result through to both. Callers that already saw a Cached miss
// use it to avoid a second Tier 2 read.
//
// The remote call is detached from ctx cancellation: once issued it runs to
// completion (bounded by the transport timeout) and populates the cache even
// if the caller has gone away.
func (e *Enricher) Remote(ctx context.Context, run *cache.Run, id, lang string) (*domain.DetailRecord, Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, SourceNone, &ratehawk.UpstreamError{Op: "hotel_info", Err: err}
	}

	rctx := context.WithoutCancel(ctx)
	rec, raw, err := e.remote(rctx, id, lang)
	if err != nil {
		e.countFailure(err)
		return nil, SourceNone, err
	}
	observability.EnrichmentCalls.WithLabelValues(observability.OutcomeOK).Inc()

	run.Set(id, lang, rec)
	if _, werr := e.store.Set(rctx, id, lang, raw); werr != nil {
		observability.CacheWriteFailures.Inc()
		e.log.Warn().Err(werr).Str("hotel_id", id).Str("language", lang).Msg("cache write failed")
	}
	return rec, SourceRemote, nil
}

// remote performs the upstream call with one validation retry. The returned
// record is always decoded from the returned, sanitized payload, so a fresh
// fetch and a later Tier 2 read of the same hotel agree.
func (e *Enricher) remote(ctx context.Context, id, lang string) (*domain.DetailRecord, payload.Raw, error) {
	_, raw, err := e.transport.HotelInfo(ctx, id, lang)
	if err == nil {
		return sanitized(raw)
	}
	if !payload.IsValidation(err) {
		return nil, nil, err
	}

	observability.EnrichmentCalls.WithLabelValues(observability.OutcomeRetried).Inc()
	e.log.Debug().Err(err).Str("hotel_id", id).Msg("hotel info failed validation, retrying raw")

	raw, err = e.transport.HotelInfoRaw(ctx, id, lang)
	if err != nil {
		return nil, nil, err
	}
	return sanitized(raw)
}

func sanitized(raw payload.Raw) (*domain.DetailRecord, payload.Raw, error) {
	raw = payload.Sanitize(raw)
	rec, err := payload.Decode(raw)
	if err != nil {
		return nil, nil, &ratehawk.UpstreamError{Op: "hotel_info", Err: fmt.Errorf("payload still invalid after sanitizing: %w", err)}
	}
	return rec, raw, nil
}

func (e *Enricher) countFailure(err error) {
	switch {
	case ratehawk.IsRateLimited(err):
		observability.EnrichmentCalls.WithLabelValues(observability.OutcomeRateLimited).Inc()
	case errors.Is(err, ratehawk.ErrNotFound):
		observability.EnrichmentCalls.WithLabelValues(observability.OutcomeNotFound).Inc()
	default:
		observability.EnrichmentCalls.WithLabelValues(observability.OutcomeError).Inc()
	}
}
