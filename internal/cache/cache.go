// Package cache implements the two-tier hotel detail cache.
//
// Tier 1 (Run) is a plain map owned by a single aggregation run or detail
// lookup; it is never shared between concurrent requests. Tier 2 (Store)
// wraps a durable key-value backend shared by every request and by the bulk
// dump importer. Both tiers are keyed by (hotel id, language).
//
// Tier 2 holds sanitized raw payloads rather than decoded records so that a
// schema change only needs a decoder change, never a data migration.
package cache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-hotel-search/internal/domain"
	"github.com/tbourn/go-hotel-search/internal/observability"
	"github.com/tbourn/go-hotel-search/internal/payload"
)

// Key identifies a cached hotel info record.
type Key struct {
	ID       string
	Language string
}

// Run is the per-run (Tier 1) cache. The zero value is not usable; call NewRun.
type Run struct {
	m map[Key]*domain.DetailRecord
}

// NewRun returns an empty Tier 1 cache.
func NewRun() *Run {
	return &Run{m: make(map[Key]*domain.DetailRecord)}
}

// Get returns the record cached in this run, if any.
func (r *Run) Get(id, lang string) (*domain.DetailRecord, bool) {
	rec, ok := r.m[Key{id, lang}]
	if ok {
		observability.CacheLookups.WithLabelValues(observability.TierRun, observability.CacheHit).Inc()
	} else {
		observability.CacheLookups.WithLabelValues(observability.TierRun, observability.CacheMiss).Inc()
	}
	return rec, ok
}

// Set stores rec for the remainder of the run, replacing any previous value.
func (r *Run) Set(id, lang string, rec *domain.DetailRecord) {
	r.m[Key{id, lang}] = rec
}

// Len reports the number of records held.
func (r *Run) Len() int { return len(r.m) }

// KV is the durable backend of the persistent cache. Put must be an
// unconditional, atomic per-key upsert; Get reports ok=false for keys that
// were never written.
type KV interface {
	Get(ctx context.Context, id, lang string) ([]byte, bool, error)
	Put(ctx context.Context, id, lang string, value []byte) error
}

// StatsReader is implemented by backends that can summarize their contents.
type StatsReader interface {
	Stats(ctx context.Context) (domain.CacheStats, error)
}

// Store is the persistent (Tier 2) cache. A nil *Store, or one without a
// backend, behaves as an always-empty cache that discards writes.
type Store struct {
	kv  KV
	log zerolog.Logger
}

// NewStore wraps kv.
func NewStore(kv KV, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log.With().Str("component", "detail_cache").Logger()}
}

// Enabled reports whether writes reach a durable backend.
func (s *Store) Enabled() bool { return s != nil && s.kv != nil }

// Get loads, sanitizes and strictly decodes the stored payload. Unreadable or
// corrupt entries are reported as absent and left in place; the next
// successful remote fetch overwrites them.
func (s *Store) Get(ctx context.Context, id, lang string) (*domain.DetailRecord, bool) {
	if s == nil || s.kv == nil {
		return nil, false
	}
	b, ok, err := s.kv.Get(ctx, id, lang)
	if err != nil {
		s.log.Warn().Err(err).Str("hotel_id", id).Str("language", lang).Msg("cache read failed")
		observability.CacheLookups.WithLabelValues(observability.TierStore, observability.CacheMiss).Inc()
		return nil, false
	}
	if !ok {
		observability.CacheLookups.WithLabelValues(observability.TierStore, observability.CacheMiss).Inc()
		return nil, false
	}

	raw, err := payload.Parse(b)
	if err == nil {
		var rec *domain.DetailRecord
		rec, err = payload.Decode(payload.Sanitize(raw))
		if err == nil {
			observability.CacheLookups.WithLabelValues(observability.TierStore, observability.CacheHit).Inc()
			return rec, true
		}
	}
	s.log.Debug().Err(err).Str("hotel_id", id).Str("language", lang).Msg("skipping corrupt cache entry")
	observability.CacheLookups.WithLabelValues(observability.TierStore, observability.CacheCorrupt).Inc()
	return nil, false
}

// Set sanitizes raw and upserts it under (id, lang), replacing any previous
// entry. It returns the sanitized payload that was written.
func (s *Store) Set(ctx context.Context, id, lang string, raw payload.Raw) (payload.Raw, error) {
	clean := payload.Sanitize(raw)
	if s == nil || s.kv == nil {
		return clean, nil
	}
	b, err := payload.Marshal(clean)
	if err != nil {
		return clean, err
	}
	return clean, s.kv.Put(ctx, id, lang, b)
}

// Stats summarizes the backend when it supports it.
func (s *Store) Stats(ctx context.Context) (domain.CacheStats, error) {
	if s == nil || s.kv == nil {
		return domain.CacheStats{}, nil
	}
	sr, ok := s.kv.(StatsReader)
	if !ok {
		return domain.CacheStats{}, ErrStatsUnsupported
	}
	return sr.Stats(ctx)
}
