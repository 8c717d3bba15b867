// Package services – HotelService
//
// This file implements HotelService, the application-level component behind
// the hotel endpoints. It validates and normalizes search criteria, runs the
// region search, and hands the ordered hits to the bounded-enrichment
// aggregator to produce one page. Detail and photo lookups go through the same
// enricher (and therefore the same two-tier cache) as search enrichment.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include the region, language and pagination parameters where applicable.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	"github.com/tbourn/go-hotel-search/internal/cache"
	"github.com/tbourn/go-hotel-search/internal/domain"
	"github.com/tbourn/go-hotel-search/internal/ratehawk"
	"github.com/tbourn/go-hotel-search/internal/search"
)

// Paging and guest limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxChildAge     = 17
	MinQueryRunes   = 2
)

// LocationTransport suggests regions for free text.
type LocationTransport interface {
	Multicomplete(ctx context.Context, query, lang string) ([]domain.LocationSuggestion, error)
}

// StatsSource reports persistent cache statistics.
type StatsSource interface {
	Stats(ctx context.Context) (domain.CacheStats, error)
}

// Defaults fill in optional criteria.
type Defaults struct {
	Language  string
	Currency  string
	Residency string
}

// SearchCriteria is one page request as received from a caller.
type SearchCriteria struct {
	LocationID int
	CheckIn    time.Time
	CheckOut   time.Time
	Adults     int
	Children   []int
	Currency   string
	Language   string
	Residency  string
	Page       int
	PageSize   int
	Filters    domain.Filters
}

// HotelService coordinates region search, enrichment and detail lookups.
type HotelService struct {
	Search     search.SearchTransport
	Aggregator *search.Aggregator
	Enricher   search.Enricher
	Locations  LocationTransport
	Stats      StatsSource

	Budget   search.BudgetPolicy
	Defaults Defaults

	Log zerolog.Logger
}

// NewHotelService wires a HotelService with the default budget policy and
// English/EUR/gb defaults.
func NewHotelService(st search.SearchTransport, e search.Enricher, loc LocationTransport, stats StatsSource, log zerolog.Logger) *HotelService {
	return &HotelService{
		Search:     st,
		Aggregator: search.NewAggregator(e, log),
		Enricher:   e,
		Locations:  loc,
		Stats:      stats,
		Budget: search.BudgetPolicy{
			Base:    search.DefaultBudgetBase,
			Ceiling: search.DefaultBudgetCeiling,
		},
		Defaults: Defaults{Language: "en", Currency: "EUR", Residency: "gb"},
		Log:      log.With().Str("component", "hotel_service").Logger(),
	}
}

// SearchPage returns one page of enriched hotel summaries for a region.
//
// It fails only when criteria are invalid or the region search itself fails;
// enrichment problems shorten the page and set Partial instead.
func (s *HotelService) SearchPage(ctx context.Context, c SearchCriteria) (domain.PageResult, error) {
	tr := otel.Tracer("services/HotelService")
	ctx, span := tr.Start(ctx, "SearchPage",
		trace.WithAttributes(
			attribute.Int("region.id", c.LocationID),
			attribute.Int("page", c.Page),
			attribute.Int("page_size", c.PageSize),
		),
	)
	defer span.End()

	c, err := s.normalize(c)
	if err != nil {
		return domain.PageResult{}, err
	}
	span.SetAttributes(attribute.String("language", c.Language))

	res, err := s.Search.SearchRegion(ctx, domain.SearchRequest{
		RegionID:  c.LocationID,
		CheckIn:   c.CheckIn,
		CheckOut:  c.CheckOut,
		Adults:    c.Adults,
		Children:  c.Children,
		Currency:  c.Currency,
		Language:  c.Language,
		Residency: c.Residency,
	})
	if err != nil {
		span.RecordError(err)
		return domain.PageResult{}, upstream(err)
	}

	budget := s.Budget.For(c.Page, c.PageSize)
	page, err := s.Aggregator.Aggregate(ctx, res.Hits, res.Total, search.ScanRequest{
		Language: c.Language,
		Page:     c.Page,
		PageSize: c.PageSize,
		Filters:  c.Filters,
		Budget:   budget,
	})
	if err != nil {
		return domain.PageResult{}, err
	}
	if page.Partial {
		s.Log.Info().
			Int("region_id", c.LocationID).
			Int("page", c.Page).
			Int("items", len(page.Items)).
			Str("stop_reason", page.Diagnostics.StopReason).
			Msg("partial page")
	}
	return page, nil
}

// GetDetail returns the detail view of one hotel, served from cache when
// possible.
func (s *HotelService) GetDetail(ctx context.Context, id, lang string) (domain.HotelDetails, error) {
	tr := otel.Tracer("services/HotelService")
	ctx, span := tr.Start(ctx, "GetDetail", trace.WithAttributes(attribute.String("hotel.id", id)))
	defer span.End()

	id, lang, err := s.lookupKey(id, lang)
	if err != nil {
		return domain.HotelDetails{}, err
	}
	rec, err := s.record(ctx, id, lang)
	if err != nil {
		return domain.HotelDetails{}, err
	}
	return domain.NewHotelDetails(id, rec), nil
}

// Photos returns every image of one hotel.
func (s *HotelService) Photos(ctx context.Context, id, lang string) (domain.PhotoCollection, error) {
	tr := otel.Tracer("services/HotelService")
	ctx, span := tr.Start(ctx, "Photos", trace.WithAttributes(attribute.String("hotel.id", id)))
	defer span.End()

	id, lang, err := s.lookupKey(id, lang)
	if err != nil {
		return domain.PhotoCollection{}, err
	}
	rec, err := s.record(ctx, id, lang)
	if err != nil {
		return domain.PhotoCollection{}, err
	}
	photos := rec.Images
	if photos == nil {
		photos = []string{}
	}
	return domain.PhotoCollection{HotelID: id, Photos: photos}, nil
}

// Autocomplete suggests regions for q. Queries shorter than MinQueryRunes are
// rejected.
func (s *HotelService) Autocomplete(ctx context.Context, q, lang string) ([]domain.LocationSuggestion, error) {
	tr := otel.Tracer("services/HotelService")
	ctx, span := tr.Start(ctx, "Autocomplete")
	defer span.End()

	q = strings.TrimSpace(q)
	if len([]rune(q)) < MinQueryRunes {
		return nil, fmt.Errorf("%w: query must be at least %d characters", ErrInvalidCriteria, MinQueryRunes)
	}
	out, err := s.Locations.Multicomplete(ctx, q, s.language(lang))
	if err != nil {
		span.RecordError(err)
		return nil, upstream(err)
	}
	return out, nil
}

// CacheStats reports the size and freshness of the persistent cache.
func (s *HotelService) CacheStats(ctx context.Context) (domain.CacheStats, error) {
	if s.Stats == nil {
		return domain.CacheStats{}, cache.ErrStatsUnsupported
	}
	return s.Stats.Stats(ctx)
}

func (s *HotelService) record(ctx context.Context, id, lang string) (*domain.DetailRecord, error) {
	rec, _, err := s.Enricher.Fetch(ctx, cache.NewRun(), id, lang)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, ratehawk.ErrNotFound):
		return nil, ErrHotelNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		return nil, upstream(err)
	}
}

func (s *HotelService) lookupKey(id, lang string) (string, string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "", fmt.Errorf("%w: hotel id is required", ErrInvalidCriteria)
	}
	return id, s.language(lang), nil
}

// normalize applies defaults and validates c.
func (s *HotelService) normalize(c SearchCriteria) (SearchCriteria, error) {
	invalid := func(msg string) (SearchCriteria, error) {
		return c, fmt.Errorf("%w: %s", ErrInvalidCriteria, msg)
	}

	if c.LocationID <= 0 {
		return invalid("location_id is required")
	}
	if c.CheckIn.IsZero() || c.CheckOut.IsZero() {
		return invalid("check_in and check_out are required")
	}
	if !c.CheckOut.After(c.CheckIn) {
		return invalid("check_out must be after check_in")
	}
	if c.Adults < 1 {
		return invalid("adults must be at least 1")
	}
	for _, age := range c.Children {
		if age < 0 || age > MaxChildAge {
			return invalid(fmt.Sprintf("child age must be between 0 and %d", MaxChildAge))
		}
	}

	if c.Page < 1 {
		c.Page = 1
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return invalid(fmt.Sprintf("page_size must be between 1 and %d", MaxPageSize))
	}

	f := c.Filters
	if (f.MinPrice != nil && f.MinPrice.IsNegative()) || (f.MaxPrice != nil && f.MaxPrice.IsNegative()) {
		return invalid("price bounds must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return invalid("min_price must not exceed max_price")
	}

	c.Language = s.language(c.Language)
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = s.Defaults.Currency
	}
	c.Residency = strings.ToLower(strings.TrimSpace(c.Residency))
	if c.Residency == "" {
		c.Residency = s.Defaults.Residency
	}
	return c, nil
}

// language reduces a BCP 47 tag to its base language, falling back to the
// configured default for empty or unparseable input.
func (s *HotelService) language(lang string) string {
	def := s.Defaults.Language
	if def == "" {
		def = "en"
	}
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return def
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return def
	}
	base, conf := tag.Base()
	if conf == language.No {
		return def
	}
	return base.String()
}

// upstream wraps a transport failure so handlers can map it to 503 while the
// cause stays inspectable.
func upstream(err error) error {
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}
