// Hotel HTTP handlers.
//
// This file exposes REST endpoints for hotel search and lookups:
//   - GET /hotels/search             (paginated, filtered region search)
//   - GET /hotels/{id}               (hotel details)
//   - GET /hotels/{id}/photos        (hotel photos)
//   - GET /locations/autocomplete    (region suggestions)
//   - GET /cache/stats               (persistent cache stats, ETag support)
//
// Handlers are transport-thin: they parse query parameters, call the hotel
// service, and translate results and service errors into HTTP responses.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-hotel-search/internal/domain"
	"github.com/tbourn/go-hotel-search/internal/services"
	"github.com/tbourn/go-hotel-search/internal/utils"
)

// dateLayout is the layout of check_in and check_out.
const dateLayout = "2006-01-02"

// HotelService defines the hotel operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type HotelService interface {
	// SearchPage returns one page of enriched summaries for a region.
	SearchPage(ctx context.Context, c services.SearchCriteria) (domain.PageResult, error)
	// GetDetail returns the detail view of one hotel.
	GetDetail(ctx context.Context, id, lang string) (domain.HotelDetails, error)
	// Photos returns every image of one hotel.
	Photos(ctx context.Context, id, lang string) (domain.PhotoCollection, error)
	// Autocomplete suggests regions for free text.
	Autocomplete(ctx context.Context, q, lang string) ([]domain.LocationSuggestion, error)
	// CacheStats reports the persistent cache size and freshness.
	CacheStats(ctx context.Context) (domain.CacheStats, error)
}

// Handlers groups the HTTP endpoints. It depends on an abstract service
// interface to keep transport concerns separate from business logic.
type Handlers struct {
	hotelSvc HotelService
}

// New constructs and returns a Handlers instance bound to the given service.
func New(hotelSvc HotelService) *Handlers {
	return &Handlers{hotelSvc: hotelSvc}
}

//
// Helpers
//

func queryInt(c *gin.Context, key string, required bool) (int, bool, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		if required {
			return 0, false, badRequest(key + " is required")
		}
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, badRequest(key + " must be an integer")
	}
	return n, true, nil
}

func queryDate(c *gin.Context, key string) (time.Time, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return time.Time{}, badRequest(key + " is required")
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, badRequest(key + " must be a date (YYYY-MM-DD)")
	}
	return t, nil
}

func queryDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, badRequest(key + " must be a number")
	}
	return &d, nil
}

// queryList collects a repeated parameter, also splitting comma-separated
// values (?stars=4&stars=5 and ?stars=4,5 are equivalent).
func queryList(c *gin.Context, key string) []string {
	return utils.SplitList(c.QueryArray(key))
}

func queryInts(c *gin.Context, key string) ([]int, error) {
	vals := queryList(c, key)
	if len(vals) == 0 {
		return nil, nil
	}
	out := make([]int, 0, len(vals))
	for _, v := range vals {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, badRequest(key + " must be a list of integers")
		}
		out = append(out, n)
	}
	return out, nil
}

// parseCriteria builds search criteria from the query string.
func parseCriteria(c *gin.Context) (services.SearchCriteria, error) {
	var (
		sc  services.SearchCriteria
		err error
	)
	if sc.LocationID, _, err = queryInt(c, "location_id", true); err != nil {
		return sc, err
	}
	if sc.CheckIn, err = queryDate(c, "check_in"); err != nil {
		return sc, err
	}
	if sc.CheckOut, err = queryDate(c, "check_out"); err != nil {
		return sc, err
	}

	adults, set, err := queryInt(c, "adults", false)
	if err != nil {
		return sc, err
	}
	sc.Adults = 2
	if set {
		sc.Adults = adults
	}
	if sc.Children, err = queryInts(c, "children"); err != nil {
		return sc, err
	}

	sc.Currency = c.Query("currency")
	sc.Language = c.Query("language")
	sc.Residency = c.Query("residency")

	sc.Page = utils.AtoiDefault(c.Query("page"), 1)
	if sc.Page < 1 {
		return sc, badRequest("page must be >= 1")
	}
	sc.PageSize = utils.AtoiDefault(c.Query("page_size"), services.DefaultPageSize)

	if sc.Filters.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
		return sc, err
	}
	if sc.Filters.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
		return sc, err
	}
	if sc.Filters.Stars, err = queryInts(c, "stars"); err != nil {
		return sc, err
	}
	sc.Filters.Amenities = queryList(c, "amenities")
	return sc, nil
}

//
// Handlers
//

// SearchHotels godoc
// @ID          searchHotels
// @Summary     Search hotels in a region (paginated)
// @Description Runs a region search and enriches hits in upstream order until the page is filled.
// @Description Detail lookups per request are budgeted; when the budget or the upstream rate limit
// @Description cuts the scan short the page may hold fewer items and `partial` is true.
// @Tags        Hotels
// @Produce     json
//
// @Param       location_id  query  int      true   "Region id from autocomplete"  example(2734)
// @Param       check_in     query  string   true   "Check-in date"   format(date) example(2026-11-01)
// @Param       check_out    query  string   true   "Check-out date"  format(date) example(2026-11-03)
// @Param       adults       query  int      false  "Adults"          minimum(1) default(2)
// @Param       children     query  []int    false  "Child ages"      collectionFormat(multi)
// @Param       currency     query  string   false  "ISO currency"    example(EUR)
// @Param       language     query  string   false  "Language"        example(en)
// @Param       residency    query  string   false  "Guest residency" example(gb)
// @Param       page         query  int      false  "Page number"     minimum(1) default(1)
// @Param       page_size    query  int      false  "Items per page"  minimum(1) maximum(100) default(20)
// @Param       min_price    query  number   false  "Minimum price per night"
// @Param       max_price    query  number   false  "Maximum price per night"
// @Param       stars        query  []int    false  "Star ratings"    collectionFormat(multi)
// @Param       amenities    query  []string false  "Required amenities (all must match)" collectionFormat(multi)
//
// @Success     200  {object}  domain.PageResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     503  {object}  handlers.ErrorResponse  "Upstream unavailable"
// @Router      /hotels/search [get]
func (h *Handlers) SearchHotels(c *gin.Context) {
	sc, err := parseCriteria(c)
	if err != nil {
		serviceError(c, err)
		return
	}
	page, err := h.hotelSvc.SearchPage(c.Request.Context(), sc)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, page)
}

// GetHotel godoc
// @ID          getHotel
// @Summary     Hotel details
// @Tags        Hotels
// @Produce     json
// @Param       id        path   string  true   "Hotel id"  example(test_hotel)
// @Param       language  query  string  false  "Language"  example(en)
// @Success     200  {object}  domain.HotelDetails
// @Failure     404  {object}  handlers.ErrorResponse  "Hotel not found"
// @Failure     503  {object}  handlers.ErrorResponse  "Upstream unavailable"
// @Router      /hotels/{id} [get]
func (h *Handlers) GetHotel(c *gin.Context) {
	d, err := h.hotelSvc.GetDetail(c.Request.Context(), c.Param("id"), c.Query("language"))
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// GetHotelPhotos godoc
// @ID          getHotelPhotos
// @Summary     Hotel photos
// @Tags        Hotels
// @Produce     json
// @Param       id        path   string  true   "Hotel id"  example(test_hotel)
// @Param       language  query  string  false  "Language"  example(en)
// @Success     200  {object}  domain.PhotoCollection
// @Failure     404  {object}  handlers.ErrorResponse  "Hotel not found"
// @Failure     503  {object}  handlers.ErrorResponse  "Upstream unavailable"
// @Router      /hotels/{id}/photos [get]
func (h *Handlers) GetHotelPhotos(c *gin.Context) {
	p, err := h.hotelSvc.Photos(c.Request.Context(), c.Param("id"), c.Query("language"))
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// AutocompleteLocations godoc
// @ID          autocompleteLocations
// @Summary     Autocomplete locations by free text
// @Tags        Locations
// @Produce     json
// @Param       q         query  string  true   "Free text query"  minlength(2) example(Par)
// @Param       language  query  string  false  "Language"         example(en)
// @Success     200  {array}   domain.LocationSuggestion
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     503  {object}  handlers.ErrorResponse  "Upstream unavailable"
// @Router      /locations/autocomplete [get]
func (h *Handlers) AutocompleteLocations(c *gin.Context) {
	out, err := h.hotelSvc.Autocomplete(c.Request.Context(), c.Query("q"), c.Query("language"))
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// CacheStats godoc
// @ID          cacheStats
// @Summary     Persistent hotel cache statistics
// @Description Returns the number of cached hotel info entries and the newest write time.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Cache
// @Produce     json
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"  example(W/\"cache:10:1700000000\")
// @Success     200  {object}  domain.CacheStats
// @Header      200  {string}  ETag  "Weak ETag for current stats"
// @Success     304  {string}  string  "Not Modified"
// @Failure     501  {object}  handlers.ErrorResponse  "Cache not configured"
// @Router      /cache/stats [get]
func (h *Handlers) CacheStats(c *gin.Context) {
	st, err := h.hotelSvc.CacheStats(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}

	var ts int64
	if st.LastUpdated != nil {
		ts = st.LastUpdated.Unix()
	}
	c.Header("Cache-Control", "no-cache")
	if notModified(c, fmt.Sprintf(`W/"cache:%d:%d"`, st.Entries, ts)) {
		return
	}
	ok(c, http.StatusOK, st)
}
