// Package domain defines the core models shared by the search, enrichment,
// cache, and HTTP layers: raw upstream search hits, enriched hotel detail
// records, derived prices, and the per-request result shapes.
package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SearchRequest carries the parameters of one upstream region search.
type SearchRequest struct {
	RegionID  int
	CheckIn   time.Time
	CheckOut  time.Time
	Adults    int
	Children  []int
	Currency  string
	Language  string
	Residency string

	// HotelsLimit caps the number of hits returned upstream (0 = no cap).
	HotelsLimit int
}

// Nights returns the number of nights between check-in and check-out.
func (r SearchRequest) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// SearchResult is the ordered hit sequence returned by a region search plus
// the upstream-reported total when the transport supplies one.
type SearchResult struct {
	Hits  []SearchHit
	Total *int
}

// SearchHit is one raw, unenriched result of a region search. Upstream order
// is canonical and must be preserved by consumers.
type SearchHit struct {
	ID    string `json:"id"`
	Rates []Rate `json:"rates"`
}

// Rate is a single priced room offer embedded in a SearchHit.
type Rate struct {
	DailyPrices    []string       `json:"daily_prices"`
	PaymentOptions PaymentOptions `json:"payment_options"`
	RgExt          *RgExt         `json:"rg_ext,omitempty"`
}

// PaymentOptions lists the ways a rate can be paid.
type PaymentOptions struct {
	PaymentTypes []PaymentType `json:"payment_types"`
}

// PaymentType is one payable amount. ShowAmount/ShowCurrencyCode are the
// values converted to the requested currency and take precedence.
type PaymentType struct {
	Amount           *decimal.Decimal `json:"amount"`
	CurrencyCode     string           `json:"currency_code"`
	ShowAmount       *decimal.Decimal `json:"show_amount"`
	ShowCurrencyCode string           `json:"show_currency_code"`
}

// RgExt holds room-group classification; Quality feeds the guest rating.
type RgExt struct {
	Quality *float64 `json:"quality"`
}

// Region is the administrative region a hotel belongs to.
type Region struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	Type        string `json:"type"`
	IATA        string `json:"iata,omitempty"`
}

// AmenityGroup is a named set of amenities.
type AmenityGroup struct {
	GroupName string   `json:"group_name"`
	Amenities []string `json:"amenities"`
}

// DescriptionSection is one titled block of the hotel description.
type DescriptionSection struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// RoomGroup describes one family of rooms in a hotel.
type RoomGroup struct {
	RoomGroupID   int      `json:"room_group_id"`
	Name          string   `json:"name"`
	Images        []string `json:"images"`
	RoomAmenities []string `json:"room_amenities"`
}

// DetailRecord is the enriched per-hotel record produced by the hotel info
// endpoint (or the bulk dump). Its identity key is (ID, language).
type DetailRecord struct {
	ID            string
	Name          string
	Kind          string
	Address       string
	PostalCode    string
	Email         string
	Phone         string
	Latitude      float64
	Longitude     float64
	StarRating    int
	CheckInTime   string
	CheckOutTime  string
	IsClosed      bool
	Region        Region
	AmenityGroups []AmenityGroup
	Images        []string
	Description   []DescriptionSection
	RoomGroups    []RoomGroup
	SerpFilters   []string
}

// Amenities returns the de-duplicated, sorted union of all amenity groups.
func (r *DetailRecord) Amenities() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, g := range r.AmenityGroups {
		for _, a := range g.Amenities {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}

// HasAmenities reports whether every required amenity is present, compared
// case-insensitively.
func (r *DetailRecord) HasAmenities(required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]struct{})
	for _, g := range r.AmenityGroups {
		for _, a := range g.Amenities {
			have[strings.ToLower(a)] = struct{}{}
		}
	}
	for _, want := range required {
		if _, ok := have[strings.ToLower(strings.TrimSpace(want))]; !ok {
			return false
		}
	}
	return true
}

// DescriptionText joins all description paragraphs with blank lines.
func (r *DetailRecord) DescriptionText() string {
	var paras []string
	for _, s := range r.Description {
		paras = append(paras, s.Paragraphs...)
	}
	return strings.Join(paras, "\n\n")
}

// Thumbnail returns the first image URL, or "" when the hotel has none.
func (r *DetailRecord) Thumbnail() string {
	if len(r.Images) == 0 {
		return ""
	}
	return r.Images[0]
}
