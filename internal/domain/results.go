package domain

import (
	"github.com/shopspring/decimal"
)

// PriceInfo is the representative price of a hit, derived fresh per request.
// All fields are nil/empty when no offer carried a usable amount.
type PriceInfo struct {
	Total    *decimal.Decimal
	PerNight *decimal.Decimal
	Currency string
}

// Known reports whether a usable amount was found.
func (p PriceInfo) Known() bool { return p.Total != nil }

// Filters are the optional constraints of a page request. Price bounds apply
// to the per-night price.
type Filters struct {
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Stars     []int
	Amenities []string
}

// HasPrice reports whether a price bound is configured.
func (f Filters) HasPrice() bool { return f.MinPrice != nil || f.MaxPrice != nil }

// Price is the serialized form of PriceInfo. Conversion to float happens
// only here, at the external boundary.
type Price struct {
	PerNight *float64 `json:"perNight"`
	Currency *string  `json:"currency"`
	Total    *float64 `json:"total"`
}

// NewPrice rounds the decimal amounts to cents for serialization.
func NewPrice(p PriceInfo) Price {
	var out Price
	if p.PerNight != nil {
		f := p.PerNight.Round(2).InexactFloat64()
		out.PerNight = &f
	}
	if p.Total != nil {
		f := p.Total.Round(2).InexactFloat64()
		out.Total = &f
	}
	if p.Currency != "" {
		c := p.Currency
		out.Currency = &c
	}
	return out
}

// Location is the geographic subset of a DetailRecord exposed to callers.
type Location struct {
	City      *string  `json:"city"`
	Country   *string  `json:"country"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Summary is the per-hotel item of a result page.
type Summary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Rating    *float64 `json:"rating"`
	Stars     *int     `json:"stars"`
	Price     Price    `json:"price"`
	Thumbnail *string  `json:"thumbnail"`
	Location  Location `json:"location"`
	Amenities []string `json:"amenities"`
}

// HotelDetails extends Summary with the fields shown on a detail view.
type HotelDetails struct {
	Summary
	Description *string  `json:"description"`
	CheckIn     *string  `json:"checkIn"`
	CheckOut    *string  `json:"checkOut"`
	Email       *string  `json:"email"`
	Phone       *string  `json:"phone"`
	PostalCode  *string  `json:"postalCode"`
	Photos      []string `json:"photos"`
}

// PhotoCollection lists every image of a hotel.
type PhotoCollection struct {
	HotelID string   `json:"hotelId"`
	Photos  []string `json:"photos"`
}

// LocationSuggestion is one autocomplete region match.
type LocationSuggestion struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Type        *string `json:"type"`
	Country     *string `json:"country"`
	CountryCode *string `json:"country_code"`
}

// ScanDiagnostics explains how a page was produced. TotalMismatch is set when
// the upstream total and the number of hits received disagree.
type ScanDiagnostics struct {
	UpstreamTotal *int   `json:"upstream_total,omitempty"`
	HitsReceived  int    `json:"hits_received"`
	Examined      int    `json:"examined"`
	Accepted      int    `json:"accepted"`
	Budget        int    `json:"budget"`
	BudgetUsed    int    `json:"budget_used"`
	StopReason    string `json:"stop_reason"`
	TotalMismatch bool   `json:"total_mismatch"`
}

// PageResult is one page of enriched summaries. Items may be shorter than
// PageSize when the enrichment budget ran out or the upstream rate limit was
// hit; Partial is then true. This is expected behavior, not an error.
type PageResult struct {
	Items       []Summary        `json:"items"`
	Page        int              `json:"page"`
	PageSize    int              `json:"pageSize"`
	Total       int              `json:"total"`
	Partial     bool             `json:"partial"`
	Diagnostics *ScanDiagnostics `json:"diagnostics,omitempty"`
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NewSummary merges hit identity, price and the enriched record. rating may
// be nil when no rate carried a quality score.
func NewSummary(id string, rec *DetailRecord, price PriceInfo, rating *float64) Summary {
	stars := rec.StarRating
	lat, lon := rec.Latitude, rec.Longitude
	return Summary{
		ID:        id,
		Name:      rec.Name,
		Rating:    rating,
		Stars:     &stars,
		Price:     NewPrice(price),
		Thumbnail: strPtr(rec.Thumbnail()),
		Location: Location{
			City:      strPtr(rec.Region.Name),
			Country:   strPtr(rec.Region.CountryCode),
			Address:   strPtr(rec.Address),
			Latitude:  &lat,
			Longitude: &lon,
		},
		Amenities: rec.Amenities(),
	}
}

// NewHotelDetails builds the detail view of a record with no price attached.
func NewHotelDetails(id string, rec *DetailRecord) HotelDetails {
	photos := rec.Images
	if photos == nil {
		photos = []string{}
	}
	return HotelDetails{
		Summary:     NewSummary(id, rec, PriceInfo{}, nil),
		Description: strPtr(rec.DescriptionText()),
		CheckIn:     strPtr(rec.CheckInTime),
		CheckOut:    strPtr(rec.CheckOutTime),
		Email:       strPtr(rec.Email),
		Phone:       strPtr(rec.Phone),
		PostalCode:  strPtr(rec.PostalCode),
		Photos:      photos,
	}
}
