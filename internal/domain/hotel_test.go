package domain

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleRecord() *DetailRecord {
	return &DetailRecord{
		ID:         "alpha",
		Name:       "Alpha",
		Address:    "1 Rue de Test",
		Latitude:   48.85,
		Longitude:  2.35,
		StarRating: 4,
		Region:     Region{ID: 2734, Name: "Paris", CountryCode: "FR"},
		AmenityGroups: []AmenityGroup{
			{GroupName: "General", Amenities: []string{"Wi-Fi", "Pool"}},
			{GroupName: "Rooms", Amenities: []string{"Air conditioning", "Wi-Fi"}},
		},
		Images: []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"},
		Description: []DescriptionSection{
			{Title: "Location", Paragraphs: []string{"Central."}},
			{Title: "Rooms", Paragraphs: []string{"Quiet.", "Large."}},
		},
		CheckInTime: "15:00:00",
	}
}

func TestSearchRequest_Nights(t *testing.T) {
	in := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	r := SearchRequest{CheckIn: in, CheckOut: in.AddDate(0, 0, 3)}
	if got := r.Nights(); got != 3 {
		t.Fatalf("Nights() = %d, want 3", got)
	}
}

func TestDetailRecord_Amenities(t *testing.T) {
	got := sampleRecord().Amenities()
	want := []string{"Air conditioning", "Pool", "Wi-Fi"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Amenities() = %v, want %v", got, want)
	}
	if got := (&DetailRecord{}).Amenities(); got == nil || len(got) != 0 {
		t.Fatalf("empty record amenities = %#v, want empty non-nil", got)
	}
}

func TestDetailRecord_HasAmenities(t *testing.T) {
	rec := sampleRecord()
	cases := []struct {
		req  []string
		want bool
	}{
		{nil, true},
		{[]string{"wi-fi"}, true},
		{[]string{" POOL ", "air conditioning"}, true},
		{[]string{"Wi-Fi", "Spa"}, false},
	}
	for _, tc := range cases {
		if got := rec.HasAmenities(tc.req); got != tc.want {
			t.Errorf("HasAmenities(%v) = %v, want %v", tc.req, got, tc.want)
		}
	}
}

func TestDetailRecord_TextHelpers(t *testing.T) {
	rec := sampleRecord()
	if got := rec.DescriptionText(); got != "Central.\n\nQuiet.\n\nLarge." {
		t.Fatalf("DescriptionText() = %q", got)
	}
	if got := rec.Thumbnail(); got != "https://cdn.test/a.jpg" {
		t.Fatalf("Thumbnail() = %q", got)
	}
	if got := (&DetailRecord{}).Thumbnail(); got != "" {
		t.Fatalf("Thumbnail() without images = %q", got)
	}
}

func TestNewPrice_RoundsAndOmitsUnknown(t *testing.T) {
	total := decimal.RequireFromString("301.005")
	per := decimal.RequireFromString("100.335")
	p := NewPrice(PriceInfo{Total: &total, PerNight: &per, Currency: "EUR"})
	if p.Total == nil || *p.Total != 301.01 {
		t.Fatalf("Total = %v, want 301.01", p.Total)
	}
	if p.PerNight == nil || *p.PerNight != 100.34 {
		t.Fatalf("PerNight = %v, want 100.34", p.PerNight)
	}
	if p.Currency == nil || *p.Currency != "EUR" {
		t.Fatalf("Currency = %v", p.Currency)
	}

	empty := NewPrice(PriceInfo{})
	if empty.Total != nil || empty.PerNight != nil || empty.Currency != nil {
		t.Fatalf("unknown price should serialize as nulls: %+v", empty)
	}
	if (PriceInfo{}).Known() {
		t.Fatal("zero PriceInfo should not be known")
	}
}

func TestFilters_HasPrice(t *testing.T) {
	if (Filters{Stars: []int{4}}).HasPrice() {
		t.Fatal("no price bound configured")
	}
	min := decimal.NewFromInt(50)
	if !(Filters{MinPrice: &min}).HasPrice() {
		t.Fatal("min bound should count")
	}
}

func TestNewSummary(t *testing.T) {
	rating := 8.5
	s := NewSummary("alpha", sampleRecord(), PriceInfo{}, &rating)
	if s.ID != "alpha" || s.Name != "Alpha" {
		t.Fatalf("identity = %q/%q", s.ID, s.Name)
	}
	if s.Stars == nil || *s.Stars != 4 {
		t.Fatalf("Stars = %v", s.Stars)
	}
	if s.Rating == nil || *s.Rating != 8.5 {
		t.Fatalf("Rating = %v", s.Rating)
	}
	if s.Thumbnail == nil || *s.Thumbnail != "https://cdn.test/a.jpg" {
		t.Fatalf("Thumbnail = %v", s.Thumbnail)
	}
	if s.Location.City == nil || *s.Location.City != "Paris" || *s.Location.Country != "FR" {
		t.Fatalf("Location = %+v", s.Location)
	}
	if len(s.Amenities) != 3 {
		t.Fatalf("Amenities = %v", s.Amenities)
	}
}

func TestNewHotelDetails(t *testing.T) {
	rec := sampleRecord()
	d := NewHotelDetails("alpha", rec)
	if d.Price.Total != nil {
		t.Fatal("details carry no price")
	}
	if d.CheckIn == nil || *d.CheckIn != "15:00:00" {
		t.Fatalf("CheckIn = %v", d.CheckIn)
	}
	if d.CheckOut != nil || d.Email != nil {
		t.Fatal("empty strings should be nil")
	}
	if len(d.Photos) != 2 {
		t.Fatalf("Photos = %v", d.Photos)
	}

	bare := NewHotelDetails("x", &DetailRecord{ID: "x"})
	if bare.Photos == nil {
		t.Fatal("Photos must never be nil")
	}
}
