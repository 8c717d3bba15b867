package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-hotel-search/internal/domain"
)

func TestStats_CountError_NoTable(t *testing.T) {
	r := NewHotelInfoRepo(newTestDB(t /* no migrations */))
	if _, err := r.Stats(context.Background()); err == nil {
		t.Fatalf("expected error due to missing hotels table")
	}
}

func TestStats_ZeroRows(t *testing.T) {
	r := NewHotelInfoRepo(newTestDB(t, &domain.HotelInfoEntry{}))
	st, err := r.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if st.Entries != 0 || st.LastUpdated != nil {
		t.Fatalf("expected (0, nil), got %+v", st)
	}
}

func TestStats_CountAndMax(t *testing.T) {
	db := newTestDB(t, &domain.HotelInfoEntry{})
	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC).Unix()
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC).Unix() // max
	rows := []domain.HotelInfoEntry{
		{ID: "a", Language: "en", Payload: "{}", UpdatedAt: &t1},
		{ID: "b", Language: "en", Payload: "{}", UpdatedAt: &t2},
		{ID: "b", Language: "de", Payload: "{}"}, // legacy row, no timestamp
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	st, err := NewHotelInfoRepo(db).Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if st.Entries != 3 {
		t.Fatalf("expected 3 entries, got %d", st.Entries)
	}
	if st.LastUpdated == nil || st.LastUpdated.Unix() != t2 {
		t.Fatalf("expected last_updated %d, got %v", t2, st.LastUpdated)
	}
}

func TestStats_OnlyLegacyRows(t *testing.T) {
	db := newTestDB(t, &domain.HotelInfoEntry{})
	if err := db.Create(&domain.HotelInfoEntry{ID: "a", Language: "en", Payload: "{}"}).Error; err != nil {
		t.Fatal(err)
	}
	st, err := NewHotelInfoRepo(db).Stats(context.Background())
	if err != nil || st.Entries != 1 || st.LastUpdated != nil {
		t.Fatalf("got %+v %v", st, err)
	}
}
