package search

import "github.com/tbourn/go-hotel-search/internal/domain"

// passesRecord applies the filters that need an enriched record: star rating
// set membership and a case-insensitive amenity subset. Price bounds are
// checked earlier, before any enrichment is spent.
func passesRecord(rec *domain.DetailRecord, f domain.Filters) bool {
	if len(f.Stars) > 0 && !containsInt(f.Stars, rec.StarRating) {
		return false
	}
	return rec.HasAmenities(f.Amenities)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
