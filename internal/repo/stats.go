// This file provides the aggregate query behind the cache stats endpoint,
// which also derives its ETag from the result.
package repo

import (
	"context"
	"database/sql"

	"github.com/tbourn/go-hotel-search/internal/domain"
)

// Stats returns the number of cached entries and the most recent write time.
//
// It executes two lightweight queries against the hotels table. When the
// table is empty, Entries is 0 and LastUpdated is nil. Rows that predate the
// updated_at column (and were not yet back-filled) are counted but do not
// contribute to LastUpdated.
func (r *HotelInfoRepo) Stats(ctx context.Context) (domain.CacheStats, error) {
	var st domain.CacheStats

	// Count
	if err := r.db.WithContext(ctx).Model(&domain.HotelInfoEntry{}).Count(&st.Entries).Error; err != nil {
		return domain.CacheStats{}, err
	}
	if st.Entries == 0 {
		return st, nil
	}

	// updated_at is unix seconds, so MAX() stays numeric.
	var last sql.NullInt64
	row := r.db.WithContext(ctx).Model(&domain.HotelInfoEntry{}).Select("MAX(updated_at)").Row()
	if err := row.Scan(&last); err != nil {
		return domain.CacheStats{}, err
	}
	if last.Valid {
		st.LastUpdated = domain.HotelInfoEntry{UpdatedAt: &last.Int64}.UpdatedTime()
	}
	return st, nil
}
