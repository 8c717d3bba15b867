package domain

import "time"

// HotelInfoEntry is the persisted (Tier 2) form of a sanitized hotel info
// payload, keyed by (id, language). Writes replace the row; there is never
// more than one entry per key.
//
// UpdatedAt holds unix seconds and is nullable so rows written before the
// column existed still load.
type HotelInfoEntry struct {
	ID        string `gorm:"column:id;type:text;not null;primaryKey"`
	Language  string `gorm:"column:language;type:text;not null;primaryKey"`
	Payload   string `gorm:"column:payload;type:text;not null"`
	UpdatedAt *int64 `gorm:"column:updated_at;type:integer;autoUpdateTime:false"`
}

// TableName implements the GORM tabler interface.
func (HotelInfoEntry) TableName() string { return "hotels" }

// UpdatedTime converts UpdatedAt to a time, or nil when unset.
func (e HotelInfoEntry) UpdatedTime() *time.Time {
	if e.UpdatedAt == nil {
		return nil
	}
	t := time.Unix(*e.UpdatedAt, 0).UTC()
	return &t
}

// CacheStats summarizes the persistent detail cache.
type CacheStats struct {
	Entries     int64      `json:"entries"`
	LastUpdated *time.Time `json:"last_updated"`
}
