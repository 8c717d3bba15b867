package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-hotel-search/internal/domain"
)

// HotelInfoRepo stores sanitized hotel info payloads in the SQLite hotels
// table. It implements cache.KV and cache.StatsReader.
type HotelInfoRepo struct {
	db *gorm.DB
}

// NewHotelInfoRepo wraps an opened and migrated database handle.
func NewHotelInfoRepo(db *gorm.DB) *HotelInfoRepo {
	return &HotelInfoRepo{db: db}
}

// Get returns the stored payload for (id, lang). ok is false when no row
// exists.
func (r *HotelInfoRepo) Get(ctx context.Context, id, lang string) ([]byte, bool, error) {
	var e domain.HotelInfoEntry
	err := r.db.WithContext(ctx).
		Select("payload").
		Where("id = ? AND language = ?", id, lang).
		Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(e.Payload), true, nil
}

// Put upserts the payload and stamps updated_at. An existing row is replaced
// in a single statement.
func (r *HotelInfoRepo) Put(ctx context.Context, id, lang string, value []byte) error {
	ts := now().Unix()
	e := domain.HotelInfoEntry{
		ID:        id,
		Language:  lang,
		Payload:   string(value),
		UpdatedAt: &ts,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}, {Name: "language"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&e).Error
}
