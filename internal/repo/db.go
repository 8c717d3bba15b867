// Package repo implements the persistent (Tier 2) backends of the hotel
// detail cache. This file contains database bootstrapping helpers for SQLite
// (pure Go driver) and the additive schema migration of the hotels table.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-hotel-search/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database, applies PRAGMAs and
// installs query tracing. The parent directory must already exist.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool. Reads are concurrent; SQLite serializes the writers.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates the hotels table or adds columns missing from an older
// schema, then stamps rows that predate updated_at with the current time so
// cache stats stay meaningful.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.HotelInfoEntry{}); err != nil {
		return err
	}
	return db.Model(&domain.HotelInfoEntry{}).
		Where("updated_at IS NULL").
		Update("updated_at", now().Unix()).Error
}

// now is the clock used for entry timestamps.
var now = func() time.Time { return time.Now().UTC() }
