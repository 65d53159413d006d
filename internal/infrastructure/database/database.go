package database

import (
	"armory-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Station{},
		&domain.Employee{},
		&domain.Asset{},
		&domain.AssignmentRecord{},
		&domain.AssignmentAsset{},
		&domain.RoundEntry{},
		&domain.AssignmentEvent{},
		&domain.Deduction{},
	)
}
