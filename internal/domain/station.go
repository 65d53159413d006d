package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Station is an organizational unit that can hold assigned assets.
type Station struct {
	StationID   uuid.UUID      `gorm:"column:station_id;type:uuid;primaryKey" json:"station_id"`
	Code        string         `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Region      string         `gorm:"column:region" json:"region"`
	Phone       *string        `gorm:"column:phone" json:"phone"`
	CommanderID *uuid.UUID     `gorm:"column:commander_id;type:uuid" json:"commander_id"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Station) TableName() string {
	return "stations"
}

func (s *Station) BeforeCreate(tx *gorm.DB) error {
	if s.StationID == uuid.Nil {
		s.StationID = uuid.New()
	}
	return nil
}
