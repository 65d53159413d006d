package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Asset types. Weapons, pistols and ammunition carry a round ledger when
// assigned; vehicles and equipment do not.
const (
	AssetTypeWeapon     = "weapon"
	AssetTypePistol     = "pistol"
	AssetTypeAmmunition = "ammunition"
	AssetTypeVehicle    = "vehicle"
	AssetTypeEquipment  = "equipment"
)

// Asset is a registered item (weapon, vehicle, equipment) that can be assigned
// to an employee or a station.
type Asset struct {
	AssetID      uuid.UUID      `gorm:"column:asset_id;type:uuid;primaryKey" json:"asset_id"`
	AssetType    string         `gorm:"column:asset_type;not null;index" json:"asset_type"`
	SerialNumber string         `gorm:"column:serial_number;not null;uniqueIndex" json:"serial_number"`
	Model        string         `gorm:"column:model" json:"model"`
	Description  *string        `gorm:"column:description" json:"description"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Asset) TableName() string {
	return "assets"
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.AssetID == uuid.Nil {
		a.AssetID = uuid.New()
	}
	return nil
}

// TracksRounds reports whether assignments of this asset carry a round ledger.
func (a *Asset) TracksRounds() bool {
	switch a.AssetType {
	case AssetTypeWeapon, AssetTypePistol, AssetTypeAmmunition:
		return true
	}
	return false
}
