// Package assets manages the asset registry (weapons, vehicles, equipment).
package assets

import (
	"context"
	"errors"
	"strings"

	"armory-backend/internal/domain"
	"armory-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validTypes = map[string]bool{
	domain.AssetTypeWeapon:     true,
	domain.AssetTypePistol:     true,
	domain.AssetTypeAmmunition: true,
	domain.AssetTypeVehicle:    true,
	domain.AssetTypeEquipment:  true,
}

// Service encapsulates asset registry operations.
type Service struct {
	DB *gorm.DB
}

// CreateInput is the payload for registering an asset.
type CreateInput struct {
	AssetType    string  `json:"asset_type"`
	SerialNumber string  `json:"serial_number"`
	Model        string  `json:"model"`
	Description  *string `json:"description"`
}

// Create validates and registers an asset.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Asset, error) {
	if !validTypes[in.AssetType] {
		return nil, apperr.Validation("asset_type", "unknown asset type")
	}
	serial := strings.TrimSpace(in.SerialNumber)
	if serial == "" {
		return nil, apperr.Validation("serial_number", "a serial number is required")
	}

	var existing domain.Asset
	err := s.DB.WithContext(ctx).Where("serial_number = ?", serial).First(&existing).Error
	if err == nil {
		return nil, apperr.Validation("serial_number", "an asset with this serial number already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	asset := domain.Asset{
		AssetType:    in.AssetType,
		SerialNumber: serial,
		Model:        strings.TrimSpace(in.Model),
		Description:  in.Description,
	}
	if err := s.DB.WithContext(ctx).Create(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// Get returns one asset.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	var asset domain.Asset
	if err := s.DB.WithContext(ctx).Where("asset_id = ?", id).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// List returns assets, optionally filtered by type.
func (s *Service) List(ctx context.Context, assetType string) ([]domain.Asset, error) {
	q := s.DB.WithContext(ctx).Order("serial_number ASC")
	if assetType != "" {
		if !validTypes[assetType] {
			return nil, apperr.Validation("asset_type", "unknown asset type")
		}
		q = q.Where("asset_type = ?", assetType)
	}
	var assetList []domain.Asset
	if err := q.Find(&assetList).Error; err != nil {
		return nil, err
	}
	return assetList, nil
}
