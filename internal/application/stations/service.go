// Package stations manages the station registry.
package stations

import (
	"context"
	"errors"
	"strings"

	"armory-backend/internal/domain"
	"armory-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates station operations.
type Service struct {
	DB *gorm.DB
}

// CreateInput is the payload for a new station.
type CreateInput struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Region string  `json:"region"`
	Phone  *string `json:"phone"`
}

// UpdateInput edits a station; nil fields are left unchanged.
type UpdateInput struct {
	Name   *string `json:"name"`
	Region *string `json:"region"`
	Phone  *string `json:"phone"`
}

// Create validates and persists a station. Codes are unique and stored
// upper-cased.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Station, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, apperr.Validation("code", "a station code is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name", "a station name is required")
	}

	var existing domain.Station
	err := s.DB.WithContext(ctx).Where("code = ?", code).First(&existing).Error
	if err == nil {
		return nil, apperr.Validation("code", "a station with this code already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	station := domain.Station{
		Code:   code,
		Name:   strings.TrimSpace(in.Name),
		Region: strings.TrimSpace(in.Region),
		Phone:  in.Phone,
	}
	if err := s.DB.WithContext(ctx).Create(&station).Error; err != nil {
		return nil, err
	}
	return &station, nil
}

// Get returns one station.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Station, error) {
	var station domain.Station
	if err := s.DB.WithContext(ctx).Where("station_id = ?", id).First(&station).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &station, nil
}

// List returns all stations ordered by code.
func (s *Service) List(ctx context.Context) ([]domain.Station, error) {
	var stations []domain.Station
	if err := s.DB.WithContext(ctx).Order("code ASC").Find(&stations).Error; err != nil {
		return nil, err
	}
	return stations, nil
}

// Update edits a station's descriptive fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*domain.Station, error) {
	station, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validation("name", "a station name is required")
		}
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Region != nil {
		updates["region"] = strings.TrimSpace(*in.Region)
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if len(updates) == 0 {
		return station, nil
	}

	if err := s.DB.WithContext(ctx).Model(&domain.Station{}).
		Where("station_id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
