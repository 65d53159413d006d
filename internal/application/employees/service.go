// Package employees manages personnel records.
package employees

import (
	"context"
	"errors"
	"strings"

	"armory-backend/internal/domain"
	"armory-backend/internal/pkg/apperr"
	"armory-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates employee operations.
type Service struct {
	DB *gorm.DB
}

// CreateInput is the payload for a new employee.
type CreateInput struct {
	StationID   *uuid.UUID `json:"station_id"`
	Fullname    string     `json:"fullname"`
	BadgeNumber string     `json:"badge_number"`
	Rank        string     `json:"rank"`
	Email       *string    `json:"email"`
	Phone       *string    `json:"phone"`
	BaseSalary  float64    `json:"base_salary"`
}

// UpdateInput edits an employee; nil fields are left unchanged.
type UpdateInput struct {
	StationID  *uuid.UUID `json:"station_id"`
	Fullname   *string    `json:"fullname"`
	Rank       *string    `json:"rank"`
	Email      *string    `json:"email"`
	Phone      *string    `json:"phone"`
	BaseSalary *float64   `json:"base_salary"`
}

// Create validates and persists an employee record.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Employee, error) {
	if !validation.IsValidFullname(strings.TrimSpace(in.Fullname)) {
		return nil, apperr.Validation("fullname", "a valid full name is required")
	}
	badge := strings.TrimSpace(in.BadgeNumber)
	if badge == "" {
		return nil, apperr.Validation("badge_number", "a badge number is required")
	}
	if in.Email != nil && !validation.IsValidEmail(*in.Email) {
		return nil, apperr.Validation("email", "email address is not valid")
	}
	if in.BaseSalary < 0 {
		return nil, apperr.Validation("base_salary", "base salary cannot be negative")
	}

	var err error
	if in.StationID != nil {
		err = s.DB.WithContext(ctx).Where("station_id = ?", *in.StationID).First(&domain.Station{}).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("station_id", "station does not exist")
		}
		if err != nil {
			return nil, err
		}
	}

	var existing domain.Employee
	err = s.DB.WithContext(ctx).Where("badge_number = ?", badge).First(&existing).Error
	if err == nil {
		return nil, apperr.Validation("badge_number", "an employee with this badge number already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	employee := domain.Employee{
		StationID:   in.StationID,
		Fullname:    strings.TrimSpace(in.Fullname),
		BadgeNumber: badge,
		Rank:        strings.TrimSpace(in.Rank),
		Email:       in.Email,
		Phone:       in.Phone,
		BaseSalary:  in.BaseSalary,
	}
	if err := s.DB.WithContext(ctx).Create(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// Get returns one employee.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	var employee domain.Employee
	if err := s.DB.WithContext(ctx).Where("employee_id = ?", id).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &employee, nil
}

// ListForStation returns a station's employees ordered by name.
func (s *Service) ListForStation(ctx context.Context, stationID uuid.UUID) ([]domain.Employee, error) {
	var employeeList []domain.Employee
	if err := s.DB.WithContext(ctx).
		Where("station_id = ?", stationID).
		Order("fullname ASC").
		Find(&employeeList).Error; err != nil {
		return nil, err
	}
	return employeeList, nil
}

// Update edits an employee's descriptive fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*domain.Employee, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Fullname != nil {
		if !validation.IsValidFullname(strings.TrimSpace(*in.Fullname)) {
			return nil, apperr.Validation("fullname", "a valid full name is required")
		}
		updates["fullname"] = strings.TrimSpace(*in.Fullname)
	}
	if in.Email != nil {
		if !validation.IsValidEmail(*in.Email) {
			return nil, apperr.Validation("email", "email address is not valid")
		}
		updates["email"] = *in.Email
	}
	if in.StationID != nil {
		err := s.DB.WithContext(ctx).Where("station_id = ?", *in.StationID).First(&domain.Station{}).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("station_id", "station does not exist")
		}
		if err != nil {
			return nil, err
		}
		updates["station_id"] = *in.StationID
	}
	if in.Rank != nil {
		updates["rank"] = strings.TrimSpace(*in.Rank)
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.BaseSalary != nil {
		if *in.BaseSalary < 0 {
			return nil, apperr.Validation("base_salary", "base salary cannot be negative")
		}
		updates["base_salary"] = *in.BaseSalary
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.DB.WithContext(ctx).Model(&domain.Employee{}).
		Where("employee_id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
