// Package deductions manages salary deductions. Deductions share the
// pending→approved gate and the version-guarded write discipline with
// assignment records.
package deductions

import (
	"context"
	"errors"
	"regexp"
	"time"

	"armory-backend/internal/approval"
	"armory-backend/internal/constants"
	"armory-backend/internal/domain"
	"armory-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var monthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Service encapsulates deduction operations.
type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// CreateInput opens a pending deduction against an employee.
type CreateInput struct {
	EmployeeID uuid.UUID
	Amount     float64
	Reason     string
	Month      string // "2026-08"
}

// UpdateInput edits descriptive fields of a pending deduction. Nil fields are
// left unchanged.
type UpdateInput struct {
	Amount *float64
	Reason *string
	Month  *string
}

// Create validates and persists a pending deduction.
func (s *Service) Create(ctx context.Context, in CreateInput, actor Actor) (*domain.Deduction, error) {
	if in.EmployeeID == uuid.Nil {
		return nil, apperr.Validation("employee_id", "an employee is required")
	}
	if in.Amount <= 0 {
		return nil, apperr.Validation("amount", "deduction amount must be a positive number")
	}
	if in.Reason == "" {
		return nil, apperr.Validation("reason", "a reason is required")
	}
	if !monthRe.MatchString(in.Month) {
		return nil, apperr.Validation("month", "month must be formatted YYYY-MM")
	}

	var deduction domain.Deduction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", in.EmployeeID).First(&domain.Employee{}).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Validation("employee_id", "employee does not exist")
			}
			return err
		}
		deduction = domain.Deduction{
			EmployeeID:   in.EmployeeID,
			Amount:       in.Amount,
			Reason:       in.Reason,
			Month:        in.Month,
			Version:      1,
			CreatedBy:    actor.ID,
			LastEditedBy: actor.ID,
		}
		return tx.Create(&deduction).Error
	})
	if err != nil {
		return nil, err
	}
	return &deduction, nil
}

// Update edits a deduction's descriptive fields. Approved deductions are
// frozen for everyone below admin; approval stamps are never touched here.
func (s *Service) Update(ctx context.Context, id uuid.UUID, expectedVersion int64, in UpdateInput, actor Actor) (*domain.Deduction, error) {
	var deduction domain.Deduction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("deduction_id = ?", id).First(&deduction).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}
		if !approval.EditableBy(gateState(&deduction), actor.Role) {
			return apperr.Authorization("approved deductions can only be edited by an administrator")
		}

		updates := map[string]interface{}{
			"version":        expectedVersion + 1,
			"last_edited_by": actor.ID,
		}
		if in.Amount != nil {
			if *in.Amount <= 0 {
				return apperr.Validation("amount", "deduction amount must be a positive number")
			}
			updates["amount"] = *in.Amount
		}
		if in.Reason != nil {
			if *in.Reason == "" {
				return apperr.Validation("reason", "a reason is required")
			}
			updates["reason"] = *in.Reason
		}
		if in.Month != nil {
			if !monthRe.MatchString(*in.Month) {
				return apperr.Validation("month", "month must be formatted YYYY-MM")
			}
			updates["month"] = *in.Month
		}

		res := tx.Model(&domain.Deduction{}).
			Where("deduction_id = ? AND version = ?", id, expectedVersion).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrConcurrentModification
		}
		return tx.Where("deduction_id = ?", id).First(&deduction).Error
	})
	if err != nil {
		return nil, err
	}
	return &deduction, nil
}

// Approve performs the pending→approved transition through the shared gate.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, expectedVersion int64, comment string, actor Actor) (*domain.Deduction, error) {
	var deduction domain.Deduction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("deduction_id = ?", id).First(&deduction).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}

		state, err := approval.Approve(gateState(&deduction), approval.ApproveParams{
			Actor:      actor.ID,
			ActorRole:  actor.Role,
			Permission: constants.ApproveDeduction,
			Comment:    comment,
			Now:        s.now(),
		})
		if err != nil {
			return err
		}

		res := tx.Model(&domain.Deduction{}).
			Where("deduction_id = ? AND version = ?", id, expectedVersion).
			Updates(map[string]interface{}{
				"is_approved":      state.IsApproved,
				"approved_by":      state.ApprovedBy,
				"approval_date":    state.ApprovalDate,
				"approval_comment": state.ApprovalComment,
				"version":          expectedVersion + 1,
				"last_edited_by":   actor.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrConcurrentModification
		}
		return tx.Where("deduction_id = ?", id).First(&deduction).Error
	})
	if err != nil {
		return nil, err
	}
	return &deduction, nil
}

// ListForEmployee returns an employee's deductions, newest first.
func (s *Service) ListForEmployee(ctx context.Context, employeeID uuid.UUID) ([]domain.Deduction, error) {
	var deductions []domain.Deduction
	if err := s.DB.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&deductions).Error; err != nil {
		return nil, err
	}
	return deductions, nil
}

func gateState(d *domain.Deduction) approval.State {
	return approval.State{
		IsApproved:      d.IsApproved,
		ApprovedBy:      d.ApprovedBy,
		ApprovalDate:    d.ApprovalDate,
		ApprovalComment: d.ApprovalComment,
	}
}
