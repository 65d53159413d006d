package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deduction is a salary deduction against an employee. It shares the
// pending→approved workflow with assignment records.
type Deduction struct {
	DeductionID uuid.UUID `gorm:"column:deduction_id;type:uuid;primaryKey" json:"deduction_id"`
	EmployeeID  uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index" json:"employee_id"`
	Amount      float64   `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Reason      string    `gorm:"column:reason;not null" json:"reason"`
	Month       string    `gorm:"column:month;not null" json:"month"` // "2026-08"
	Version     int64     `gorm:"column:version;not null;default:1" json:"version"`

	IsApproved      bool       `gorm:"column:is_approved;not null;default:false" json:"is_approved"`
	ApprovedBy      *uuid.UUID `gorm:"column:approved_by;type:uuid" json:"approved_by"`
	ApprovalDate    *time.Time `gorm:"column:approval_date" json:"approval_date"`
	ApprovalComment *string    `gorm:"column:approval_comment" json:"approval_comment"`

	CreatedBy    uuid.UUID      `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	LastEditedBy uuid.UUID      `gorm:"column:last_edited_by;type:uuid;not null" json:"last_edited_by"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Deduction) TableName() string {
	return "deductions"
}

func (d *Deduction) BeforeCreate(tx *gorm.DB) error {
	if d.DeductionID == uuid.Nil {
		d.DeductionID = uuid.New()
	}
	return nil
}
