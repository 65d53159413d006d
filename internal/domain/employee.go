package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is a personnel record; employees can hold assigned assets and
// carry salary deductions.
type Employee struct {
	EmployeeID  uuid.UUID      `gorm:"column:employee_id;type:uuid;primaryKey" json:"employee_id"`
	StationID   *uuid.UUID     `gorm:"column:station_id;type:uuid;index" json:"station_id"`
	Fullname    string         `gorm:"column:fullname;not null" json:"fullname"`
	BadgeNumber string         `gorm:"column:badge_number;not null;uniqueIndex" json:"badge_number"`
	Rank        string         `gorm:"column:rank" json:"rank"`
	Email       *string        `gorm:"column:email" json:"email"`
	Phone       *string        `gorm:"column:phone" json:"phone"`
	BaseSalary  float64        `gorm:"column:base_salary;type:decimal(18,2);not null;default:0" json:"base_salary"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.EmployeeID == uuid.Nil {
		e.EmployeeID = uuid.New()
	}
	return nil
}
