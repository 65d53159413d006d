package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Holder types for assignments: exactly one of employee or station holds the
// assets of a record at any time.
const (
	HolderTypeEmployee = "employee"
	HolderTypeStation  = "station"
)

// HolderRef identifies the current custodian of an assignment.
type HolderRef struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// AssignmentRecord binds one holder to a set of assets, with an approval state
// and (for round-tracked assets) an append-only round ledger.
//
// Version guards optimistic concurrency: every write bumps it, and writers
// must match the version they loaded.
type AssignmentRecord struct {
	AssignmentID uuid.UUID  `gorm:"column:assignment_id;type:uuid;primaryKey" json:"assignment_id"`
	HolderType   string     `gorm:"column:holder_type;not null;index:idx_assignments_holder" json:"holder_type"`
	HolderID     uuid.UUID  `gorm:"column:holder_id;type:uuid;not null;index:idx_assignments_holder" json:"holder_id"`
	Version      int64      `gorm:"column:version;not null;default:1" json:"version"`

	IsApproved      bool       `gorm:"column:is_approved;not null;default:false" json:"is_approved"`
	ApprovedBy      *uuid.UUID `gorm:"column:approved_by;type:uuid" json:"approved_by"`
	ApprovalDate    *time.Time `gorm:"column:approval_date" json:"approval_date"`
	ApprovalComment *string    `gorm:"column:approval_comment" json:"approval_comment"`

	// Round totals carried over from the pre-migration system. Free-typed
	// there (sometimes strings), hence string columns; normalized into the
	// ledger on first load and blanked afterwards.
	LegacyAssignedRounds *string `gorm:"column:legacy_assigned_rounds" json:"-"`
	LegacyConsumedRounds *string `gorm:"column:legacy_consumed_rounds" json:"-"`

	CreatedBy    uuid.UUID      `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	LastEditedBy uuid.UUID      `gorm:"column:last_edited_by;type:uuid;not null" json:"last_edited_by"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Assets []AssignmentAsset `gorm:"foreignKey:AssignmentID;references:AssignmentID" json:"assets"`
}

func (AssignmentRecord) TableName() string {
	return "assignment_records"
}

func (r *AssignmentRecord) BeforeCreate(tx *gorm.DB) error {
	if r.AssignmentID == uuid.Nil {
		r.AssignmentID = uuid.New()
	}
	return nil
}

// Holder returns the record's custodian reference.
func (r *AssignmentRecord) Holder() HolderRef {
	return HolderRef{Type: r.HolderType, ID: r.HolderID}
}

// AssignmentAsset links one asset to an assignment record. Position preserves
// the order assets were selected in; an asset appears at most once per record.
type AssignmentAsset struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID `gorm:"column:assignment_id;type:uuid;not null;uniqueIndex:idx_assignment_asset" json:"assignment_id"`
	AssetID      uuid.UUID `gorm:"column:asset_id;type:uuid;not null;uniqueIndex:idx_assignment_asset" json:"asset_id"`
	Position     int       `gorm:"column:position;not null" json:"position"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (AssignmentAsset) TableName() string {
	return "assignment_assets"
}

func (a *AssignmentAsset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
