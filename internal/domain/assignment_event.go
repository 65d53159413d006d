package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Assignment event types, one per mutation of a record or its ledger.
const (
	EventCreated        = "CREATED"
	EventIssued         = "ISSUED"
	EventConsumed       = "CONSUMED"
	EventTransferredOut = "TRANSFERRED_OUT"
	EventTransferredIn  = "TRANSFERRED_IN"
	EventReturned       = "RETURNED"
	EventApproved       = "APPROVED"
)

// AssignmentEvent is the audit trail row written alongside every assignment
// mutation. EventData carries the operation payload as JSON.
type AssignmentEvent struct {
	EventID      uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	AssignmentID uuid.UUID      `gorm:"column:assignment_id;type:uuid;not null;index" json:"assignment_id"`
	EventType    string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	EventData    datatypes.JSON `gorm:"column:event_data;type:jsonb;not null" json:"event_data"`
	ActorID      *uuid.UUID     `gorm:"column:actor_id;type:uuid" json:"actor_id"`
	CreatedAt    time.Time      `json:"createdAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AssignmentEvent) TableName() string {
	return "assignment_events"
}

func (ae *AssignmentEvent) BeforeCreate(tx *gorm.DB) error {
	if ae.EventID == uuid.Nil {
		ae.EventID = uuid.New()
	}
	return nil
}
