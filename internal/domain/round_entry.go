package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Round entry kinds. Issue and transfer-in add rounds to a ledger; consume,
// transfer-out and return remove them.
const (
	RoundKindIssue       = "issue"
	RoundKindConsume     = "consume"
	RoundKindTransferOut = "transfer-out"
	RoundKindTransferIn  = "transfer-in"
	RoundKindReturn      = "return"
)

// RoundEntry is one immutable line of an assignment's round ledger. Entries
// are only ever appended; Seq fixes the replay order within a record.
type RoundEntry struct {
	EntryID      uuid.UUID `gorm:"column:entry_id;type:uuid;primaryKey" json:"entry_id"`
	AssignmentID uuid.UUID `gorm:"column:assignment_id;type:uuid;not null;uniqueIndex:idx_round_entries_seq" json:"assignment_id"`
	Seq          int       `gorm:"column:seq;not null;uniqueIndex:idx_round_entries_seq" json:"seq"`

	Kind            string `gorm:"column:kind;not null" json:"kind"`
	AssignedRounds  int    `gorm:"column:assigned_rounds;not null;default:0" json:"assigned_rounds"`
	ConsumedRounds  int    `gorm:"column:consumed_rounds;not null;default:0" json:"consumed_rounds"`
	ShellsCollected int    `gorm:"column:shells_collected;not null;default:0" json:"shells_collected"`

	Reason    string    `gorm:"column:reason;not null" json:"reason"`
	EntryDate time.Time `gorm:"column:entry_date;not null" json:"entry_date"`
	ActorID   uuid.UUID `gorm:"column:actor_id;type:uuid;not null" json:"actor_id"`

	// Set on transfer entries: the other party's holder.
	CounterpartyType *string    `gorm:"column:counterparty_type" json:"counterparty_type"`
	CounterpartyID   *uuid.UUID `gorm:"column:counterparty_id;type:uuid" json:"counterparty_id"`

	CreatedAt time.Time `json:"createdAt"`
}

func (RoundEntry) TableName() string {
	return "round_entries"
}

func (e *RoundEntry) BeforeCreate(tx *gorm.DB) error {
	if e.EntryID == uuid.Nil {
		e.EntryID = uuid.New()
	}
	return nil
}
