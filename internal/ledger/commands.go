package ledger

import (
	"time"

	"armory-backend/internal/domain"
	"armory-backend/internal/pkg/apperr"

	"github.com/google/uuid"
)

// IssueCommand adds rounds to a ledger.
type IssueCommand struct {
	Quantity int
	Reason   string
	Date     time.Time
	Actor    uuid.UUID
}

// ConsumeCommand records rounds fired, with shells collected afterwards.
type ConsumeCommand struct {
	Quantity int
	Shells   int
	Reason   string
	Date     time.Time
	Actor    uuid.UUID
}

// TransferCommand moves custody of the assignment to another holder, with
// Quantity rounds travelling along.
type TransferCommand struct {
	Quantity int
	Reason   string
	Date     time.Time
	Actor    uuid.UUID
	From     domain.HolderRef
	To       domain.HolderRef
}

// ReturnCommand retires rounds from the holder's pool; zero is allowed for an
// asset handed back empty.
type ReturnCommand struct {
	Quantity int
	Reason   string
	Date     time.Time
	Actor    uuid.UUID
}

// ConsumeResult carries the entry plus the caller-visible flag that this
// consumption emptied the ledger.
type ConsumeResult struct {
	Entry         domain.RoundEntry
	FullyConsumed bool
}

// TransferEntries are the two halves of one transfer: Out is appended to the
// source record's ledger, In to the destination's.
type TransferEntries struct {
	Out domain.RoundEntry
	In  domain.RoundEntry
}

// Issue validates an issue command and returns the entry to append. The
// service fills AssignmentID and Seq when persisting.
func Issue(history []domain.RoundEntry, cmd IssueCommand) (domain.RoundEntry, error) {
	if err := requireReasonAndDate(cmd.Reason, cmd.Date); err != nil {
		return domain.RoundEntry{}, err
	}
	if cmd.Quantity <= 0 {
		return domain.RoundEntry{}, apperr.Validation("quantity", "issued rounds must be a positive number")
	}
	if err := CheckHistory(history); err != nil {
		return domain.RoundEntry{}, err
	}
	return domain.RoundEntry{
		Kind:           domain.RoundKindIssue,
		AssignedRounds: cmd.Quantity,
		Reason:         cmd.Reason,
		EntryDate:      cmd.Date,
		ActorID:        cmd.Actor,
	}, nil
}

// Consume validates a consume command against the available balance.
func Consume(history []domain.RoundEntry, cmd ConsumeCommand) (ConsumeResult, error) {
	if err := requireReasonAndDate(cmd.Reason, cmd.Date); err != nil {
		return ConsumeResult{}, err
	}
	if cmd.Quantity <= 0 {
		return ConsumeResult{}, apperr.Validation("quantity", "consumed rounds must be a positive number")
	}
	if cmd.Shells < 0 {
		return ConsumeResult{}, apperr.Validation("shells_collected", "shells collected cannot be negative")
	}
	if cmd.Shells > cmd.Quantity {
		return ConsumeResult{}, apperr.Validation("shells_collected", "shells collected cannot exceed consumed rounds")
	}
	available, err := checkedAvailable(history)
	if err != nil {
		return ConsumeResult{}, err
	}
	if cmd.Quantity > available {
		return ConsumeResult{}, apperr.Validation("quantity", "consumed rounds exceed available rounds")
	}
	return ConsumeResult{
		Entry: domain.RoundEntry{
			Kind:            domain.RoundKindConsume,
			ConsumedRounds:  cmd.Quantity,
			ShellsCollected: cmd.Shells,
			Reason:          cmd.Reason,
			EntryDate:       cmd.Date,
			ActorID:         cmd.Actor,
		},
		FullyConsumed: cmd.Quantity == available,
	}, nil
}

// Transfer validates a transfer and returns both entries. The available
// balance is always re-derived from the stored history here; the quantity the
// caller submitted is never trusted on its own.
func Transfer(history []domain.RoundEntry, cmd TransferCommand) (TransferEntries, error) {
	if err := requireReasonAndDate(cmd.Reason, cmd.Date); err != nil {
		return TransferEntries{}, err
	}
	if cmd.Quantity <= 0 {
		return TransferEntries{}, apperr.Validation("quantity", "transferred rounds must be a positive number")
	}
	if cmd.To.ID == uuid.Nil || cmd.To.Type == "" {
		return TransferEntries{}, apperr.Validation("to_holder", "destination holder is required")
	}
	if cmd.To == cmd.From {
		return TransferEntries{}, apperr.Validation("to_holder", "cannot transfer to the current holder")
	}
	available, err := checkedAvailable(history)
	if err != nil {
		return TransferEntries{}, err
	}
	if cmd.Quantity > available {
		return TransferEntries{}, apperr.Validation("quantity", "transferred rounds exceed available rounds")
	}
	return TransferEntries{
		Out: domain.RoundEntry{
			Kind:             domain.RoundKindTransferOut,
			ConsumedRounds:   cmd.Quantity,
			Reason:           cmd.Reason,
			EntryDate:        cmd.Date,
			ActorID:          cmd.Actor,
			CounterpartyType: &cmd.To.Type,
			CounterpartyID:   &cmd.To.ID,
		},
		In: domain.RoundEntry{
			Kind:             domain.RoundKindTransferIn,
			AssignedRounds:   cmd.Quantity,
			Reason:           cmd.Reason,
			EntryDate:        cmd.Date,
			ActorID:          cmd.Actor,
			CounterpartyType: &cmd.From.Type,
			CounterpartyID:   &cmd.From.ID,
		},
	}, nil
}

// Return validates a return command. Returned rounds are retired from this
// ledger entirely, not handed to another record.
func Return(history []domain.RoundEntry, cmd ReturnCommand) (domain.RoundEntry, error) {
	if err := requireReasonAndDate(cmd.Reason, cmd.Date); err != nil {
		return domain.RoundEntry{}, err
	}
	if cmd.Quantity < 0 {
		return domain.RoundEntry{}, apperr.Validation("quantity", "returned rounds cannot be negative")
	}
	available, err := checkedAvailable(history)
	if err != nil {
		return domain.RoundEntry{}, err
	}
	if cmd.Quantity > available {
		return domain.RoundEntry{}, apperr.Validation("quantity", "returned rounds exceed available rounds")
	}
	return domain.RoundEntry{
		Kind:           domain.RoundKindReturn,
		ConsumedRounds: cmd.Quantity,
		Reason:         cmd.Reason,
		EntryDate:      cmd.Date,
		ActorID:        cmd.Actor,
	}, nil
}

func requireReasonAndDate(reason string, date time.Time) error {
	if reason == "" {
		return apperr.Validation("reason", "a reason is required")
	}
	if date.IsZero() {
		return apperr.Validation("date", "a valid date is required")
	}
	return nil
}

// checkedAvailable verifies the stored history before deriving the balance,
// so corrupted data surfaces as an invariant error instead of feeding bad
// arithmetic into a validation decision.
func checkedAvailable(history []domain.RoundEntry) (int, error) {
	if err := CheckHistory(history); err != nil {
		return 0, err
	}
	return Available(history), nil
}
