// Package ledger implements the round ledger: pure arithmetic over an
// append-only history of round entries, and validation of the commands
// (issue, consume, transfer, return) that append to it. Nothing in this
// package touches storage; services load history, call in here, and persist
// the returned entries.
package ledger

import (
	"armory-backend/internal/domain"
	"armory-backend/internal/pkg/apperr"
)

// Totals are derived from a history fold and never stored.
type Totals struct {
	Assigned  int `json:"total_assigned"`
	Consumed  int `json:"total_consumed"`
	Shells    int `json:"total_shells_collected"`
	Available int `json:"available"`
}

// ComputeTotals folds a history into its totals. Negative stored fields are
// hand-edited legacy data and count as zero; the entry kinds decide which
// fields matter, so stray values on the wrong kind are ignored.
func ComputeTotals(history []domain.RoundEntry) Totals {
	var t Totals
	for _, e := range history {
		switch e.Kind {
		case domain.RoundKindIssue, domain.RoundKindTransferIn:
			t.Assigned += nonNegative(e.AssignedRounds)
		case domain.RoundKindConsume:
			t.Consumed += nonNegative(e.ConsumedRounds)
			t.Shells += nonNegative(e.ShellsCollected)
		case domain.RoundKindTransferOut, domain.RoundKindReturn:
			t.Consumed += nonNegative(e.ConsumedRounds)
		}
	}
	t.Available = t.Assigned - t.Consumed
	return t
}

// Available returns assigned minus consumed for the full history. A negative
// result is reported by CheckHistory, not hidden here.
func Available(history []domain.RoundEntry) int {
	return ComputeTotals(history).Available
}

// CheckHistory verifies that no prefix of the history consumes more rounds
// than were assigned up to that point. Valid operations can never violate
// this; a violation means the stored history was corrupted upstream.
func CheckHistory(history []domain.RoundEntry) error {
	var assigned, consumed int
	for i, e := range history {
		switch e.Kind {
		case domain.RoundKindIssue, domain.RoundKindTransferIn:
			assigned += nonNegative(e.AssignedRounds)
		case domain.RoundKindConsume, domain.RoundKindTransferOut, domain.RoundKindReturn:
			consumed += nonNegative(e.ConsumedRounds)
		}
		if consumed > assigned {
			return apperr.Invariant("history prefix %d consumes %d of %d assigned rounds", i+1, consumed, assigned)
		}
	}
	return nil
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
