package ledger

import (
	"strconv"
	"strings"
	"time"

	"armory-backend/internal/domain"

	"github.com/google/uuid"
)

// LegacyImportReason marks synthetic entries produced from pre-migration
// flat totals.
const LegacyImportReason = "legacy import"

// LegacyRounds are the flat totals the old system stored directly on the
// record (or on the employee, in the oldest data). The columns were
// free-typed, so values arrive as strings and may be blank or garbage.
type LegacyRounds struct {
	Assigned *string
	Consumed *string
}

// Empty reports whether there is nothing to normalize.
func (l LegacyRounds) Empty() bool {
	return parseLegacyInt(l.Assigned) == 0 && parseLegacyInt(l.Consumed) == 0
}

// NormalizeLegacy converts flat legacy totals into synthetic ledger entries:
// one issue for the assigned total and, if anything was consumed, one consume
// entry (shells were never tracked in the old system). Malformed values count
// as zero. A consumed total exceeding the assigned total is capped at the
// assigned total so the synthetic history satisfies the prefix invariant;
// capped reports how many rounds were dropped, for the caller to log.
func NormalizeLegacy(l LegacyRounds, actor uuid.UUID, date time.Time) (entries []domain.RoundEntry, capped int) {
	assigned := parseLegacyInt(l.Assigned)
	consumed := parseLegacyInt(l.Consumed)
	if assigned <= 0 && consumed <= 0 {
		return nil, 0
	}
	if consumed > assigned {
		capped = consumed - assigned
		consumed = assigned
	}
	entries = []domain.RoundEntry{{
		Kind:           domain.RoundKindIssue,
		AssignedRounds: assigned,
		Reason:         LegacyImportReason,
		EntryDate:      date,
		ActorID:        actor,
	}}
	if consumed > 0 {
		entries = append(entries, domain.RoundEntry{
			Kind:           domain.RoundKindConsume,
			ConsumedRounds: consumed,
			Reason:         LegacyImportReason,
			EntryDate:      date,
			ActorID:        actor,
		})
	}
	return entries, capped
}

// parseLegacyInt accepts the shapes the old data actually contains: ints,
// "30", "30.0", blanks, and junk. Anything unparseable or negative is zero.
func parseLegacyInt(s *string) int {
	if s == nil {
		return 0
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		if f < 0 {
			return 0
		}
		return int(f)
	}
	return 0
}
