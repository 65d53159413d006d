package ledger

import (
	"testing"
	"time"

	"armory-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalizeLegacy(t *testing.T) {
	actor := uuid.New()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	entries, capped := NormalizeLegacy(LegacyRounds{Assigned: strPtr("100"), Consumed: strPtr("30")}, actor, date)
	require.Len(t, entries, 2)
	assert.Equal(t, 0, capped)
	assert.Equal(t, domain.RoundKindIssue, entries[0].Kind)
	assert.Equal(t, 100, entries[0].AssignedRounds)
	assert.Equal(t, domain.RoundKindConsume, entries[1].Kind)
	assert.Equal(t, 30, entries[1].ConsumedRounds)
	assert.Equal(t, LegacyImportReason, entries[0].Reason)

	totals := ComputeTotals(entries)
	assert.Equal(t, 70, totals.Available)
	require.NoError(t, CheckHistory(entries))
}

func TestNormalizeLegacy_MalformedValues(t *testing.T) {
	cases := []struct {
		name     string
		legacy   LegacyRounds
		assigned int
		entries  int
	}{
		{"nil fields", LegacyRounds{}, 0, 0},
		{"blank strings", LegacyRounds{Assigned: strPtr("  "), Consumed: strPtr("")}, 0, 0},
		{"junk", LegacyRounds{Assigned: strPtr("lots"), Consumed: strPtr("n/a")}, 0, 0},
		{"float string", LegacyRounds{Assigned: strPtr("40.0")}, 40, 1},
		{"negative treated as zero", LegacyRounds{Assigned: strPtr("-10")}, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries, _ := NormalizeLegacy(tc.legacy, uuid.New(), time.Now())
			assert.Len(t, entries, tc.entries)
			if tc.entries > 0 {
				assert.Equal(t, tc.assigned, entries[0].AssignedRounds)
			}
		})
	}
}

func TestNormalizeLegacy_ConsumedCappedAtAssigned(t *testing.T) {
	entries, capped := NormalizeLegacy(LegacyRounds{Assigned: strPtr("10"), Consumed: strPtr("25")}, uuid.New(), time.Now())
	require.Len(t, entries, 2)
	assert.Equal(t, 10, entries[1].ConsumedRounds)
	assert.Equal(t, 15, capped)
	require.NoError(t, CheckHistory(entries))
}
