package followup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(t *testing.T, offsetDays int) *time.Time {
	t.Helper()
	d := Midnight(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)).AddDate(0, 0, offsetDays)
	return &d
}

func TestClassify_NoDate(t *testing.T) {
	today := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

	b := Classify(nil, 0, today)
	assert.Equal(t, TierUnscheduled, b.Tier)
	assert.Equal(t, "Schedule", b.Label)

	b = Classify(nil, 3, today)
	assert.Equal(t, TierOverdueWarning, b.Tier)
	assert.Equal(t, "3 missed", b.Label)
}

func TestClassify_DateBoundaries(t *testing.T) {
	today := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		offset    int
		wantTier  Tier
		wantLabel string
	}{
		{"yesterday", -1, TierOverdue, "1 days late"},
		{"a week late", -7, TierOverdue, "7 days late"},
		{"today", 0, TierToday, "Today"},
		{"tomorrow", 1, TierSoon, "1 days"},
		{"edge of soon window", 3, TierSoon, "3 days"},
		{"past soon window", 4, TierScheduled, "Jan 19"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Classify(date(t, tt.offset), 0, today)
			assert.Equal(t, tt.wantTier, b.Tier)
			assert.Equal(t, tt.wantLabel, b.Label)
		})
	}
}

func TestClassify_TimeOfDayIgnored(t *testing.T) {
	// A follow-up at 23:59 today is still "today" even late in the evening.
	next := time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC)
	today := time.Date(2024, 1, 15, 22, 0, 0, 0, time.UTC)

	b := Classify(&next, 0, today)
	assert.Equal(t, TierToday, b.Tier)
}

func TestClassify_MissedCountDoesNotOverrideDate(t *testing.T) {
	// With a date set, the date drives the tier regardless of prior misses.
	today := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	b := Classify(date(t, 10), 5, today)
	assert.Equal(t, TierScheduled, b.Tier)
}

func TestDaysUntil(t *testing.T) {
	today := time.Date(2024, 1, 15, 18, 45, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntil(time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC), today))
	assert.Equal(t, -14, DaysUntil(time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), today))
	assert.Equal(t, 16, DaysUntil(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), today))
}
