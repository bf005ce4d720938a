package followup

import (
	"fmt"
	"time"
)

// Tier is the display urgency of a proposal's follow-up state.
type Tier string

const (
	TierUnscheduled    Tier = "unscheduled"     // no date, nothing missed
	TierOverdueWarning Tier = "overdue-warning" // no date, but misses on record
	TierOverdue        Tier = "overdue"         // date in the past
	TierToday          Tier = "today"
	TierSoon           Tier = "soon" // within the next 3 days
	TierScheduled      Tier = "scheduled"
)

// Badge is the classification result rendered next to a proposal.
type Badge struct {
	Tier  Tier   `json:"tier"`
	Label string `json:"label"`
}

// soonWindowDays is how far out a follow-up still counts as "soon".
const soonWindowDays = 3

// Classify maps a follow-up date and missed count to a display badge.
// Rules are evaluated in order against today's date; both dates are
// truncated to midnight so the time of day never shifts the tier.
func Classify(next *time.Time, missedCount int, today time.Time) Badge {
	if next == nil {
		if missedCount > 0 {
			return Badge{Tier: TierOverdueWarning, Label: fmt.Sprintf("%d missed", missedCount)}
		}
		return Badge{Tier: TierUnscheduled, Label: "Schedule"}
	}

	days := DaysUntil(*next, today)
	switch {
	case days < 0:
		return Badge{Tier: TierOverdue, Label: fmt.Sprintf("%d days late", -days)}
	case days == 0:
		return Badge{Tier: TierToday, Label: "Today"}
	case days <= soonWindowDays:
		return Badge{Tier: TierSoon, Label: fmt.Sprintf("%d days", days)}
	default:
		return Badge{Tier: TierScheduled, Label: next.Format("Jan 2")}
	}
}

// DaysUntil returns the whole-day difference between date and today,
// negative when date is in the past.
func DaysUntil(date, today time.Time) int {
	d := Midnight(date)
	t := Midnight(today)
	return int(d.Sub(t).Hours() / 24)
}

// Midnight truncates a timestamp to 00:00 in its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
