package alerts

import "time"

// QuietHours is a daily window, in local hours, during which non-severe cold
// alerts are suppressed. Start is inclusive and End exclusive. A window with
// Start > End wraps past midnight (23-6 covers 23:00 to 05:59); Start == End
// disables it.
//
// Only the wrapping case matches the earlier cron script's check of
// hour >= Start || hour < End. Under that check Start == End was quiet all
// day and a Start < End window such as 1-5 was quiet at every hour; here the
// former is off and the latter is the plain range 01:00 to 04:59.
type QuietHours struct {
	Start int
	End   int
}

// Enabled reports whether the window covers any hour.
func (q QuietHours) Enabled() bool {
	return q.Start != q.End
}

// IsQuiet reports whether hour (0-23) falls inside the window.
func (q QuietHours) IsQuiet(hour int) bool {
	switch {
	case q.Start == q.End:
		return false
	case q.Start > q.End:
		return hour >= q.Start || hour < q.End
	default:
		return hour >= q.Start && hour < q.End
	}
}

// ActiveAt reports whether t, converted to zone, is inside the window.
func (q QuietHours) ActiveAt(t time.Time, zone *time.Location) bool {
	if zone != nil {
		t = t.In(zone)
	}
	return q.IsQuiet(t.Hour())
}
