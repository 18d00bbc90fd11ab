package holiday

import "time"

// NextOccurrence returns the same calendar day in the following year.
// Feb 29 normalizes forward to Mar 1 in non-leap years, matching time.Date
// semantics.
func NextOccurrence(day time.Time) time.Time {
	return time.Date(day.Year()+1, day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}
