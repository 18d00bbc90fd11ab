package payrate

import "time"

// Rate is a fully resolved rate record: every field carries a value.
type Rate struct {
	WeekdayRate       float64 `json:"weekdayRate"`
	SaturdayRate      float64 `json:"saturdayRate"`
	SundayRate        float64 `json:"sundayRate"`
	PublicHolidayRate float64 `json:"publicHolidayRate"`
	PaidBreakMinutes  int     `json:"paidBreakMinutes"`
}

// Override is a per-employee partial record. A nil field means "fall back to
// the default for this field"; overrides are never all-or-nothing.
type Override struct {
	EmployeeID        string    `json:"employeeId"`
	WeekdayRate       *float64  `json:"weekdayRate"`
	SaturdayRate      *float64  `json:"saturdayRate"`
	SundayRate        *float64  `json:"sundayRate"`
	PublicHolidayRate *float64  `json:"publicHolidayRate"`
	PaidBreakMinutes  *int      `json:"paidBreakMinutes"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
