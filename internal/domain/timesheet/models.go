package timesheet

import "time"

const (
	StatusClockedIn = "clocked_in"
	StatusOnBreak   = "on_break"
	StatusCompleted = "completed"
)

type Shift struct {
	ID                string     `json:"id"`
	EmployeeID        string     `json:"employeeId"`
	VenueID           string     `json:"venueId"`
	ShiftDate         time.Time  `json:"shiftDate"`
	ClockInTime       time.Time  `json:"clockInTime"`
	ClockOutTime      *time.Time `json:"clockOutTime"`
	CurrentBreakStart *time.Time `json:"currentBreakStart"`
	Status            string     `json:"status"`
	TotalHours        *float64   `json:"totalHours"`
	TotalPaidHours    *float64   `json:"totalPaidHours"`
	TotalBreakMinutes *int       `json:"totalBreakMinutes"`
	Notes             string     `json:"notes"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Break is a closed interval; open breaks live on the shift as
// CurrentBreakStart until they end.
type Break struct {
	ID      string    `json:"id"`
	ShiftID string    `json:"shiftId"`
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
}

type ShiftTotals struct {
	TotalHours        float64
	TotalPaidHours    float64
	TotalBreakMinutes int
}

type ShiftFilter struct {
	EmployeeID string
	VenueID    string
	From       *time.Time
	To         *time.Time
	Status     string
	Page       int
	PageSize   int
}
