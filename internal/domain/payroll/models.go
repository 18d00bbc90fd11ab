package payroll

import "time"

const (
	CategoryWeekday       = "weekday"
	CategorySaturday      = "saturday"
	CategorySunday        = "sunday"
	CategoryPublicHoliday = "public_holiday"
)

// ReportShift is the slice of a completed shift the aggregator needs.
type ReportShift struct {
	ShiftID        string
	EmployeeID     string
	EmployeeName   string
	ShiftDate      time.Time
	TotalHours     float64
	TotalPaidHours float64
}

// LineItem is one employee's payroll summary over a report range. Derived
// output, never persisted.
type LineItem struct {
	EmployeeID         string  `json:"employeeId"`
	EmployeeName       string  `json:"employeeName"`
	WeekdayHours       float64 `json:"weekdayHours"`
	SaturdayHours      float64 `json:"saturdayHours"`
	SundayHours        float64 `json:"sundayHours"`
	PublicHolidayHours float64 `json:"publicHolidayHours"`
	TotalHours         float64 `json:"totalHours"`
	TotalPaidHours     float64 `json:"totalPaidHours"`
	TotalPay           float64 `json:"totalPay"`
	EntriesCount       int     `json:"entriesCount"`
}

type Report struct {
	From      time.Time  `json:"from"`
	To        time.Time  `json:"to"`
	Items     []LineItem `json:"items"`
	Generated time.Time  `json:"generated"`
}
