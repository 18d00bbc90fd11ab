package payroll

import (
	"time"

	"timeclock/internal/domain/payrate"
)

// Classify buckets a shift date. Public holidays win over the weekend, so a
// holiday on a Saturday is never double-counted as Saturday hours.
func Classify(day time.Time, isHoliday bool) string {
	if isHoliday {
		return CategoryPublicHoliday
	}
	switch day.Weekday() {
	case time.Sunday:
		return CategorySunday
	case time.Saturday:
		return CategorySaturday
	default:
		return CategoryWeekday
	}
}

// RateFor selects the hourly rate matching a category.
func RateFor(rate payrate.Rate, category string) float64 {
	switch category {
	case CategoryPublicHoliday:
		return rate.PublicHolidayRate
	case CategorySunday:
		return rate.SundayRate
	case CategorySaturday:
		return rate.SaturdayRate
	default:
		return rate.WeekdayRate
	}
}
