package payroll

import (
	"time"

	"timeclock/internal/domain/payrate"
)

// Aggregate folds completed shifts into one line item per employee, in
// first-seen order. rates maps employee id to the effective rate; holidays is
// the yyyy-mm-dd date set for the range. Pure function, safe to re-run.
func Aggregate(shifts []ReportShift, rates map[string]payrate.Rate, holidays map[string]bool) []LineItem {
	items := []LineItem{}
	index := map[string]int{}

	for _, shift := range shifts {
		i, seen := index[shift.EmployeeID]
		if !seen {
			i = len(items)
			index[shift.EmployeeID] = i
			items = append(items, LineItem{
				EmployeeID:   shift.EmployeeID,
				EmployeeName: shift.EmployeeName,
			})
		}

		category := Classify(shift.ShiftDate, holidays[dateKey(shift.ShiftDate)])
		rate := RateFor(rates[shift.EmployeeID], category)

		item := &items[i]
		switch category {
		case CategoryPublicHoliday:
			item.PublicHolidayHours += shift.TotalPaidHours
		case CategorySunday:
			item.SundayHours += shift.TotalPaidHours
		case CategorySaturday:
			item.SaturdayHours += shift.TotalPaidHours
		default:
			item.WeekdayHours += shift.TotalPaidHours
		}
		item.TotalHours += shift.TotalHours
		item.TotalPaidHours += shift.TotalPaidHours
		item.TotalPay += shift.TotalPaidHours * rate
		item.EntriesCount++
	}
	return items
}

func dateKey(day time.Time) string {
	return day.Format("2006-01-02")
}
