package timesheet

import "time"

// ComputeShiftTotals turns a shift's boundary times, its closed breaks and the
// paid break allowance into the stored totals.
//
// Gross hours are wall time between clock-in and clock-out; break time is not
// subtracted from the gross figure. Break minutes up to the allowance stay
// paid, only the excess is deducted from paid hours.
func ComputeShiftTotals(clockIn, clockOut time.Time, breaks []Break, paidBreakMinutes int) ShiftTotals {
	breakMinutes := 0
	for _, b := range breaks {
		breakMinutes += int(b.EndAt.Sub(b.StartAt).Minutes())
	}

	totalHours := clockOut.Sub(clockIn).Hours()

	unpaidMinutes := breakMinutes - paidBreakMinutes
	if unpaidMinutes < 0 {
		unpaidMinutes = 0
	}

	paidHours := totalHours - float64(unpaidMinutes)/60
	if paidHours < 0 {
		paidHours = 0
	}

	return ShiftTotals{
		TotalHours:        totalHours,
		TotalPaidHours:    paidHours,
		TotalBreakMinutes: breakMinutes,
	}
}
