package payroll

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

var exportHeader = []string{
	"employee", "weekday_hours", "saturday_hours", "sunday_hours",
	"public_holiday_hours", "total_paid_hours", "total_pay", "shift_count",
}

// WriteCSV renders the report as a flat register, one row per employee.
func WriteCSV(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, item := range report.Items {
		row := []string{
			item.EmployeeName,
			formatHours(item.WeekdayHours),
			formatHours(item.SaturdayHours),
			formatHours(item.SundayHours),
			formatHours(item.PublicHolidayHours),
			formatHours(item.TotalPaidHours),
			fmt.Sprintf("%.2f", item.TotalPay),
			fmt.Sprintf("%d", item.EntriesCount),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePDF renders the report as a one-page-per-overflow table.
func WritePDF(w io.Writer, report Report) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payroll Report")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s",
		report.From.Format("2006-01-02"), report.To.Format("2006-01-02")))
	pdf.Ln(10)

	widths := []float64{60, 28, 28, 28, 32, 30, 30, 24}
	pdf.SetFont("Helvetica", "B", 10)
	headers := []string{"Employee", "Weekday", "Saturday", "Sunday", "Pub. Holiday", "Paid Hours", "Total Pay", "Shifts"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range report.Items {
		cells := []string{
			item.EmployeeName,
			formatHours(item.WeekdayHours),
			formatHours(item.SaturdayHours),
			formatHours(item.SundayHours),
			formatHours(item.PublicHolidayHours),
			formatHours(item.TotalPaidHours),
			fmt.Sprintf("%.2f", item.TotalPay),
			fmt.Sprintf("%d", item.EntriesCount),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 8, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}
