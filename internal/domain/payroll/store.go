package payroll

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// CompletedShifts lists payable shifts in the closed date range, oldest first
// so aggregation order is stable. employeeID narrows to one employee when set.
func (s *Store) CompletedShifts(ctx context.Context, from, to time.Time, employeeID string) ([]ReportShift, error) {
	query := `
    SELECT s.id, s.employee_id, tm.first_name || ' ' || tm.last_name,
           s.shift_date, s.total_hours, s.total_paid_hours
    FROM shifts s
    JOIN team_members tm ON tm.id = s.employee_id
    WHERE s.status = 'completed'
      AND s.total_paid_hours IS NOT NULL
      AND s.shift_date >= $1 AND s.shift_date <= $2`
	args := []any{from, to}
	if employeeID != "" {
		query += " AND s.employee_id = $3"
		args = append(args, employeeID)
	}
	query += " ORDER BY s.shift_date, s.clock_in"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := []ReportShift{}
	for rows.Next() {
		var sh ReportShift
		if err := rows.Scan(&sh.ShiftID, &sh.EmployeeID, &sh.EmployeeName,
			&sh.ShiftDate, &sh.TotalHours, &sh.TotalPaidHours); err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}
