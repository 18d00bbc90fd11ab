package timesheet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

var _ StoreAPI = (*Store)(nil)

const shiftColumns = `
  id, employee_id, venue_id, shift_date, clock_in, clock_out,
  current_break_start, status, total_hours, total_paid_hours,
  total_break_minutes, notes, created_at, updated_at`

func scanShift(row pgx.Row) (Shift, error) {
	var s Shift
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.VenueID, &s.ShiftDate, &s.ClockInTime,
		&s.ClockOutTime, &s.CurrentBreakStart, &s.Status, &s.TotalHours,
		&s.TotalPaidHours, &s.TotalBreakMinutes, &s.Notes, &s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// CreateActive relies on the partial unique index over active shifts: the
// conflicting insert produces no row, which maps to ErrShiftAlreadyActive
// without a separate existence query.
func (s *Store) CreateActive(ctx context.Context, employeeID, venueID string, clockIn time.Time) (Shift, error) {
	shift, err := scanShift(s.DB.QueryRow(ctx, `
    INSERT INTO shifts (employee_id, venue_id, shift_date, clock_in, status)
    VALUES ($1, $2, $3, $4, '`+StatusClockedIn+`')
    ON CONFLICT (employee_id) WHERE status IN ('clocked_in', 'on_break')
    DO NOTHING
    RETURNING`+shiftColumns,
		employeeID, venueID, clockIn.Truncate(24*time.Hour), clockIn))
	if errors.Is(err, pgx.ErrNoRows) {
		return Shift{}, ErrShiftAlreadyActive
	}
	return shift, err
}

func (s *Store) GetByID(ctx context.Context, shiftID string) (Shift, error) {
	shift, err := scanShift(s.DB.QueryRow(ctx,
		"SELECT"+shiftColumns+" FROM shifts WHERE id = $1", shiftID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Shift{}, ErrShiftNotFound
	}
	return shift, err
}

func (s *Store) ActiveFor(ctx context.Context, employeeID string) (*Shift, error) {
	shift, err := scanShift(s.DB.QueryRow(ctx, `
    SELECT`+shiftColumns+`
    FROM shifts
    WHERE employee_id = $1 AND status IN ('clocked_in', 'on_break')`,
		employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (s *Store) MarkOnBreak(ctx context.Context, shiftID string, startAt time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE shifts
    SET status = $2, current_break_start = $3, updated_at = now()
    WHERE id = $1 AND status = $4
  `, shiftID, StatusOnBreak, startAt, StatusClockedIn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

func (s *Store) CloseBreak(ctx context.Context, shiftID string, endAt time.Time) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var breakStart *time.Time
	var status string
	err = tx.QueryRow(ctx,
		"SELECT current_break_start, status FROM shifts WHERE id = $1 FOR UPDATE", shiftID,
	).Scan(&breakStart, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrShiftNotFound
	}
	if err != nil {
		return err
	}
	if status != StatusOnBreak {
		return ErrInvalidState
	}
	if breakStart == nil {
		return ErrBreakNotStarted
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO shift_breaks (shift_id, break_start, break_end) VALUES ($1, $2, $3)",
		shiftID, *breakStart, endAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE shifts
    SET status = $2, current_break_start = NULL, updated_at = now()
    WHERE id = $1
  `, shiftID, StatusClockedIn); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) BreaksFor(ctx context.Context, shiftID string) ([]Break, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, shift_id, break_start, break_end
    FROM shift_breaks
    WHERE shift_id = $1
    ORDER BY break_start
  `, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breaks := []Break{}
	for rows.Next() {
		var b Break
		if err := rows.Scan(&b.ID, &b.ShiftID, &b.StartAt, &b.EndAt); err != nil {
			return nil, err
		}
		breaks = append(breaks, b)
	}
	return breaks, rows.Err()
}

func (s *Store) Complete(ctx context.Context, shiftID string, clockOut time.Time, totals ShiftTotals, notes string, expectStatus string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE shifts
    SET status = $2, clock_out = $3, total_hours = $4,
        total_paid_hours = $5, total_break_minutes = $6, notes = $7,
        current_break_start = NULL, updated_at = now()
    WHERE id = $1 AND status = $8
  `, shiftID, StatusCompleted, clockOut, totals.TotalHours,
		totals.TotalPaidHours, totals.TotalBreakMinutes, notes, expectStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

func (s *Store) CompleteFromBreak(ctx context.Context, shiftID string, clockOut time.Time, totals ShiftTotals, notes string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var breakStart *time.Time
	var status string
	err = tx.QueryRow(ctx,
		"SELECT current_break_start, status FROM shifts WHERE id = $1 FOR UPDATE", shiftID,
	).Scan(&breakStart, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrShiftNotFound
	}
	if err != nil {
		return err
	}
	if status != StatusOnBreak || breakStart == nil {
		return ErrInvalidState
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO shift_breaks (shift_id, break_start, break_end) VALUES ($1, $2, $3)",
		shiftID, *breakStart, clockOut); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE shifts
    SET status = $2, clock_out = $3, total_hours = $4,
        total_paid_hours = $5, total_break_minutes = $6, notes = $7,
        current_break_start = NULL, updated_at = now()
    WHERE id = $1
  `, shiftID, StatusCompleted, clockOut, totals.TotalHours,
		totals.TotalPaidHours, totals.TotalBreakMinutes, notes); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) InsertCompleted(ctx context.Context, employeeID, venueID string, shiftDate, clockIn, clockOut time.Time, totals ShiftTotals, notes string) (Shift, error) {
	return scanShift(s.DB.QueryRow(ctx, `
    INSERT INTO shifts (
      employee_id, venue_id, shift_date, clock_in, clock_out,
      status, total_hours, total_paid_hours, total_break_minutes, notes
    )
    VALUES ($1, $2, $3, $4, $5, '`+StatusCompleted+`', $6, $7, $8, $9)
    RETURNING`+shiftColumns,
		employeeID, venueID, shiftDate, clockIn, clockOut,
		totals.TotalHours, totals.TotalPaidHours, totals.TotalBreakMinutes, notes))
}

func (s *Store) UpdateCompleted(ctx context.Context, shiftID string, clockIn, clockOut time.Time, totals ShiftTotals, notes string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE shifts
    SET clock_in = $2, clock_out = $3, shift_date = $4,
        total_hours = $5, total_paid_hours = $6, total_break_minutes = $7,
        notes = $8, updated_at = now()
    WHERE id = $1
  `, shiftID, clockIn, clockOut, clockIn.Truncate(24*time.Hour),
		totals.TotalHours, totals.TotalPaidHours, totals.TotalBreakMinutes, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrShiftNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, shiftID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM shifts WHERE id = $1", shiftID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrShiftNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, filter ShiftFilter) ([]Shift, int, error) {
	where := []string{"1=1"}
	args := []any{}
	idx := 1

	add := func(clause string, value any) {
		where = append(where, fmt.Sprintf(clause, idx))
		args = append(args, value)
		idx++
	}

	if filter.EmployeeID != "" {
		add("employee_id = $%d", filter.EmployeeID)
	}
	if filter.VenueID != "" {
		add("venue_id = $%d", filter.VenueID)
	}
	if filter.From != nil {
		add("shift_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("shift_date <= $%d", *filter.To)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}

	clause := strings.Join(where, " AND ")

	var total int
	if err := s.DB.QueryRow(ctx,
		"SELECT COUNT(*) FROM shifts WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT" + shiftColumns + " FROM shifts WHERE " + clause +
		" ORDER BY clock_in DESC"
	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.PageSize, offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	shifts := []Shift{}
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, 0, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, total, rows.Err()
}

// LongRunning lists active shifts whose clock-in is older than the cutoff, the
// data-quality scan behind the stale-shift report and job.
func (s *Store) LongRunning(ctx context.Context, olderThan time.Time) ([]Shift, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+shiftColumns+`
    FROM shifts
    WHERE status IN ('clocked_in', 'on_break') AND clock_in < $1
    ORDER BY clock_in
  `, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := []Shift{}
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}
