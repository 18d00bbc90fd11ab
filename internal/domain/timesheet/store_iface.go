package timesheet

import (
	"context"
	"time"
)

// StoreAPI is the persistence contract the service depends on. The pgx store
// implements it; tests substitute an in-memory fake.
type StoreAPI interface {
	// CreateActive inserts a new clocked-in shift, returning
	// ErrShiftAlreadyActive when the employee already holds an active one.
	// The check and the insert are a single atomic write.
	CreateActive(ctx context.Context, employeeID, venueID string, clockIn time.Time) (Shift, error)

	GetByID(ctx context.Context, shiftID string) (Shift, error)
	ActiveFor(ctx context.Context, employeeID string) (*Shift, error)

	// MarkOnBreak transitions clocked_in -> on_break, conditionally on the
	// current status.
	MarkOnBreak(ctx context.Context, shiftID string, startAt time.Time) error
	// CloseBreak appends the open break as a closed row and transitions
	// on_break -> clocked_in in one transaction.
	CloseBreak(ctx context.Context, shiftID string, endAt time.Time) error

	BreaksFor(ctx context.Context, shiftID string) ([]Break, error)

	// Complete transitions expectStatus -> completed, writing clock-out time,
	// totals and notes, conditionally on the current status.
	Complete(ctx context.Context, shiftID string, clockOut time.Time, totals ShiftTotals, notes string, expectStatus string) error
	// CompleteFromBreak closes the open break at the supplied clock-out time
	// and completes the shift in one transaction.
	CompleteFromBreak(ctx context.Context, shiftID string, clockOut time.Time, totals ShiftTotals, notes string) error

	InsertCompleted(ctx context.Context, employeeID, venueID string, shiftDate, clockIn, clockOut time.Time, totals ShiftTotals, notes string) (Shift, error)
	UpdateCompleted(ctx context.Context, shiftID string, clockIn, clockOut time.Time, totals ShiftTotals, notes string) error
	Delete(ctx context.Context, shiftID string) error

	List(ctx context.Context, filter ShiftFilter) ([]Shift, int, error)
	LongRunning(ctx context.Context, olderThan time.Time) ([]Shift, error)
}
