package timesheet

import "errors"

var (
	ErrShiftNotFound      = errors.New("shift not found")
	ErrShiftAlreadyActive = errors.New("employee already has an active shift")
	ErrInvalidState       = errors.New("shift is not in a valid state for this operation")
	ErrStillOnBreak       = errors.New("shift is on break; end the break before clocking out")
	ErrAlreadyCompleted   = errors.New("shift is already completed")
	ErrBreakAlreadyOpen   = errors.New("a break is already open on this shift")
	ErrBreakNotStarted    = errors.New("no break is open on this shift")
	ErrInvalidRange       = errors.New("clock-out must be after clock-in")
	ErrVenueNotFound      = errors.New("venue not found")
	ErrVenueClosed        = errors.New("venue is closed on this date")
	ErrNotPermitted       = errors.New("not permitted to act on this employee's shift")
)
