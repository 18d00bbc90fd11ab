package timesheet

import (
	"context"
	"strings"
	"time"

	"timeclock/internal/domain/auth"
	"timeclock/internal/domain/payrate"
)

// Actor identifies the caller of a ledger operation. Self-service operations
// require the actor to be the subject; kiosk-style delegation to another
// subject requires the admin role.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       string
}

func (a Actor) IsAdmin() bool {
	return a.Role == auth.RoleAdmin
}

func (a Actor) canActOn(employeeID string) bool {
	return a.EmployeeID == employeeID || a.IsAdmin()
}

// RateSource yields the effective rate for an employee.
type RateSource interface {
	Resolve(ctx context.Context, employeeID string) (payrate.Rate, error)
}

// VenueDirectory answers whether a venue exists and trades on a given day.
type VenueDirectory interface {
	Exists(ctx context.Context, venueID string) (bool, error)
	OpenOn(ctx context.Context, venueID string, day time.Time) (bool, error)
}

type Service struct {
	store  StoreAPI
	rates  RateSource
	venues VenueDirectory
	now    func() time.Time
}

func NewService(store StoreAPI, rates RateSource, venues VenueDirectory) *Service {
	return &Service{store: store, rates: rates, venues: venues, now: time.Now}
}

// ClockIn opens a new shift for the subject. The one-active-shift invariant is
// enforced by the store's conditional insert, not by a prior read.
func (s *Service) ClockIn(ctx context.Context, actor Actor, subjectID, venueID string) (Shift, error) {
	if !actor.canActOn(subjectID) {
		return Shift{}, ErrNotPermitted
	}

	exists, err := s.venues.Exists(ctx, venueID)
	if err != nil {
		return Shift{}, err
	}
	if !exists {
		return Shift{}, ErrVenueNotFound
	}

	now := s.now().UTC()
	open, err := s.venues.OpenOn(ctx, venueID, now)
	if err != nil {
		return Shift{}, err
	}
	if !open {
		return Shift{}, ErrVenueClosed
	}

	return s.store.CreateActive(ctx, subjectID, venueID, now)
}

func (s *Service) StartBreak(ctx context.Context, actor Actor, shiftID string) (Shift, error) {
	shift, err := s.store.GetByID(ctx, shiftID)
	if err != nil {
		return Shift{}, err
	}
	if !actor.canActOn(shift.EmployeeID) {
		return Shift{}, ErrNotPermitted
	}
	if shift.Status != StatusClockedIn {
		return Shift{}, ErrInvalidState
	}
	if shift.CurrentBreakStart != nil {
		return Shift{}, ErrBreakAlreadyOpen
	}

	if err := s.store.MarkOnBreak(ctx, shiftID, s.now().UTC()); err != nil {
		return Shift{}, err
	}
	return s.store.GetByID(ctx, shiftID)
}

func (s *Service) EndBreak(ctx context.Context, actor Actor, shiftID string) (Shift, error) {
	shift, err := s.store.GetByID(ctx, shiftID)
	if err != nil {
		return Shift{}, err
	}
	if !actor.canActOn(shift.EmployeeID) {
		return Shift{}, ErrNotPermitted
	}
	if shift.Status != StatusOnBreak {
		return Shift{}, ErrInvalidState
	}
	if shift.CurrentBreakStart == nil {
		return Shift{}, ErrBreakNotStarted
	}

	if err := s.store.CloseBreak(ctx, shiftID, s.now().UTC()); err != nil {
		return Shift{}, err
	}
	return s.store.GetByID(ctx, shiftID)
}

// ClockOut closes the subject's shift via the self-service path. An open break
// must be ended first; the admin path below may force through it.
func (s *Service) ClockOut(ctx context.Context, actor Actor, shiftID string) (Shift, error) {
	shift, err := s.store.GetByID(ctx, shiftID)
	if err != nil {
		return Shift{}, err
	}
	if !actor.canActOn(shift.EmployeeID) {
		return Shift{}, ErrNotPermitted
	}
	switch shift.Status {
	case StatusOnBreak:
		return Shift{}, ErrStillOnBreak
	case StatusCompleted:
		return Shift{}, ErrAlreadyCompleted
	}

	rate, err := s.rates.Resolve(ctx, shift.EmployeeID)
	if err != nil {
		return Shift{}, err
	}
	breaks, err := s.store.BreaksFor(ctx, shiftID)
	if err != nil {
		return Shift{}, err
	}

	clockOut := s.now().UTC()
	totals := ComputeShiftTotals(shift.ClockInTime, clockOut, breaks, rate.PaidBreakMinutes)

	if err := s.store.Complete(ctx, shiftID, clockOut, totals, shift.Notes, StatusClockedIn); err != nil {
		return Shift{}, err
	}
	return s.store.GetByID(ctx, shiftID)
}

// AdminClockOut force-closes a shift at an explicit time. It is the only path
// allowed to complete a shift directly from on_break: the open break is closed
// at the supplied clock-out time before totals are computed. Notes are
// appended, never replaced.
func (s *Service) AdminClockOut(ctx context.Context, actor Actor, shiftID string, clockOut time.Time, notes string) (Shift, error) {
	if !actor.IsAdmin() {
		return Shift{}, ErrNotPermitted
	}

	shift, err := s.store.GetByID(ctx, shiftID)
	if err != nil {
		return Shift{}, err
	}
	if shift.Status == StatusCompleted {
		return Shift{}, ErrAlreadyCompleted
	}
	clockOut = clockOut.UTC()
	if !clockOut.After(shift.ClockInTime) {
		return Shift{}, ErrInvalidRange
	}
	// The explicit time also closes any open break, so it cannot precede the
	// break's start.
	if shift.CurrentBreakStart != nil && !clockOut.After(*shift.CurrentBreakStart) {
		return Shift{}, ErrInvalidRange
	}

	rate, err := s.rates.Resolve(ctx, shift.EmployeeID)
	if err != nil {
		return Shift{}, err
	}
	breaks, err := s.store.BreaksFor(ctx, shiftID)
	if err != nil {
		return Shift{}, err
	}

	merged := appendNotes(shift.Notes, notes)

	if shift.Status == StatusOnBreak && shift.CurrentBreakStart != nil {
		breaks = append(breaks, Break{StartAt: *shift.CurrentBreakStart, EndAt: clockOut})
		totals := ComputeShiftTotals(shift.ClockInTime, clockOut, breaks, rate.PaidBreakMinutes)
		if err := s.store.CompleteFromBreak(ctx, shiftID, clockOut, totals, merged); err != nil {
			return Shift{}, err
		}
	} else {
		totals := ComputeShiftTotals(shift.ClockInTime, clockOut, breaks, rate.PaidBreakMinutes)
		if err := s.store.Complete(ctx, shiftID, clockOut, totals, merged, StatusClockedIn); err != nil {
			return Shift{}, err
		}
	}
	return s.store.GetByID(ctx, shiftID)
}

// CreateManualShift inserts an already-completed shift with no break history.
func (s *Service) CreateManualShift(ctx context.Context, actor Actor, employeeID, venueID string, clockIn, clockOut time.Time, notes string) (Shift, error) {
	if !actor.IsAdmin() {
		return Shift{}, ErrNotPermitted
	}
	clockIn, clockOut = clockIn.UTC(), clockOut.UTC()
	if !clockOut.After(clockIn) {
		return Shift{}, ErrInvalidRange
	}

	exists, err := s.venues.Exists(ctx, venueID)
	if err != nil {
		return Shift{}, err
	}
	if !exists {
		return Shift{}, ErrVenueNotFound
	}

	rate, err := s.rates.Resolve(ctx, employeeID)
	if err != nil {
		return Shift{}, err
	}
	totals := ComputeShiftTotals(clockIn, clockOut, nil, rate.PaidBreakMinutes)

	return s.store.InsertCompleted(ctx, employeeID, venueID,
		clockIn.Truncate(24*time.Hour), clockIn, clockOut, totals, notes)
}

// UpdateShift corrects a shift's boundary times or notes. When either boundary
// moves, totals are recomputed from the stored breaks and the current
// allowance.
func (s *Service) UpdateShift(ctx context.Context, actor Actor, shiftID string, clockIn, clockOut *time.Time, notes *string) (Shift, error) {
	if !actor.IsAdmin() {
		return Shift{}, ErrNotPermitted
	}

	shift, err := s.store.GetByID(ctx, shiftID)
	if err != nil {
		return Shift{}, err
	}
	if shift.ClockOutTime == nil {
		return Shift{}, ErrInvalidState
	}

	newIn, newOut := shift.ClockInTime, *shift.ClockOutTime
	boundaryChanged := false
	if clockIn != nil {
		newIn = clockIn.UTC()
		boundaryChanged = true
	}
	if clockOut != nil {
		newOut = clockOut.UTC()
		boundaryChanged = true
	}
	if !newOut.After(newIn) {
		return Shift{}, ErrInvalidRange
	}

	newNotes := shift.Notes
	if notes != nil {
		newNotes = *notes
	}

	totals := ShiftTotals{}
	if shift.TotalHours != nil {
		totals = ShiftTotals{
			TotalHours:        *shift.TotalHours,
			TotalPaidHours:    *shift.TotalPaidHours,
			TotalBreakMinutes: *shift.TotalBreakMinutes,
		}
	}
	if boundaryChanged {
		rate, err := s.rates.Resolve(ctx, shift.EmployeeID)
		if err != nil {
			return Shift{}, err
		}
		breaks, err := s.store.BreaksFor(ctx, shiftID)
		if err != nil {
			return Shift{}, err
		}
		totals = ComputeShiftTotals(newIn, newOut, breaks, rate.PaidBreakMinutes)
	}

	if err := s.store.UpdateCompleted(ctx, shiftID, newIn, newOut, totals, newNotes); err != nil {
		return Shift{}, err
	}
	return s.store.GetByID(ctx, shiftID)
}

func (s *Service) DeleteShift(ctx context.Context, actor Actor, shiftID string) error {
	if !actor.IsAdmin() {
		return ErrNotPermitted
	}
	return s.store.Delete(ctx, shiftID)
}

func (s *Service) GetShift(ctx context.Context, actor Actor, shiftID string) (Shift, error) {
	shift, err := s.store.GetByID(ctx, shiftID)
	if err != nil {
		return Shift{}, err
	}
	if !actor.canActOn(shift.EmployeeID) {
		return Shift{}, ErrNotPermitted
	}
	return shift, nil
}

func (s *Service) ActiveShift(ctx context.Context, actor Actor, subjectID string) (*Shift, error) {
	if !actor.canActOn(subjectID) {
		return nil, ErrNotPermitted
	}
	return s.store.ActiveFor(ctx, subjectID)
}

func (s *Service) ListShifts(ctx context.Context, actor Actor, filter ShiftFilter) ([]Shift, int, error) {
	if !actor.IsAdmin() {
		// non-admins only ever see their own shifts
		filter.EmployeeID = actor.EmployeeID
	}
	return s.store.List(ctx, filter)
}

func (s *Service) BreaksFor(ctx context.Context, actor Actor, shiftID string) ([]Break, error) {
	shift, err := s.store.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if !actor.canActOn(shift.EmployeeID) {
		return nil, ErrNotPermitted
	}
	return s.store.BreaksFor(ctx, shiftID)
}

// LongRunning surfaces active shifts open longer than the threshold. This is a
// data-quality report, not a concurrency mechanism.
func (s *Service) LongRunning(ctx context.Context, actor Actor, threshold time.Duration) ([]Shift, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotPermitted
	}
	return s.store.LongRunning(ctx, s.now().UTC().Add(-threshold))
}

func appendNotes(existing, extra string) string {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return existing
	}
	if existing == "" {
		return extra
	}
	return existing + "\n" + extra
}
