package timesheet

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"timeclock/internal/domain/auth"
	"timeclock/internal/domain/payrate"
)

type fakeStore struct {
	shifts map[string]*Shift
	breaks map[string][]Break
	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{shifts: map[string]*Shift{}, breaks: map[string][]Break{}}
}

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("shift-%d", f.nextID)
}

func (f *fakeStore) CreateActive(_ context.Context, employeeID, venueID string, clockIn time.Time) (Shift, error) {
	for _, s := range f.shifts {
		if s.EmployeeID == employeeID && s.Status != StatusCompleted {
			return Shift{}, ErrShiftAlreadyActive
		}
	}
	shift := Shift{
		ID:          f.id(),
		EmployeeID:  employeeID,
		VenueID:     venueID,
		ShiftDate:   clockIn.Truncate(24 * time.Hour),
		ClockInTime: clockIn,
		Status:      StatusClockedIn,
	}
	f.shifts[shift.ID] = &shift
	return shift, nil
}

func (f *fakeStore) GetByID(_ context.Context, shiftID string) (Shift, error) {
	s, ok := f.shifts[shiftID]
	if !ok {
		return Shift{}, ErrShiftNotFound
	}
	return *s, nil
}

func (f *fakeStore) ActiveFor(_ context.Context, employeeID string) (*Shift, error) {
	for _, s := range f.shifts {
		if s.EmployeeID == employeeID && s.Status != StatusCompleted {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) MarkOnBreak(_ context.Context, shiftID string, startAt time.Time) error {
	s, ok := f.shifts[shiftID]
	if !ok || s.Status != StatusClockedIn {
		return ErrInvalidState
	}
	s.Status = StatusOnBreak
	s.CurrentBreakStart = &startAt
	return nil
}

func (f *fakeStore) CloseBreak(_ context.Context, shiftID string, endAt time.Time) error {
	s, ok := f.shifts[shiftID]
	if !ok {
		return ErrShiftNotFound
	}
	if s.Status != StatusOnBreak {
		return ErrInvalidState
	}
	if s.CurrentBreakStart == nil {
		return ErrBreakNotStarted
	}
	f.breaks[shiftID] = append(f.breaks[shiftID], Break{ShiftID: shiftID, StartAt: *s.CurrentBreakStart, EndAt: endAt})
	s.CurrentBreakStart = nil
	s.Status = StatusClockedIn
	return nil
}

func (f *fakeStore) BreaksFor(_ context.Context, shiftID string) ([]Break, error) {
	return f.breaks[shiftID], nil
}

func (f *fakeStore) Complete(_ context.Context, shiftID string, clockOut time.Time, totals ShiftTotals, notes string, expectStatus string) error {
	s, ok := f.shifts[shiftID]
	if !ok || s.Status != expectStatus {
		return ErrInvalidState
	}
	f.complete(s, clockOut, totals, notes)
	return nil
}

func (f *fakeStore) CompleteFromBreak(_ context.Context, shiftID string, clockOut time.Time, totals ShiftTotals, notes string) error {
	s, ok := f.shifts[shiftID]
	if !ok || s.Status != StatusOnBreak || s.CurrentBreakStart == nil {
		return ErrInvalidState
	}
	f.breaks[shiftID] = append(f.breaks[shiftID], Break{ShiftID: shiftID, StartAt: *s.CurrentBreakStart, EndAt: clockOut})
	f.complete(s, clockOut, totals, notes)
	return nil
}

func (f *fakeStore) complete(s *Shift, clockOut time.Time, totals ShiftTotals, notes string) {
	s.Status = StatusCompleted
	s.ClockOutTime = &clockOut
	s.CurrentBreakStart = nil
	s.TotalHours = &totals.TotalHours
	s.TotalPaidHours = &totals.TotalPaidHours
	s.TotalBreakMinutes = &totals.TotalBreakMinutes
	s.Notes = notes
}

func (f *fakeStore) InsertCompleted(_ context.Context, employeeID, venueID string, shiftDate, clockIn, clockOut time.Time, totals ShiftTotals, notes string) (Shift, error) {
	shift := Shift{
		ID:          f.id(),
		EmployeeID:  employeeID,
		VenueID:     venueID,
		ShiftDate:   shiftDate,
		ClockInTime: clockIn,
		Status:      StatusCompleted,
	}
	f.complete(&shift, clockOut, totals, notes)
	f.shifts[shift.ID] = &shift
	return shift, nil
}

func (f *fakeStore) UpdateCompleted(_ context.Context, shiftID string, clockIn, clockOut time.Time, totals ShiftTotals, notes string) error {
	s, ok := f.shifts[shiftID]
	if !ok {
		return ErrShiftNotFound
	}
	s.ClockInTime = clockIn
	s.ShiftDate = clockIn.Truncate(24 * time.Hour)
	f.complete(s, clockOut, totals, notes)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, shiftID string) error {
	if _, ok := f.shifts[shiftID]; !ok {
		return ErrShiftNotFound
	}
	delete(f.shifts, shiftID)
	return nil
}

func (f *fakeStore) List(_ context.Context, filter ShiftFilter) ([]Shift, int, error) {
	out := []Shift{}
	for _, s := range f.shifts {
		if filter.EmployeeID != "" && s.EmployeeID != filter.EmployeeID {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeStore) LongRunning(_ context.Context, olderThan time.Time) ([]Shift, error) {
	out := []Shift{}
	for _, s := range f.shifts {
		if s.Status != StatusCompleted && s.ClockInTime.Before(olderThan) {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeRates struct {
	rate payrate.Rate
}

func (f fakeRates) Resolve(context.Context, string) (payrate.Rate, error) {
	return f.rate, nil
}

type fakeVenues struct{}

func (fakeVenues) Exists(_ context.Context, venueID string) (bool, error) {
	return venueID == "venue-1", nil
}

func (fakeVenues) OpenOn(context.Context, string, time.Time) (bool, error) {
	return true, nil
}

func newTestService(store *fakeStore, at time.Time) *Service {
	svc := NewService(store, fakeRates{rate: payrate.Rate{WeekdayRate: 25, PaidBreakMinutes: 30}}, fakeVenues{})
	svc.now = func() time.Time { return at }
	return svc
}

var (
	selfActor  = Actor{UserID: "u1", EmployeeID: "e1", Role: auth.RoleTeamMember}
	adminActor = Actor{UserID: "u9", EmployeeID: "e9", Role: auth.RoleAdmin}
)

func TestClockInCreatesActiveShift(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, dayAt(9, 0))

	shift, err := svc.ClockIn(context.Background(), selfActor, "e1", "venue-1")
	if err != nil {
		t.Fatalf("clock-in failed: %v", err)
	}
	if shift.Status != StatusClockedIn {
		t.Fatalf("expected clocked_in status, got %s", shift.Status)
	}
}

func TestClockInRejectsSecondActiveShift(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, dayAt(9, 0))

	if _, err := svc.ClockIn(context.Background(), selfActor, "e1", "venue-1"); err != nil {
		t.Fatalf("first clock-in failed: %v", err)
	}
	if _, err := svc.ClockIn(context.Background(), selfActor, "e1", "venue-1"); !errors.Is(err, ErrShiftAlreadyActive) {
		t.Fatalf("expected ErrShiftAlreadyActive, got %v", err)
	}
}

func TestClockInForAnotherEmployeeRequiresAdmin(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, dayAt(9, 0))

	if _, err := svc.ClockIn(context.Background(), selfActor, "e2", "venue-1"); !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted for team member acting on another employee, got %v", err)
	}
	if _, err := svc.ClockIn(context.Background(), adminActor, "e2", "venue-1"); err != nil {
		t.Fatalf("expected admin kiosk clock-in to succeed, got %v", err)
	}
}

func TestClockInUnknownVenue(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, dayAt(9, 0))

	if _, err := svc.ClockIn(context.Background(), selfActor, "e1", "venue-404"); !errors.Is(err, ErrVenueNotFound) {
		t.Fatalf("expected ErrVenueNotFound, got %v", err)
	}
}

func TestBreakCycle(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, dayAt(9, 0))
	ctx := context.Background()

	shift, err := svc.ClockIn(ctx, selfActor, "e1", "venue-1")
	if err != nil {
		t.Fatalf("clock-in failed: %v", err)
	}

	svc.now = func() time.Time { return dayAt(12, 0) }
	onBreak, err := svc.StartBreak(ctx, selfActor, shift.ID)
	if err != nil {
		t.Fatalf("start break failed: %v", err)
	}
	if onBreak.Status != StatusOnBreak || onBreak.CurrentBreakStart == nil {
		t.Fatalf("expected on_break with open break start, got %+v", onBreak)
	}

	if _, err := svc.StartBreak(ctx, selfActor, shift.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState starting a break while on break, got %v", err)
	}

	svc.now = func() time.Time { return dayAt(12, 20) }
	back, err := svc.EndBreak(ctx, selfActor, shift.ID)
	if err != nil {
		t.Fatalf("end break failed: %v", err)
	}
	if back.Status != StatusClockedIn || back.CurrentBreakStart != nil {
		t.Fatalf("expected clocked_in with break cleared, got %+v", back)
	}

	if _, err := svc.EndBreak(ctx, selfActor, shift.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState ending a break while clocked in, got %v", err)
	}
}

func TestClockOutComputesTotals(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, dayAt(9, 0))
	ctx := context.Background()

	shift, _ := svc.ClockIn(ctx, selfActor, "e1", "venue-1")
	svc.now = func() time.Time { return dayAt(12, 0) }
	_, _ = svc.StartBreak(ctx, selfActor, shift.ID)
	svc.now = func() time.Time { return dayAt(13, 0) }
	_, _ = svc.EndBreak(ctx, selfActor, shift.ID)

	svc.now = func() time.Time { return dayAt(17, 0) }
	done, err := svc.ClockOut(ctx, selfActor, shift.ID)
	if err != nil {
		t.Fatalf("clock-out failed: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Fatalf("expected completed status, got %s", done.Status)
	}
	if *done.TotalHours != 8.0 || *done.TotalBreakMinutes != 60 || *done.TotalPaidHours != 7.5 {
		t.Fatalf("expected totals 8.0/60/7.5, got %v/%v/%v",
			*done.TotalHours, *done.TotalBreakMinutes, *done.TotalPaidHours)
	}

	if _, err := svc.ClockOut(ctx, selfActor, shift.ID); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted on repeat clock-out, got %v", err)
	}
}

func TestClockOutWhileOnBreak(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, dayAt(9, 0))
	ctx := context.Background()

	shift, _ := svc.ClockIn(ctx, selfActor, "e1", "venue-1")
	svc.now = func() time.Time { return dayAt(12, 0) }
	_, _ = svc.StartBreak(ctx, selfActor, shift.ID)

	if _, err := svc.ClockOut(ctx, selfActor, shift.ID); !errors.Is(err, ErrStillOnBreak) {
		t.Fatalf("expected ErrStillOnBreak, got %v", err)
	}
}

func TestAdminClockOutClosesOpenBreak(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, dayAt(9, 0))
	ctx := context.Background()

	shift, _ := svc.ClockIn(ctx, selfActor, "e1", "venue-1")
	svc.now = func() time.Time { return dayAt(12, 0) }
	_, _ = svc.StartBreak(ctx, selfActor, shift.ID)

	if _, err := svc.AdminClockOut(ctx, selfActor, shift.ID, dayAt(13, 0), ""); !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted for non-admin forced clock-out, got %v", err)
	}

	done, err := svc.AdminClockOut(ctx, adminActor, shift.ID, dayAt(13, 0), "left without clocking out")
	if err != nil {
		t.Fatalf("admin clock-out failed: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Fatalf("expected completed status, got %s", done.Status)
	}
	// 09:00-13:00 with the open break force-closed 12:00-13:00: 30 of the 60
	// break minutes are paid under the allowance.
	if *done.TotalHours != 4.0 || *done.TotalBreakMinutes != 60 || *done.TotalPaidHours != 3.5 {
		t.Fatalf("expected totals 4.0/60/3.5, got %v/%v/%v",
			*done.TotalHours, *done.TotalBreakMinutes, *done.TotalPaidHours)
	}
	if done.Notes != "left without clocking out" {
		t.Fatalf("expected appended note, got %q", done.Notes)
	}
}

func TestAdminClockOutRejectsTimeBeforeOpenBreak(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, dayAt(9, 0))
	ctx := context.Background()

	shift, _ := svc.ClockIn(ctx, selfActor, "e1", "venue-1")
	svc.now = func() time.Time { return dayAt(12, 0) }
	_, _ = svc.StartBreak(ctx, selfActor, shift.ID)

	if _, err := svc.AdminClockOut(ctx, adminActor, shift.ID, dayAt(11, 0), ""); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for clock-out before break start, got %v", err)
	}

	// The rejected call must not have closed the break or completed the shift.
	current, _ := store.GetByID(ctx, shift.ID)
	if current.Status != StatusOnBreak || current.CurrentBreakStart == nil {
		t.Fatalf("expected shift still on break, got %+v", current)
	}
	if breaks, _ := store.BreaksFor(ctx, shift.ID); len(breaks) != 0 {
		t.Fatalf("expected no stored break rows, got %d", len(breaks))
	}

	done, err := svc.AdminClockOut(ctx, adminActor, shift.ID, dayAt(13, 0), "")
	if err != nil {
		t.Fatalf("admin clock-out after break start failed: %v", err)
	}
	if *done.TotalBreakMinutes != 60 {
		t.Fatalf("expected 60 break minutes, got %v", *done.TotalBreakMinutes)
	}
}

func TestCreateManualShiftValidatesRange(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, dayAt(9, 0))
	ctx := context.Background()

	if _, err := svc.CreateManualShift(ctx, adminActor, "e1", "venue-1", dayAt(17, 0), dayAt(9, 0), ""); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	shift, err := svc.CreateManualShift(ctx, adminActor, "e1", "venue-1", dayAt(9, 0), dayAt(17, 0), "manual entry")
	if err != nil {
		t.Fatalf("manual shift failed: %v", err)
	}
	if *shift.TotalPaidHours != 8.0 {
		t.Fatalf("expected paid hours equal to gross with no breaks, got %v", *shift.TotalPaidHours)
	}
}

func TestUpdateShiftRecomputesTotals(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, dayAt(9, 0))
	ctx := context.Background()

	shift, _ := svc.CreateManualShift(ctx, adminActor, "e1", "venue-1", dayAt(9, 0), dayAt(17, 0), "")

	newOut := dayAt(18, 0)
	updated, err := svc.UpdateShift(ctx, adminActor, shift.ID, nil, &newOut, nil)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if *updated.TotalHours != 9.0 || *updated.TotalPaidHours != 9.0 {
		t.Fatalf("expected recomputed totals 9.0/9.0, got %v/%v", *updated.TotalHours, *updated.TotalPaidHours)
	}
}

func TestListShiftsScopedForTeamMembers(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, dayAt(9, 0))
	ctx := context.Background()

	_, _ = svc.CreateManualShift(ctx, adminActor, "e1", "venue-1", dayAt(9, 0), dayAt(17, 0), "")
	_, _ = svc.CreateManualShift(ctx, adminActor, "e2", "venue-1", dayAt(9, 0), dayAt(17, 0), "")

	shifts, _, err := svc.ListShifts(ctx, selfActor, ShiftFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, s := range shifts {
		if s.EmployeeID != "e1" {
			t.Fatalf("team member list leaked shift for %s", s.EmployeeID)
		}
	}
}
