package payroll

import (
	"context"
	"errors"
	"time"

	"timeclock/internal/domain/payrate"
)

var ErrInvalidRange = errors.New("report end date must not be before start date")

// RateSource yields the effective rate for an employee.
type RateSource interface {
	Resolve(ctx context.Context, employeeID string) (payrate.Rate, error)
}

// HolidaySource yields the holiday date set for a range.
type HolidaySource interface {
	DatesBetween(ctx context.Context, from, to time.Time) (map[string]bool, error)
}

type Service struct {
	store    *Store
	rates    RateSource
	holidays HolidaySource
	now      func() time.Time
}

func NewService(store *Store, rates RateSource, holidays HolidaySource) *Service {
	return &Service{store: store, rates: rates, holidays: holidays, now: time.Now}
}

// Calculate builds the payroll report for the closed date range. Pure read:
// rates are resolved once per employee and holiday lookups are one query for
// the whole range, then everything folds through Aggregate.
func (s *Service) Calculate(ctx context.Context, from, to time.Time, employeeID string) (Report, error) {
	if to.Before(from) {
		return Report{}, ErrInvalidRange
	}

	shifts, err := s.store.CompletedShifts(ctx, from, to, employeeID)
	if err != nil {
		return Report{}, err
	}

	holidays, err := s.holidays.DatesBetween(ctx, from, to)
	if err != nil {
		return Report{}, err
	}

	rates := map[string]payrate.Rate{}
	for _, shift := range shifts {
		if _, ok := rates[shift.EmployeeID]; ok {
			continue
		}
		rate, err := s.rates.Resolve(ctx, shift.EmployeeID)
		if err != nil {
			return Report{}, err
		}
		rates[shift.EmployeeID] = rate
	}

	return Report{
		From:      from,
		To:        to,
		Items:     Aggregate(shifts, rates, holidays),
		Generated: s.now().UTC(),
	}, nil
}
