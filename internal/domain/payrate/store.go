package payrate

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrDefaultMissing  = errors.New("default pay rate is not configured")
	ErrOverrideMissing = errors.New("employee has no pay rate override")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Default(ctx context.Context) (Rate, error) {
	var rate Rate
	err := s.DB.QueryRow(ctx, `
    SELECT weekday_rate, saturday_rate, sunday_rate, public_holiday_rate, paid_break_minutes
    FROM pay_rates
    WHERE is_default
  `).Scan(&rate.WeekdayRate, &rate.SaturdayRate, &rate.SundayRate, &rate.PublicHolidayRate, &rate.PaidBreakMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, ErrDefaultMissing
	}
	return rate, err
}

func (s *Store) UpdateDefault(ctx context.Context, rate Rate) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO pay_rates (is_default, weekday_rate, saturday_rate, sunday_rate, public_holiday_rate, paid_break_minutes)
    VALUES (true, $1, $2, $3, $4, $5)
    ON CONFLICT (is_default) WHERE is_default
    DO UPDATE SET weekday_rate = EXCLUDED.weekday_rate,
                  saturday_rate = EXCLUDED.saturday_rate,
                  sunday_rate = EXCLUDED.sunday_rate,
                  public_holiday_rate = EXCLUDED.public_holiday_rate,
                  paid_break_minutes = EXCLUDED.paid_break_minutes,
                  updated_at = now()
  `, rate.WeekdayRate, rate.SaturdayRate, rate.SundayRate, rate.PublicHolidayRate, rate.PaidBreakMinutes)
	return err
}

func (s *Store) OverrideFor(ctx context.Context, employeeID string) (*Override, error) {
	var override Override
	err := s.DB.QueryRow(ctx, `
    SELECT employee_id, weekday_rate, saturday_rate, sunday_rate, public_holiday_rate, paid_break_minutes, updated_at
    FROM pay_rates
    WHERE employee_id = $1
  `, employeeID).Scan(&override.EmployeeID, &override.WeekdayRate, &override.SaturdayRate, &override.SundayRate, &override.PublicHolidayRate, &override.PaidBreakMinutes, &override.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &override, nil
}

// UpsertOverride creates the employee's override on first customization and
// replaces it on subsequent edits.
func (s *Store) UpsertOverride(ctx context.Context, override Override) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO pay_rates (employee_id, weekday_rate, saturday_rate, sunday_rate, public_holiday_rate, paid_break_minutes)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (employee_id)
    DO UPDATE SET weekday_rate = EXCLUDED.weekday_rate,
                  saturday_rate = EXCLUDED.saturday_rate,
                  sunday_rate = EXCLUDED.sunday_rate,
                  public_holiday_rate = EXCLUDED.public_holiday_rate,
                  paid_break_minutes = EXCLUDED.paid_break_minutes,
                  updated_at = now()
  `, override.EmployeeID, override.WeekdayRate, override.SaturdayRate, override.SundayRate, override.PublicHolidayRate, override.PaidBreakMinutes)
	return err
}

// DeleteOverride reverts the employee fully to the default record.
func (s *Store) DeleteOverride(ctx context.Context, employeeID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM pay_rates WHERE employee_id = $1", employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOverrideMissing
	}
	return nil
}
