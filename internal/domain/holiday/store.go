package holiday

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, holidayOn time.Time, name string, isRecurring bool) (Holiday, error) {
	var h Holiday
	err := s.DB.QueryRow(ctx, `
    INSERT INTO public_holidays (holiday_on, name, is_recurring)
    VALUES ($1, $2, $3)
    RETURNING id, holiday_on, name, is_recurring, created_at
  `, holidayOn, name, isRecurring).Scan(&h.ID, &h.HolidayOn, &h.Name, &h.IsRecurring, &h.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Holiday{}, ErrDuplicateDate
	}
	return h, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM public_holidays WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrHolidayNotFound
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (Holiday, error) {
	var h Holiday
	err := s.DB.QueryRow(ctx, `
    SELECT id, holiday_on, name, is_recurring, created_at
    FROM public_holidays
    WHERE id = $1
  `, id).Scan(&h.ID, &h.HolidayOn, &h.Name, &h.IsRecurring, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Holiday{}, ErrHolidayNotFound
	}
	return h, err
}

func (s *Store) List(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, holiday_on, name, is_recurring, created_at
    FROM public_holidays
    WHERE holiday_on >= $1 AND holiday_on <= $2
    ORDER BY holiday_on
  `, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := []Holiday{}
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.HolidayOn, &h.Name, &h.IsRecurring, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// IsHoliday is an exact-date membership check.
func (s *Store) IsHoliday(ctx context.Context, day time.Time) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM public_holidays WHERE holiday_on = $1)", day,
	).Scan(&exists)
	return exists, err
}

// DatesBetween returns the set of holiday dates in the closed range, keyed by
// the yyyy-mm-dd form so callers can probe without timezone drift.
func (s *Store) DatesBetween(ctx context.Context, from, to time.Time) (map[string]bool, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT holiday_on FROM public_holidays WHERE holiday_on >= $1 AND holiday_on <= $2", from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := map[string]bool{}
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		dates[day.Format("2006-01-02")] = true
	}
	return dates, rows.Err()
}

// MaterializeYear inserts next-year rows for every recurring holiday in the
// given year, skipping dates that already have an entry. Occurrence dates come
// from NextOccurrence, so Feb 29 rolls forward to Mar 1 in non-leap years.
// Returns how many rows were created.
func (s *Store) MaterializeYear(ctx context.Context, year int) (int, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT holiday_on, name
    FROM public_holidays
    WHERE is_recurring AND EXTRACT(YEAR FROM holiday_on) = $1
  `, year)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var sources []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.HolidayOn, &h.Name); err != nil {
			return 0, err
		}
		sources = append(sources, h)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	created := 0
	for _, h := range sources {
		tag, err := s.DB.Exec(ctx, `
      INSERT INTO public_holidays (holiday_on, name, is_recurring)
      VALUES ($1, $2, true)
      ON CONFLICT (holiday_on) DO NOTHING
    `, NextOccurrence(h.HolidayOn), h.Name)
		if err != nil {
			return 0, err
		}
		created += int(tag.RowsAffected())
	}
	return created, nil
}
