// Package venue is the boundary to venue management, which lives outside this
// service. The shift ledger only needs two facts: does the venue exist, and is
// it open on a given date.
package venue

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const StatusOpen = "open"

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Exists(ctx context.Context, venueID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM venues WHERE id = $1", venueID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// OpenOn reports whether the venue is open for business on the given date.
// Closed-day calendars are authored elsewhere; this is a read-only lookup.
func (s *Store) OpenOn(ctx context.Context, venueID string, day time.Time) (bool, error) {
	var status string
	var closedCount int
	err := s.DB.QueryRow(ctx, `
    SELECT v.status,
           (SELECT COUNT(1) FROM venue_closed_days c WHERE c.venue_id = v.id AND c.closed_on = $2)
    FROM venues v
    WHERE v.id = $1
  `, venueID, day.Format("2006-01-02")).Scan(&status, &closedCount)
	if err != nil {
		return false, err
	}
	return status == StatusOpen && closedCount == 0, nil
}
