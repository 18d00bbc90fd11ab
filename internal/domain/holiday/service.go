package holiday

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, holidayOn time.Time, name string, isRecurring bool) (Holiday, error) {
	name = strings.TrimSpace(name)
	return s.store.Create(ctx, holidayOn, name, isRecurring)
}

func (s *Service) Get(ctx context.Context, id string) (Holiday, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	return s.store.List(ctx, from, to)
}

func (s *Service) IsHoliday(ctx context.Context, day time.Time) (bool, error) {
	return s.store.IsHoliday(ctx, day)
}

func (s *Service) DatesBetween(ctx context.Context, from, to time.Time) (map[string]bool, error) {
	return s.store.DatesBetween(ctx, from, to)
}

func (s *Service) MaterializeYear(ctx context.Context, year int) (int, error) {
	return s.store.MaterializeYear(ctx, year)
}
