package payrate

import "context"

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Default(ctx context.Context) (Rate, error) {
	return s.store.Default(ctx)
}

func (s *Service) UpdateDefault(ctx context.Context, rate Rate) error {
	return s.store.UpdateDefault(ctx, rate)
}

func (s *Service) OverrideFor(ctx context.Context, employeeID string) (*Override, error) {
	return s.store.OverrideFor(ctx, employeeID)
}

func (s *Service) UpsertOverride(ctx context.Context, override Override) error {
	return s.store.UpsertOverride(ctx, override)
}

func (s *Service) DeleteOverride(ctx context.Context, employeeID string) error {
	return s.store.DeleteOverride(ctx, employeeID)
}

// Resolve returns the employee's effective rate: the default record with the
// employee's override applied field by field. Resolution always reads the
// current records; completed shifts are not repriced when rates change later.
func (s *Service) Resolve(ctx context.Context, employeeID string) (Rate, error) {
	def, err := s.store.Default(ctx)
	if err != nil {
		return Rate{}, err
	}
	override, err := s.store.OverrideFor(ctx, employeeID)
	if err != nil {
		return Rate{}, err
	}
	return Merge(def, override), nil
}
