package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinica/clinica/internal/platform/httperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the account's active patients, filtered by term when one
// is given. Ordering is family name then given name either way.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, term string) ([]*Patient, error) {
	if term != "" {
		return s.repo.Search(ctx, accountID, term)
	}
	return s.repo.ListActive(ctx, accountID)
}

func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*Patient, error) {
	return s.repo.FindByID(ctx, accountID, id)
}

func (s *Service) GetByNationalID(ctx context.Context, accountID uuid.UUID, nid string) (*Patient, error) {
	return s.repo.FindByNationalID(ctx, accountID, nid)
}

func (s *Service) Create(ctx context.Context, accountID uuid.UUID, p *Patient) (*Patient, error) {
	p.Normalize()
	if p.FirstName == "" || p.LastName == "" {
		return nil, fmt.Errorf("first_name and last_name are required: %w", httperr.ErrValidation)
	}
	if err := s.repo.Create(ctx, accountID, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateMinimal registers a patient from just the name pair, as done
// when turning a walk-in appointment into a chart.
func (s *Service) CreateMinimal(ctx context.Context, accountID uuid.UUID, firstName, lastName string) (*Patient, error) {
	return s.Create(ctx, accountID, &Patient{FirstName: firstName, LastName: lastName})
}

// Update replaces every business field of an active patient.
func (s *Service) Update(ctx context.Context, accountID, id uuid.UUID, p *Patient) (*Patient, error) {
	p.Normalize()
	if p.FirstName == "" || p.LastName == "" {
		return nil, fmt.Errorf("first_name and last_name are required: %w", httperr.ErrValidation)
	}
	p.ID = id
	if err := s.repo.Update(ctx, accountID, p); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, accountID, id)
}

// Delete flips the active flag. History referencing the patient stays.
func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, accountID, id)
}
