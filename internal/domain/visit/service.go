package visit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinica/clinica/internal/platform/httperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*Visit, error) {
	return s.repo.ListAll(ctx, accountID)
}

func (s *Service) ListByDate(ctx context.Context, accountID uuid.UUID, date time.Time) ([]*Visit, error) {
	return s.repo.ListByDate(ctx, accountID, date)
}

func (s *Service) ListByPatient(ctx context.Context, accountID, patientID uuid.UUID) ([]*Visit, error) {
	return s.repo.ListByPatient(ctx, accountID, patientID)
}

func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*Visit, error) {
	return s.repo.FindByID(ctx, accountID, id)
}

// Create requires the patient reference; date and time default to the
// server clock when omitted.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, v *Visit) (*Visit, error) {
	if v.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required: %w", httperr.ErrValidation)
	}

	now := s.now()
	if v.VisitDate.IsZero() {
		v.VisitDate = calendarDay(now)
	}
	if v.VisitTime == "" {
		v.VisitTime = now.Format("15:04")
	}

	if err := s.repo.Create(ctx, accountID, v); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, accountID, v.ID)
}

// Update replaces the clinical text fields. The patient and the date
// stay as recorded.
func (s *Service) Update(ctx context.Context, accountID, id uuid.UUID, v *Visit) (*Visit, error) {
	v.ID = id
	if err := s.repo.Update(ctx, accountID, v); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, accountID, id)
}

func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return s.repo.Delete(ctx, accountID, id)
}

// calendarDay maps a wall-clock instant to its date in the clock's own
// zone. Truncating in UTC would flip the date during the evening on any
// server west of Greenwich.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
