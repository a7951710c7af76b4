package appointment

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

func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*Appointment, error) {
	return s.repo.ListAll(ctx, accountID)
}

func (s *Service) ListByDate(ctx context.Context, accountID uuid.UUID, day time.Time) ([]*Appointment, error) {
	return s.repo.ListByDate(ctx, accountID, day)
}

func (s *Service) ListByPatient(ctx context.Context, accountID, patientID uuid.UUID) ([]*Appointment, error) {
	return s.repo.ListByPatient(ctx, accountID, patientID)
}

func (s *Service) ListToday(ctx context.Context, accountID uuid.UUID) ([]*Appointment, error) {
	return s.repo.ListByDate(ctx, accountID, calendarDay(s.now()))
}

func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*Appointment, error) {
	return s.repo.FindByID(ctx, accountID, id)
}

// Create requires a naming source: a patient reference or a complete
// temporary name pair. Status defaults to scheduled.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, a *Appointment) (*Appointment, error) {
	if a.Day.IsZero() || a.TimeOfDay == "" {
		return nil, fmt.Errorf("day and time_of_day are required: %w", httperr.ErrValidation)
	}
	if !a.hasNameSource() {
		return nil, fmt.Errorf("a patient or a temporary name pair is required: %w", httperr.ErrValidation)
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return nil, fmt.Errorf("unknown status %q: %w", a.Status, httperr.ErrValidation)
	}

	if err := s.repo.Create(ctx, accountID, a); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, accountID, a.ID)
}

// Update replaces day, time, coverage, arrival time, status, detail,
// first-visit flag and the linked visit.
func (s *Service) Update(ctx context.Context, accountID, id uuid.UUID, a *Appointment) (*Appointment, error) {
	if a.Day.IsZero() || a.TimeOfDay == "" {
		return nil, fmt.Errorf("day and time_of_day are required: %w", httperr.ErrValidation)
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return nil, fmt.Errorf("unknown status %q: %w", a.Status, httperr.ErrValidation)
	}

	a.ID = id
	if err := s.repo.Update(ctx, accountID, a); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, accountID, id)
}

// SetStatus moves the slot to any member of the status set, optionally
// stamping the arrival time. No transition order is enforced.
func (s *Service) SetStatus(ctx context.Context, accountID, id uuid.UUID, status string, arrivalTime *string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("unknown status %q: %w", status, httperr.ErrValidation)
	}
	if err := s.repo.SetStatus(ctx, accountID, id, status, arrivalTime); err != nil {
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
