package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is tenant scoped: every method takes the owning account id
// and every statement filters on it. Reads left-join active patients so
// slots without a patient, or whose patient was soft deleted, still
// appear under their temporary name.
type Repository interface {
	ListAll(ctx context.Context, accountID uuid.UUID) ([]*Appointment, error)
	ListByDate(ctx context.Context, accountID uuid.UUID, day time.Time) ([]*Appointment, error)
	ListByPatient(ctx context.Context, accountID, patientID uuid.UUID) ([]*Appointment, error)
	FindByID(ctx context.Context, accountID, id uuid.UUID) (*Appointment, error)
	Create(ctx context.Context, accountID uuid.UUID, a *Appointment) error
	Update(ctx context.Context, accountID uuid.UUID, a *Appointment) error
	SetStatus(ctx context.Context, accountID, id uuid.UUID, status string, arrivalTime *string) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}
