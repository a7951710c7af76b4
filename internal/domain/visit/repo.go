package visit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is tenant scoped: every method takes the owning account id
// and every statement filters on it. Reads that join patients require
// the patient to still be active, except ListByPatient, which serves
// the history of soft-deleted patients too.
type Repository interface {
	ListAll(ctx context.Context, accountID uuid.UUID) ([]*Visit, error)
	ListByDate(ctx context.Context, accountID uuid.UUID, date time.Time) ([]*Visit, error)
	ListByPatient(ctx context.Context, accountID, patientID uuid.UUID) ([]*Visit, error)
	FindByID(ctx context.Context, accountID, id uuid.UUID) (*Visit, error)
	Create(ctx context.Context, accountID uuid.UUID, v *Visit) error
	Update(ctx context.Context, accountID uuid.UUID, v *Visit) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}
