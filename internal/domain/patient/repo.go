package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository is tenant scoped: every method takes the owning account id
// and every statement filters on it. A row owned by another account is
// indistinguishable from an absent one.
type Repository interface {
	ListActive(ctx context.Context, accountID uuid.UUID) ([]*Patient, error)
	Search(ctx context.Context, accountID uuid.UUID, term string) ([]*Patient, error)
	FindByID(ctx context.Context, accountID, id uuid.UUID) (*Patient, error)
	FindByNationalID(ctx context.Context, accountID uuid.UUID, nid string) (*Patient, error)
	Create(ctx context.Context, accountID uuid.UUID, p *Patient) error
	Update(ctx context.Context, accountID uuid.UUID, p *Patient) error
	SoftDelete(ctx context.Context, accountID, id uuid.UUID) error
}
