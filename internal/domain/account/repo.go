package account

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, acc *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context) ([]*Account, error)
	EmailInUseByOther(ctx context.Context, email string, id uuid.UUID) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, email, name *string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
}
