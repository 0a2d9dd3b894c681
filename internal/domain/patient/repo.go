package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	// AdminSearch matches patients whose name, email, or phone contains
	// q, regardless of account state.
	AdminSearch(ctx context.Context, q string, limit, offset int) ([]*PatientListing, int, error)
	Count(ctx context.Context) (int, error)
}
