package directory

import (
	"context"

	"github.com/google/uuid"
)

type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*Department, error)
	List(ctx context.Context) ([]*Department, error)
	Count(ctx context.Context) (int, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Search matches active doctors whose name AND specialization
	// contain the given fragments; empty fragments match everything.
	Search(ctx context.Context, name, specialization string, limit, offset int) ([]*DoctorListing, int, error)
	// AdminSearch matches any doctor whose name OR specialization
	// contains q, regardless of active state.
	AdminSearch(ctx context.Context, q string, limit, offset int) ([]*DoctorListing, int, error)
	Count(ctx context.Context) (int, error)
}
