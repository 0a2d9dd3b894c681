package directory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
)

// DoctorDataPurger removes everything the scheduler holds for a doctor.
// The scheduling service implements it; deletion runs inside the
// directory's transaction so the cascade is atomic.
type DoctorDataPurger interface {
	PurgeDoctorData(ctx context.Context, doctorID uuid.UUID) error
}

type Service struct {
	departments DepartmentRepository
	doctors     DoctorRepository
	users       identity.UserRepository
	purger      DoctorDataPurger
	pool        *pgxpool.Pool
}

func NewService(departments DepartmentRepository, doctors DoctorRepository, users identity.UserRepository, pool *pgxpool.Pool) *Service {
	return &Service{departments: departments, doctors: doctors, users: users, pool: pool}
}

// SetPurger wires the scheduling-side cascade. Called once at startup.
func (s *Service) SetPurger(p DoctorDataPurger) { s.purger = p }

// -- Departments --

func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	return s.departments.List(ctx)
}

// SeedDepartments inserts the default departments when the table is
// empty. Returns the number of departments created.
func (s *Service) SeedDepartments(ctx context.Context) (int, error) {
	n, err := s.departments.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	created := 0
	for _, d := range DefaultDepartments() {
		dep := d
		if err := s.departments.Create(ctx, &dep); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// -- Doctors --

type CreateDoctorInput struct {
	FullName            string    `json:"full_name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	Password            string    `json:"password"`
	DepartmentID        uuid.UUID `json:"department_id"`
	Specialization      string    `json:"specialization"`
	Room                string    `json:"room"`
	AvailabilitySummary string    `json:"availability_summary"`
	Bio                 string    `json:"bio"`
}

// CreateDoctor creates the login account and the doctor profile in one
// transaction. A duplicate email aborts both.
func (s *Service) CreateDoctor(ctx context.Context, in CreateDoctorInput) (*Doctor, error) {
	if in.Specialization == "" {
		return nil, apperr.Validation("specialization is required")
	}
	if _, err := s.departments.GetByID(ctx, in.DepartmentID); err != nil {
		return nil, err
	}

	if len(in.Password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}

	var d *Doctor
	err := db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return err
		}
		u := &identity.User{
			ID:           uuid.New(),
			FullName:     in.FullName,
			Email:        identity.NormalizeEmail(in.Email),
			Phone:        in.Phone,
			Role:         identity.RoleDoctor,
			PasswordHash: hash,
			Active:       true,
		}
		if u.FullName == "" {
			return apperr.Validation("full name is required")
		}
		if u.Email == "" {
			return apperr.Validation("email is required")
		}
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}

		d = &Doctor{
			ID:                  uuid.New(),
			UserID:              u.ID,
			DepartmentID:        in.DepartmentID,
			Specialization:      in.Specialization,
			Room:                in.Room,
			AvailabilitySummary: in.AvailabilitySummary,
			Bio:                 in.Bio,
			Active:              true,
		}
		return s.doctors.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

type UpdateDoctorInput struct {
	FullName            *string    `json:"full_name"`
	Phone               *string    `json:"phone"`
	DepartmentID        *uuid.UUID `json:"department_id"`
	Specialization      *string    `json:"specialization"`
	Room                *string    `json:"room"`
	AvailabilitySummary *string    `json:"availability_summary"`
	Bio                 *string    `json:"bio"`
}

// UpdateDoctor applies a partial update: absent fields keep their
// current values.
func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, in UpdateDoctorInput) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *in.DepartmentID); err != nil {
			return nil, err
		}
		d.DepartmentID = *in.DepartmentID
	}
	if in.Specialization != nil && *in.Specialization != "" {
		d.Specialization = *in.Specialization
	}
	if in.Room != nil {
		d.Room = *in.Room
	}
	if in.AvailabilitySummary != nil {
		d.AvailabilitySummary = *in.AvailabilitySummary
	}
	if in.Bio != nil {
		d.Bio = *in.Bio
	}

	err = db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		if err := s.doctors.Update(ctx, d); err != nil {
			return err
		}
		if in.FullName != nil || in.Phone != nil {
			u, err := s.users.GetByID(ctx, d.UserID)
			if err != nil {
				return err
			}
			if in.FullName != nil && *in.FullName != "" {
				u.FullName = *in.FullName
			}
			if in.Phone != nil {
				u.Phone = *in.Phone
			}
			return s.users.Update(ctx, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ToggleDoctor flips the doctor's active flag and mirrors the new state
// onto the linked user so login access follows directory visibility.
func (s *Service) ToggleDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	var d *Doctor
	err := db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		var err error
		d, err = s.doctors.GetByID(ctx, id)
		if err != nil {
			return err
		}
		d.Active = !d.Active
		if err := s.doctors.SetActive(ctx, d.ID, d.Active); err != nil {
			return err
		}
		return s.users.SetActive(ctx, d.UserID, d.Active)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDoctor removes the doctor and everything that references it:
// treatment notes, appointments, availability windows, the profile, and
// the login account, all in one transaction.
func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		d, err := s.doctors.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s.purger != nil {
			if err := s.purger.PurgeDoctorData(ctx, d.ID); err != nil {
				return err
			}
		}
		if err := s.doctors.Delete(ctx, d.ID); err != nil {
			return err
		}
		return s.users.Delete(ctx, d.UserID)
	})
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) SearchDoctors(ctx context.Context, name, specialization string, limit, offset int) ([]*DoctorListing, int, error) {
	return s.doctors.Search(ctx, name, specialization, limit, offset)
}

func (s *Service) AdminSearchDoctors(ctx context.Context, q string, limit, offset int) ([]*DoctorListing, int, error) {
	return s.doctors.AdminSearch(ctx, q, limit, offset)
}

func (s *Service) CountDoctors(ctx context.Context) (int, error) {
	return s.doctors.Count(ctx)
}

// -- Scheduling-facing lookups --

// DoctorDepartment returns the doctor's department and active flag.
func (s *Service) DoctorDepartment(ctx context.Context, doctorID uuid.UUID) (uuid.UUID, bool, error) {
	d, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return uuid.Nil, false, err
	}
	return d.DepartmentID, d.Active, nil
}

// DoctorIDForUser resolves the doctor profile owned by a user account.
func (s *Service) DoctorIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	d, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return d.ID, nil
}
