package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
)

type Service struct {
	patients Repository
	users    identity.UserRepository
	pool     *pgxpool.Pool
}

func NewService(patients Repository, users identity.UserRepository, pool *pgxpool.Pool) *Service {
	return &Service{patients: patients, users: users, pool: pool}
}

type RegisterInput struct {
	FullName          string `json:"full_name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Password          string `json:"password"`
	DateOfBirth       string `json:"date_of_birth"`
	Gender            string `json:"gender"`
	BloodGroup        string `json:"blood_group"`
	Address           string `json:"address"`
	EmergencyContact  string `json:"emergency_contact"`
	InsuranceProvider string `json:"insurance_provider"`
}

// Register creates the login account and the patient profile in one
// transaction. A duplicate email aborts both.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Patient, error) {
	if in.FullName == "" {
		return nil, apperr.Validation("full name is required")
	}
	email := identity.NormalizeEmail(in.Email)
	if email == "" {
		return nil, apperr.Validation("email is required")
	}
	if len(in.Password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}
	dob, err := ParseDate(in.DateOfBirth)
	if err != nil {
		return nil, err
	}

	var p *Patient
	err = db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return err
		}
		u := &identity.User{
			ID:           uuid.New(),
			FullName:     in.FullName,
			Email:        email,
			Phone:        in.Phone,
			Role:         identity.RolePatient,
			PasswordHash: hash,
			Active:       true,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}

		p = &Patient{
			ID:                uuid.New(),
			UserID:            u.ID,
			DateOfBirth:       dob,
			Gender:            in.Gender,
			BloodGroup:        in.BloodGroup,
			Address:           in.Address,
			EmergencyContact:  in.EmergencyContact,
			InsuranceProvider: in.InsuranceProvider,
		}
		return s.patients.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

type UpdateProfileInput struct {
	FullName          *string `json:"full_name"`
	Phone             *string `json:"phone"`
	DateOfBirth       *string `json:"date_of_birth"`
	Gender            *string `json:"gender"`
	BloodGroup        *string `json:"blood_group"`
	Address           *string `json:"address"`
	EmergencyContact  *string `json:"emergency_contact"`
	InsuranceProvider *string `json:"insurance_provider"`
}

// UpdateProfile applies a partial update. Patients may only update
// their own profile; admins may update any.
func (s *Service) UpdateProfile(ctx context.Context, callerID uuid.UUID, callerRole identity.Role, id uuid.UUID, in UpdateProfileInput) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerRole != identity.RoleAdmin && p.UserID != callerID {
		return nil, apperr.Forbidden("cannot update another patient's profile")
	}

	if in.DateOfBirth != nil {
		dob, err := ParseDate(*in.DateOfBirth)
		if err != nil {
			return nil, err
		}
		p.DateOfBirth = dob
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.BloodGroup != nil {
		p.BloodGroup = *in.BloodGroup
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	if in.EmergencyContact != nil {
		p.EmergencyContact = *in.EmergencyContact
	}
	if in.InsuranceProvider != nil {
		p.InsuranceProvider = *in.InsuranceProvider
	}

	err = db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		if err := s.patients.Update(ctx, p); err != nil {
			return err
		}
		if in.FullName != nil || in.Phone != nil {
			u, err := s.users.GetByID(ctx, p.UserID)
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
	return p, nil
}

// TogglePatient flips the login account's active flag. The profile
// itself is kept; an inactive patient simply cannot sign in or book.
func (s *Service) TogglePatient(ctx context.Context, id uuid.UUID) (bool, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return false, err
	}
	next := !u.Active
	if err := s.users.SetActive(ctx, u.ID, next); err != nil {
		return false, err
	}
	return next, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return s.patients.GetByUserID(ctx, userID)
}

func (s *Service) AdminSearch(ctx context.Context, q string, limit, offset int) ([]*PatientListing, int, error) {
	return s.patients.AdminSearch(ctx, q, limit, offset)
}

func (s *Service) CountPatients(ctx context.Context) (int, error) {
	return s.patients.Count(ctx)
}

// PatientIDForUser resolves the patient profile owned by a user account.
func (s *Service) PatientIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	p, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}
