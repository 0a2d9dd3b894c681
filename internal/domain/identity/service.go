package identity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type Service struct {
	users      UserRepository
	signingKey []byte
	tokenTTL   time.Duration
}

func NewService(users UserRepository, signingKey []byte, tokenTTL time.Duration) *Service {
	return &Service{users: users, signingKey: signingKey, tokenTTL: tokenTTL}
}

// CreateUser validates and stores a new account. The email must be
// unique; the repository surfaces duplicates as a conflict.
func (s *Service) CreateUser(ctx context.Context, fullName, email, phone, password string, role Role) (*User, error) {
	if fullName == "" {
		return nil, apperr.Validation("full name is required")
	}
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperr.Validation("email is required")
	}
	if len(password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New(),
		FullName:     fullName,
		Email:        email,
		Phone:        phone,
		Role:         role,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies credentials for an active account. It reports
// the same error for unknown emails, wrong passwords, and deactivated
// accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, apperr.Forbidden("invalid credentials")
	}
	if !u.Active || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apperr.Forbidden("invalid credentials")
	}
	return u, nil
}

// IssueToken signs a JWT for an authenticated user.
func (s *Service) IssueToken(u *User) (string, error) {
	return auth.IssueToken(s.signingKey, u.ID.String(), string(u.Role), s.tokenTTL)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.users.SetActive(ctx, id, active)
}

// UpdateContact applies a partial update: nil fields keep their current
// value.
func (s *Service) UpdateContact(ctx context.Context, id uuid.UUID, fullName, email, phone *string) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fullName != nil && *fullName != "" {
		u.FullName = *fullName
	}
	if email != nil && *email != "" {
		u.Email = NormalizeEmail(*email)
	}
	if phone != nil {
		u.Phone = *phone
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SeedAdmin creates the bootstrap admin account when no admin exists.
// Returns true when a new account was created.
func (s *Service) SeedAdmin(ctx context.Context, fullName, email, password string) (bool, error) {
	n, err := s.users.CountByRole(ctx, RoleAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.CreateUser(ctx, fullName, email, "", password, RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}
