package patient

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/platform/apperr"
)

// -- Mock Repositories --

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
	users    *mockUserRepo
}

func newMockPatientRepo(users *mockUserRepo) *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient), users: users}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for _, existing := range m.patients {
		if existing.UserID == p.UserID {
			return apperr.Conflict("user already has a patient profile")
		}
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient not found")
	}
	return p, nil
}

func (m *mockPatientRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Patient, error) {
	for _, p := range m.patients {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, apperr.NotFound("patient not found")
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) AdminSearch(_ context.Context, q string, limit, offset int) ([]*PatientListing, int, error) {
	var items []*PatientListing
	for _, p := range m.patients {
		u := m.users.users[p.UserID]
		if u == nil {
			continue
		}
		ql := strings.ToLower(q)
		if strings.Contains(strings.ToLower(u.FullName), ql) ||
			strings.Contains(strings.ToLower(u.Email), ql) ||
			strings.Contains(u.Phone, q) {
			items = append(items, &PatientListing{
				ID: p.ID, UserID: p.UserID, FullName: u.FullName,
				Email: u.Email, Phone: u.Phone, DateOfBirth: p.DateOfBirth,
				Gender: p.Gender, BloodGroup: p.BloodGroup, Active: u.Active,
			})
		}
	}
	return items, len(items), nil
}

func (m *mockPatientRepo) Count(_ context.Context) (int, error) {
	return len(m.patients), nil
}

type mockUserRepo struct {
	users map[uuid.UUID]*identity.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*identity.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *identity.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperr.Conflict("email already registered")
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*identity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (m *mockUserRepo) Update(_ context.Context, u *identity.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.Active = active
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role identity.Role) (int, error) {
	n := 0
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func newTestService() (*Service, *mockPatientRepo, *mockUserRepo) {
	users := newMockUserRepo()
	patients := newMockPatientRepo(users)
	return NewService(patients, users, nil), patients, users
}

func register(t *testing.T, svc *Service, name, email string) *Patient {
	t.Helper()
	p, err := svc.Register(context.Background(), RegisterInput{
		FullName: name, Email: email, Phone: "555-0101",
		Password: "secret1", DateOfBirth: "1990-04-12", Gender: "female",
	})
	if err != nil {
		t.Fatalf("Register(%s) error: %v", name, err)
	}
	return p
}

// -- Tests --

func TestRegister(t *testing.T) {
	svc, _, users := newTestService()

	p := register(t, svc, "Meera Nair", "Meera@HMS.local")

	u, err := users.GetByID(context.Background(), p.UserID)
	if err != nil {
		t.Fatalf("linked user missing: %v", err)
	}
	if u.Role != identity.RolePatient {
		t.Errorf("expected patient role, got %s", u.Role)
	}
	if u.Email != "meera@hms.local" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}
	if !u.Active {
		t.Error("new accounts should be active")
	}
	if p.DateOfBirth.Format("2006-01-02") != "1990-04-12" {
		t.Errorf("unexpected date of birth %v", p.DateOfBirth)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@b.c", Password: "secret1", DateOfBirth: "1990-01-01"}},
		{"missing email", RegisterInput{FullName: "A", Password: "secret1", DateOfBirth: "1990-01-01"}},
		{"short password", RegisterInput{FullName: "A", Email: "a@b.c", Password: "abc", DateOfBirth: "1990-01-01"}},
		{"bad date", RegisterInput{FullName: "A", Email: "a@b.c", Password: "secret1", DateOfBirth: "12/04/1990"}},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.in); apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	register(t, svc, "Meera Nair", "meera@hms.local")
	_, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Other", Email: "meera@hms.local",
		Password: "secret1", DateOfBirth: "1985-01-01",
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateProfile_Ownership(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p := register(t, svc, "Meera Nair", "meera@hms.local")
	other := register(t, svc, "Ravi Iyer", "ravi@hms.local")

	addr := "12 Lake Road"
	_, err := svc.UpdateProfile(ctx, other.UserID, identity.RolePatient, p.ID, UpdateProfileInput{Address: &addr})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden for another patient, got %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, p.UserID, identity.RolePatient, p.ID, UpdateProfileInput{Address: &addr})
	if err != nil {
		t.Fatalf("self update error: %v", err)
	}
	if updated.Address != addr {
		t.Errorf("expected address updated, got %q", updated.Address)
	}

	bg := "O+"
	updated, err = svc.UpdateProfile(ctx, uuid.New(), identity.RoleAdmin, p.ID, UpdateProfileInput{BloodGroup: &bg})
	if err != nil {
		t.Fatalf("admin update error: %v", err)
	}
	if updated.BloodGroup != "O+" {
		t.Errorf("expected blood group updated, got %q", updated.BloodGroup)
	}
	if updated.Address != addr {
		t.Error("absent fields must keep their values")
	}
}

func TestUpdateProfile_MirrorsUserContact(t *testing.T) {
	svc, _, users := newTestService()
	ctx := context.Background()

	p := register(t, svc, "Meera Nair", "meera@hms.local")

	name, phone := "Meera N. Nair", "555-0199"
	if _, err := svc.UpdateProfile(ctx, p.UserID, identity.RolePatient, p.ID, UpdateProfileInput{
		FullName: &name, Phone: &phone,
	}); err != nil {
		t.Fatalf("UpdateProfile() error: %v", err)
	}

	u, _ := users.GetByID(ctx, p.UserID)
	if u.FullName != name || u.Phone != phone {
		t.Errorf("expected contact mirrored onto user, got %q %q", u.FullName, u.Phone)
	}
}

func TestTogglePatient_FlipsOnlyUser(t *testing.T) {
	svc, patients, users := newTestService()
	ctx := context.Background()

	p := register(t, svc, "Meera Nair", "meera@hms.local")

	active, err := svc.TogglePatient(ctx, p.ID)
	if err != nil {
		t.Fatalf("TogglePatient() error: %v", err)
	}
	if active {
		t.Error("expected account deactivated")
	}
	if u, _ := users.GetByID(ctx, p.UserID); u.Active {
		t.Error("expected user deactivated")
	}
	if _, err := patients.GetByID(ctx, p.ID); err != nil {
		t.Error("profile must survive deactivation")
	}

	active, err = svc.TogglePatient(ctx, p.ID)
	if err != nil {
		t.Fatalf("second TogglePatient() error: %v", err)
	}
	if !active {
		t.Error("expected account reactivated")
	}
}

func TestAdminSearch(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	register(t, svc, "Meera Nair", "meera@hms.local")
	register(t, svc, "Ravi Iyer", "ravi@hms.local")

	_, total, err := svc.AdminSearch(ctx, "meera", 20, 0)
	if err != nil {
		t.Fatalf("AdminSearch() error: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 match by name, got %d", total)
	}

	_, total, err = svc.AdminSearch(ctx, "555-01", 20, 0)
	if err != nil {
		t.Fatalf("AdminSearch() error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 matches by phone, got %d", total)
	}
}

func TestPatientIDForUser(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p := register(t, svc, "Meera Nair", "meera@hms.local")

	id, err := svc.PatientIDForUser(ctx, p.UserID)
	if err != nil {
		t.Fatalf("PatientIDForUser() error: %v", err)
	}
	if id != p.ID {
		t.Errorf("expected %s, got %s", p.ID, id)
	}

	if _, err := svc.PatientIDForUser(ctx, uuid.New()); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
}
