package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, user_id, date_of_birth, gender, blood_group,
	address, emergency_contact, insurance_provider, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.DateOfBirth, &p.Gender, &p.BloodGroup,
		&p.Address, &p.EmergencyContact, &p.InsuranceProvider, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient not found")
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, user_id, date_of_birth, gender, blood_group,
			address, emergency_contact, insurance_provider)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.UserID, p.DateOfBirth, p.Gender, p.BloodGroup,
		p.Address, p.EmergencyContact, p.InsuranceProvider)
	if db.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.KindConflict, err, "user already has a patient profile")
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE user_id = $1`, userID))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET date_of_birth=$2, gender=$3, blood_group=$4,
			address=$5, emergency_contact=$6, insurance_provider=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.DateOfBirth, p.Gender, p.BloodGroup,
		p.Address, p.EmergencyContact, p.InsuranceProvider)
	return err
}

const listingCols = `p.id, p.user_id, u.full_name, u.email, u.phone,
	p.date_of_birth, p.gender, p.blood_group, u.active`

const listingJoin = ` FROM patients p JOIN users u ON u.id = p.user_id`

func (r *repoPG) AdminSearch(ctx context.Context, q string, limit, offset int) ([]*PatientListing, int, error) {
	where := ` WHERE (u.full_name ILIKE '%' || $1 || '%'
		OR u.email ILIKE '%' || $1 || '%'
		OR u.phone ILIKE '%' || $1 || '%')`

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*)`+listingJoin+where, q).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+listingCols+listingJoin+where+` ORDER BY u.full_name LIMIT $2 OFFSET $3`,
		q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*PatientListing
	for rows.Next() {
		var l PatientListing
		if err := rows.Scan(&l.ID, &l.UserID, &l.FullName, &l.Email, &l.Phone,
			&l.DateOfBirth, &l.Gender, &l.BloodGroup, &l.Active); err != nil {
			return nil, 0, err
		}
		items = append(items, &l)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n)
	return n, err
}
