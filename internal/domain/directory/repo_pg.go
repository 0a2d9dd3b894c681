package directory

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

// =========== Department Repository ===========

type departmentRepoPG struct{ pool *pgxpool.Pool }

func NewDepartmentRepoPG(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepoPG{pool: pool}
}

func (r *departmentRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *departmentRepoPG) Create(ctx context.Context, d *Department) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO departments (id, name, description) VALUES ($1,$2,$3)`,
		d.ID, d.Name, d.Description)
	if db.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.KindConflict, err, "department already exists")
	}
	return err
}

func (r *departmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	var d Department
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, description FROM departments WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("department not found")
	}
	return &d, err
}

func (r *departmentRepoPG) List(ctx context.Context) ([]*Department, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, description FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}

func (r *departmentRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&n)
	return n, err
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const doctorCols = `id, user_id, department_id, specialization, room,
	availability_summary, bio, active, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.DepartmentID, &d.Specialization, &d.Room,
		&d.AvailabilitySummary, &d.Bio, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("doctor not found")
	}
	return &d, err
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctors (id, user_id, department_id, specialization, room,
			availability_summary, bio, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.UserID, d.DepartmentID, d.Specialization, d.Room,
		d.AvailabilitySummary, d.Bio, d.Active)
	if db.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.KindConflict, err, "user already has a doctor profile")
	}
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *doctorRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE user_id = $1`, userID))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET department_id=$2, specialization=$3, room=$4,
			availability_summary=$5, bio=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.DepartmentID, d.Specialization, d.Room, d.AvailabilitySummary, d.Bio)
	return err
}

func (r *doctorRepoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE doctors SET active=$2, updated_at=NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("doctor not found")
	}
	return nil
}

func (r *doctorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	return err
}

const listingCols = `d.id, d.user_id, u.full_name, u.email, u.phone,
	d.department_id, dep.name, d.specialization, d.room,
	d.availability_summary, d.bio, d.active`

const listingJoin = ` FROM doctors d
	JOIN users u ON u.id = d.user_id
	JOIN departments dep ON dep.id = d.department_id`

func scanListing(rows pgx.Rows) (*DoctorListing, error) {
	var l DoctorListing
	err := rows.Scan(&l.ID, &l.UserID, &l.FullName, &l.Email, &l.Phone,
		&l.DepartmentID, &l.DepartmentName, &l.Specialization, &l.Room,
		&l.AvailabilitySummary, &l.Bio, &l.Active)
	return &l, err
}

func (r *doctorRepoPG) Search(ctx context.Context, name, specialization string, limit, offset int) ([]*DoctorListing, int, error) {
	where := ` WHERE d.active AND u.active
		AND u.full_name ILIKE '%' || $1 || '%'
		AND d.specialization ILIKE '%' || $2 || '%'`

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*)`+listingJoin+where, name, specialization).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+listingCols+listingJoin+where+` ORDER BY u.full_name LIMIT $3 OFFSET $4`,
		name, specialization, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*DoctorListing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, rows.Err()
}

func (r *doctorRepoPG) AdminSearch(ctx context.Context, q string, limit, offset int) ([]*DoctorListing, int, error) {
	where := ` WHERE (u.full_name ILIKE '%' || $1 || '%'
		OR d.specialization ILIKE '%' || $1 || '%')`

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

	var items []*DoctorListing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, rows.Err()
}

func (r *doctorRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&n)
	return n, err
}
