package scheduling

import (
	"context"
	"errors"
	"time"

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

// =========== Availability Repository ===========

type availabilityRepoPG struct{ pool *pgxpool.Pool }

func NewAvailabilityRepoPG(pool *pgxpool.Pool) AvailabilityRepository {
	return &availabilityRepoPG{pool: pool}
}

func (r *availabilityRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const availabilityCols = `id, doctor_id, date, start_time, end_time, created_at, updated_at`

func scanAvailability(row pgx.Row) (*Availability, error) {
	var a Availability
	err := row.Scan(&a.ID, &a.DoctorID, &a.Date, &a.StartTime, &a.EndTime,
		&a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *availabilityRepoPG) Upsert(ctx context.Context, a *Availability) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO availabilities (id, doctor_id, date, start_time, end_time)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (doctor_id, date) DO UPDATE
			SET start_time = EXCLUDED.start_time,
			    end_time   = EXCLUDED.end_time,
			    updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		a.ID, a.DoctorID, a.Date, a.StartTime, a.EndTime).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *availabilityRepoPG) ListByDoctorRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Availability, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+availabilityCols+` FROM availabilities
		 WHERE doctor_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date`,
		doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Availability
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *availabilityRepoPG) PurgeByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM availabilities WHERE doctor_id = $1`, doctorID)
	return err
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const appointmentCols = `id, doctor_id, patient_id, department_id, date, time, status, reason, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.DepartmentID, &a.Date, &a.Time,
		&a.Status, &a.Reason, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment not found")
	}
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, department_id, date, time, status, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.DoctorID, a.PatientID, a.DepartmentID, a.Date, a.Time, a.Status, a.Reason)
	if db.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.KindConflict, err, "slot is already taken")
	}
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET date=$2, time=$3, status=$4, reason=$5, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Date, a.Time, a.Status, a.Reason)
	if db.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.KindConflict, err, "slot is already taken")
	}
	return err
}

func (r *appointmentRepoPG) FindSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeOfDay string, excludeID uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE doctor_id = $1 AND date = $2 AND time = $3 AND id <> $4`,
		doctorID, date, timeOfDay, excludeID))
	if apperr.KindOf(err) == apperr.KindNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

const viewCols = `a.id, a.doctor_id, du.full_name, d.specialization,
	a.patient_id, pu.full_name, a.date, a.time, a.status, a.reason,
	tn.id, tn.diagnosis, tn.prescription, tn.notes, tn.updated_at`

const viewJoin = ` FROM appointments a
	JOIN doctors d ON d.id = a.doctor_id
	JOIN users du ON du.id = d.user_id
	JOIN patients p ON p.id = a.patient_id
	JOIN users pu ON pu.id = p.user_id
	LEFT JOIN treatment_notes tn ON tn.appointment_id = a.id`

func scanView(rows pgx.Rows) (*AppointmentView, error) {
	var v AppointmentView
	var noteID *uuid.UUID
	var diagnosis, prescription, notes *string
	var noteUpdated *time.Time
	err := rows.Scan(&v.ID, &v.DoctorID, &v.DoctorName, &v.Specialization,
		&v.PatientID, &v.PatientName, &v.Date, &v.Time, &v.Status, &v.Reason,
		&noteID, &diagnosis, &prescription, &notes, &noteUpdated)
	if err != nil {
		return nil, err
	}
	if noteID != nil {
		v.Note = &TreatmentNote{
			ID:            *noteID,
			AppointmentID: v.ID,
			Diagnosis:     *diagnosis,
			Prescription:  *prescription,
			Notes:         *notes,
			UpdatedAt:     *noteUpdated,
		}
	}
	return &v, nil
}

func (r *appointmentRepoPG) queryViews(ctx context.Context, sql string, args ...interface{}) ([]*AppointmentView, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*AppointmentView
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) ListUpcomingByPatient(ctx context.Context, patientID uuid.UUID, from time.Time) ([]*AppointmentView, error) {
	return r.queryViews(ctx,
		`SELECT `+viewCols+viewJoin+`
		 WHERE a.patient_id = $1 AND a.date >= $2 ORDER BY a.date, a.time`,
		patientID, from)
}

func (r *appointmentRepoPG) ListPastByPatient(ctx context.Context, patientID uuid.UUID, before time.Time) ([]*AppointmentView, error) {
	return r.queryViews(ctx,
		`SELECT `+viewCols+viewJoin+`
		 WHERE a.patient_id = $1 AND a.date < $2 ORDER BY a.date DESC, a.time DESC`,
		patientID, before)
}

func (r *appointmentRepoPG) ListByDoctorRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*AppointmentView, error) {
	return r.queryViews(ctx,
		`SELECT `+viewCols+viewJoin+`
		 WHERE a.doctor_id = $1 AND a.date BETWEEN $2 AND $3 ORDER BY a.date, a.time`,
		doctorID, from, to)
}

func (r *appointmentRepoPG) ListByDoctorPatient(ctx context.Context, doctorID, patientID uuid.UUID) ([]*AppointmentView, error) {
	return r.queryViews(ctx,
		`SELECT `+viewCols+viewJoin+`
		 WHERE a.doctor_id = $1 AND a.patient_id = $2 ORDER BY a.date DESC, a.time DESC`,
		doctorID, patientID)
}

func (r *appointmentRepoPG) ExistsRelationship(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM appointments WHERE doctor_id = $1 AND patient_id = $2)`,
		doctorID, patientID).Scan(&exists)
	return exists, err
}

func (r *appointmentRepoPG) DistinctPatients(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*RosterEntry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(DISTINCT patient_id) FROM appointments WHERE doctor_id = $1`,
		doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, pu.full_name, pu.phone, COUNT(a.id), MAX(a.date)
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN users pu ON pu.id = p.user_id
		WHERE a.doctor_id = $1
		GROUP BY p.id, pu.full_name, pu.phone
		ORDER BY pu.full_name
		LIMIT $2 OFFSET $3`,
		doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*RosterEntry
	for rows.Next() {
		var e RosterEntry
		if err := rows.Scan(&e.PatientID, &e.FullName, &e.Phone, &e.Visits, &e.LastVisit); err != nil {
			return nil, 0, err
		}
		items = append(items, &e)
	}
	return items, total, rows.Err()
}

func (r *appointmentRepoPG) ListAll(ctx context.Context, limit, offset int) ([]*AppointmentView, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments`).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.queryViews(ctx,
		`SELECT `+viewCols+viewJoin+`
		 ORDER BY a.date DESC, a.time DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *appointmentRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&n)
	return n, err
}

func (r *appointmentRepoPG) CountOnDate(ctx context.Context, date time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE date = $1`, date).Scan(&n)
	return n, err
}

func (r *appointmentRepoPG) PurgeByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM appointments WHERE doctor_id = $1`, doctorID)
	return err
}

// =========== Treatment Note Repository ===========

type treatmentNoteRepoPG struct{ pool *pgxpool.Pool }

func NewTreatmentNoteRepoPG(pool *pgxpool.Pool) TreatmentNoteRepository {
	return &treatmentNoteRepoPG{pool: pool}
}

func (r *treatmentNoteRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *treatmentNoteRepoPG) Upsert(ctx context.Context, n *TreatmentNote) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO treatment_notes (id, appointment_id, diagnosis, prescription, notes)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (appointment_id) DO UPDATE
			SET diagnosis    = EXCLUDED.diagnosis,
			    prescription = EXCLUDED.prescription,
			    notes        = EXCLUDED.notes,
			    updated_at   = NOW()
		RETURNING id, updated_at`,
		n.ID, n.AppointmentID, n.Diagnosis, n.Prescription, n.Notes).
		Scan(&n.ID, &n.UpdatedAt)
}

func (r *treatmentNoteRepoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*TreatmentNote, error) {
	var n TreatmentNote
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, appointment_id, diagnosis, prescription, notes, updated_at
		FROM treatment_notes WHERE appointment_id = $1`, appointmentID).
		Scan(&n.ID, &n.AppointmentID, &n.Diagnosis, &n.Prescription, &n.Notes, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("treatment note not found")
	}
	return &n, err
}

func (r *treatmentNoteRepoPG) PurgeByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM treatment_notes
		WHERE appointment_id IN (SELECT id FROM appointments WHERE doctor_id = $1)`,
		doctorID)
	return err
}
