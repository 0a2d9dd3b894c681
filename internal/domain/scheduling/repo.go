package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AvailabilityRepository interface {
	// Upsert inserts the window or overwrites the times of an existing
	// window for the same doctor and date.
	Upsert(ctx context.Context, a *Availability) error
	ListByDoctorRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Availability, error)
	PurgeByDoctor(ctx context.Context, doctorID uuid.UUID) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	// FindSlot returns the appointment occupying a doctor's slot, or
	// (nil, nil) when the slot is free. excludeID skips one appointment
	// so a reschedule does not collide with itself; pass uuid.Nil to
	// match all.
	FindSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeOfDay string, excludeID uuid.UUID) (*Appointment, error)
	ListUpcomingByPatient(ctx context.Context, patientID uuid.UUID, from time.Time) ([]*AppointmentView, error)
	ListPastByPatient(ctx context.Context, patientID uuid.UUID, before time.Time) ([]*AppointmentView, error)
	ListByDoctorRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*AppointmentView, error)
	ListByDoctorPatient(ctx context.Context, doctorID, patientID uuid.UUID) ([]*AppointmentView, error)
	ExistsRelationship(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
	DistinctPatients(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*RosterEntry, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]*AppointmentView, int, error)
	Count(ctx context.Context) (int, error)
	CountOnDate(ctx context.Context, date time.Time) (int, error)
	PurgeByDoctor(ctx context.Context, doctorID uuid.UUID) error
}

type TreatmentNoteRepository interface {
	// Upsert overwrites all note fields for the appointment.
	Upsert(ctx context.Context, n *TreatmentNote) error
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*TreatmentNote, error)
	PurgeByDoctor(ctx context.Context, doctorID uuid.UUID) error
}
