package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

// bookingWindowDays bounds how far ahead availability can be posted.
const bookingWindowDays = 7

// DoctorDirectory resolves doctor profiles without importing the
// directory package.
type DoctorDirectory interface {
	// DoctorDepartment returns the doctor's department and active flag.
	DoctorDepartment(ctx context.Context, doctorID uuid.UUID) (uuid.UUID, bool, error)
	DoctorIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// PatientDirectory resolves the patient profile behind a user account.
type PatientDirectory interface {
	PatientIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	availability AvailabilityRepository
	appointments AppointmentRepository
	notes        TreatmentNoteRepository
	doctors      DoctorDirectory
	patients     PatientDirectory
	pool         *pgxpool.Pool
	now          func() time.Time
}

func NewService(availability AvailabilityRepository, appointments AppointmentRepository,
	notes TreatmentNoteRepository, doctors DoctorDirectory, patients PatientDirectory,
	pool *pgxpool.Pool) *Service {
	return &Service{
		availability: availability,
		appointments: appointments,
		notes:        notes,
		doctors:      doctors,
		patients:     patients,
		pool:         pool,
		now:          time.Now,
	}
}

func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) checkWindow(date time.Time) error {
	today := s.today()
	if date.Before(today) || date.After(today.AddDate(0, 0, bookingWindowDays)) {
		return apperr.OutOfWindow("date must fall within the next %d days", bookingWindowDays)
	}
	return nil
}

// -- Availability --

type SetAvailabilityInput struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// SetAvailability creates or overwrites the caller's working window
// for one date inside the booking window.
func (s *Service) SetAvailability(ctx context.Context, doctorUserID uuid.UUID, in SetAvailabilityInput) (*Availability, error) {
	doctorID, err := s.doctors.DoctorIDForUser(ctx, doctorUserID)
	if err != nil {
		return nil, err
	}

	date, err := ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	if err := s.checkWindow(date); err != nil {
		return nil, err
	}
	start, err := ParseTimeOfDay(in.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := ParseTimeOfDay(in.EndTime)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, apperr.Validation("start time must be before end time")
	}

	a := &Availability{DoctorID: doctorID, Date: date, StartTime: start, EndTime: end}
	if err := s.availability.Upsert(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListOpenAvailability returns an active doctor's windows for the
// booking window, for patients browsing slots.
func (s *Service) ListOpenAvailability(ctx context.Context, doctorID uuid.UUID) ([]*Availability, error) {
	_, active, err := s.doctors.DoctorDepartment(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperr.NotFound("doctor not found")
	}
	today := s.today()
	return s.availability.ListByDoctorRange(ctx, doctorID, today, today.AddDate(0, 0, bookingWindowDays))
}

// -- Appointments --

type BookInput struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	Reason   string    `json:"reason"`
}

// Book places an appointment in a free slot. Availability windows
// guide slot browsing but do not gate booking; only the slot conflict
// does. The slot unique constraint backstops the pre-check under
// concurrency.
func (s *Service) Book(ctx context.Context, patientUserID uuid.UUID, in BookInput) (*Appointment, error) {
	patientID, err := s.patients.PatientIDForUser(ctx, patientUserID)
	if err != nil {
		return nil, err
	}
	departmentID, active, err := s.doctors.DoctorDepartment(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperr.NotFound("doctor not found")
	}

	date, timeOfDay, err := parseSlot(in.Date, in.Time)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlotFree(ctx, in.DoctorID, date, timeOfDay, uuid.Nil); err != nil {
		return nil, err
	}

	a := &Appointment{
		DoctorID:     in.DoctorID,
		PatientID:    patientID,
		DepartmentID: departmentID,
		Date:         date,
		Time:         timeOfDay,
		Status:       StatusBooked,
		Reason:       in.Reason,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// parseSlot validates the slot's date and time forms.
func parseSlot(dateStr, timeStr string) (time.Time, string, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return time.Time{}, "", err
	}
	timeOfDay, err := ParseTimeOfDay(timeStr)
	if err != nil {
		return time.Time{}, "", err
	}
	return date, timeOfDay, nil
}

// ensureSlotFree rejects a slot held by any appointment, cancelled
// ones included. Cancelled slots stay blocked until rescheduled away.
func (s *Service) ensureSlotFree(ctx context.Context, doctorID uuid.UUID, date time.Time, timeOfDay string, excludeID uuid.UUID) error {
	existing, err := s.appointments.FindSlot(ctx, doctorID, date, timeOfDay, excludeID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Conflict("slot is already taken")
	}
	return nil
}

type RescheduleInput struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Reschedule moves an appointment to a new slot and resets its status
// to booked. The appointment's own slot does not count as a conflict.
func (s *Service) Reschedule(ctx context.Context, callerUserID uuid.UUID, id uuid.UUID, in RescheduleInput) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkPatientOwnership(ctx, callerUserID, a); err != nil {
		return nil, err
	}
	if a.Status == StatusCompleted {
		return nil, apperr.Forbidden("completed appointments cannot be rescheduled")
	}

	date, timeOfDay, err := parseSlot(in.Date, in.Time)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlotFree(ctx, a.DoctorID, date, timeOfDay, a.ID); err != nil {
		return nil, err
	}

	a.Date = date
	a.Time = timeOfDay
	a.Status = StatusBooked
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel marks an appointment cancelled. Completed appointments are a
// closed record and stay as they are.
func (s *Service) Cancel(ctx context.Context, callerUserID uuid.UUID, id uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkPatientOwnership(ctx, callerUserID, a); err != nil {
		return nil, err
	}
	if a.Status == StatusCompleted {
		return nil, apperr.Forbidden("completed appointments cannot be cancelled")
	}

	a.Status = StatusCancelled
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// checkPatientOwnership rejects callers other than the appointment's
// patient. Admins act through AdminSetStatus instead.
func (s *Service) checkPatientOwnership(ctx context.Context, callerUserID uuid.UUID, a *Appointment) error {
	patientID, err := s.patients.PatientIDForUser(ctx, callerUserID)
	if err != nil {
		return err
	}
	if a.PatientID != patientID {
		return apperr.Forbidden("appointment belongs to another patient")
	}
	return nil
}

// -- Clinical --

type ClinicalInput struct {
	Status       string `json:"status"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
}

// UpdateClinical applies an optional status change and overwrites the
// appointment's treatment note in one transaction. Only the treating
// doctor may record it.
func (s *Service) UpdateClinical(ctx context.Context, doctorUserID uuid.UUID, id uuid.UUID, in ClinicalInput) (*Appointment, error) {
	doctorID, err := s.doctors.DoctorIDForUser(ctx, doctorUserID)
	if err != nil {
		return nil, err
	}
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.DoctorID != doctorID {
		return nil, apperr.Forbidden("appointment belongs to another doctor")
	}
	// An empty status keeps the current one; only the note changes.
	if in.Status != "" {
		status, err := ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		a.Status = status
	}

	err = db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		if err := s.appointments.Update(ctx, a); err != nil {
			return err
		}
		return s.notes.Upsert(ctx, &TreatmentNote{
			AppointmentID: a.ID,
			Diagnosis:     in.Diagnosis,
			Prescription:  in.Prescription,
			Notes:         in.Notes,
		})
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// AdminSetStatus force-sets an appointment's status.
func (s *Service) AdminSetStatus(ctx context.Context, id uuid.UUID, statusStr string) (*Appointment, error) {
	status, err := ParseStatus(statusStr)
	if err != nil {
		return nil, err
	}
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Status = status
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// -- Dashboards --

// DoctorWeekSchedule lists the caller's appointments for the booking
// window.
func (s *Service) DoctorWeekSchedule(ctx context.Context, doctorUserID uuid.UUID) ([]*AppointmentView, error) {
	doctorID, err := s.doctors.DoctorIDForUser(ctx, doctorUserID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	return s.appointments.ListByDoctorRange(ctx, doctorID, today, today.AddDate(0, 0, bookingWindowDays))
}

// Roster lists the patients the caller has appointments with.
func (s *Service) Roster(ctx context.Context, doctorUserID uuid.UUID, limit, offset int) ([]*RosterEntry, int, error) {
	doctorID, err := s.doctors.DoctorIDForUser(ctx, doctorUserID)
	if err != nil {
		return nil, 0, err
	}
	return s.appointments.DistinctPatients(ctx, doctorID, limit, offset)
}

// PatientHistoryForDoctor returns a patient's appointment history with
// the calling doctor. At least one shared appointment is required.
func (s *Service) PatientHistoryForDoctor(ctx context.Context, doctorUserID, patientID uuid.UUID) ([]*AppointmentView, error) {
	doctorID, err := s.doctors.DoctorIDForUser(ctx, doctorUserID)
	if err != nil {
		return nil, err
	}
	related, err := s.appointments.ExistsRelationship(ctx, doctorID, patientID)
	if err != nil {
		return nil, err
	}
	if !related {
		return nil, apperr.Forbidden("no treatment relationship with this patient")
	}
	return s.appointments.ListByDoctorPatient(ctx, doctorID, patientID)
}

func (s *Service) PatientUpcoming(ctx context.Context, patientUserID uuid.UUID) ([]*AppointmentView, error) {
	patientID, err := s.patients.PatientIDForUser(ctx, patientUserID)
	if err != nil {
		return nil, err
	}
	return s.appointments.ListUpcomingByPatient(ctx, patientID, s.today())
}

func (s *Service) PatientPast(ctx context.Context, patientUserID uuid.UUID) ([]*AppointmentView, error) {
	patientID, err := s.patients.PatientIDForUser(ctx, patientUserID)
	if err != nil {
		return nil, err
	}
	return s.appointments.ListPastByPatient(ctx, patientID, s.today())
}

func (s *Service) AdminFeed(ctx context.Context, limit, offset int) ([]*AppointmentView, int, error) {
	return s.appointments.ListAll(ctx, limit, offset)
}

func (s *Service) CountAppointments(ctx context.Context) (int, error) {
	return s.appointments.Count(ctx)
}

func (s *Service) CountAppointmentsToday(ctx context.Context) (int, error) {
	return s.appointments.CountOnDate(ctx, s.today())
}

// PurgeDoctorData removes a doctor's notes, appointments, and
// availability. The directory's delete cascade calls it inside its
// transaction.
func (s *Service) PurgeDoctorData(ctx context.Context, doctorID uuid.UUID) error {
	if err := s.notes.PurgeByDoctor(ctx, doctorID); err != nil {
		return err
	}
	if err := s.appointments.PurgeByDoctor(ctx, doctorID); err != nil {
		return err
	}
	return s.availability.PurgeByDoctor(ctx, doctorID)
}
