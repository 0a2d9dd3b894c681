// Package scheduling owns availability windows, appointments, and
// treatment notes. Appointments hold a closed status lifecycle and a
// slot unique per doctor, date, and time.
package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
)

type Status string

const (
	StatusBooked    Status = "Booked"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

var validStatuses = map[Status]bool{
	StatusBooked:    true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// ParseStatus validates a status string at the API boundary. Anything
// outside the closed set is rejected.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", apperr.Validation("invalid status %q", s)
	}
	return st, nil
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseTimeOfDay validates a zero-padded HH:MM clock time and returns
// it in canonical form. Canonical values compare correctly as strings,
// so unpadded input like "9:30" is rejected rather than normalized.
func ParseTimeOfDay(s string) (string, error) {
	if len(s) != len(timeLayout) {
		return "", apperr.Validation("invalid time %q, expected HH:MM", s)
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return "", apperr.Validation("invalid time %q, expected HH:MM", s)
	}
	return t.Format(timeLayout), nil
}

// Availability is a doctor's working window on one date. One window
// per doctor per date; setting it again overwrites the times.
type Availability struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Appointment captures the department at booking time so the record
// survives later doctor profile changes.
type Appointment struct {
	ID           uuid.UUID `json:"id"`
	DoctorID     uuid.UUID `json:"doctor_id"`
	PatientID    uuid.UUID `json:"patient_id"`
	DepartmentID uuid.UUID `json:"department_id"`
	Date         time.Time `json:"date"`
	Time         string    `json:"time"`
	Status       Status    `json:"status"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TreatmentNote is the clinical record for one appointment. At most
// one note per appointment; updates overwrite all fields.
type TreatmentNote struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Diagnosis     string    `json:"diagnosis"`
	Prescription  string    `json:"prescription"`
	Notes         string    `json:"notes"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AppointmentView joins an appointment with the doctor and patient
// names and, when present, its treatment note.
type AppointmentView struct {
	ID             uuid.UUID      `json:"id"`
	DoctorID       uuid.UUID      `json:"doctor_id"`
	DoctorName     string         `json:"doctor_name"`
	Specialization string         `json:"specialization"`
	PatientID      uuid.UUID      `json:"patient_id"`
	PatientName    string         `json:"patient_name"`
	Date           time.Time      `json:"date"`
	Time           string         `json:"time"`
	Status         Status         `json:"status"`
	Reason         string         `json:"reason"`
	Note           *TreatmentNote `json:"note,omitempty"`
}

// RosterEntry is one patient a doctor has seen, with visit counts.
type RosterEntry struct {
	PatientID uuid.UUID `json:"patient_id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Visits    int       `json:"visits"`
	LastVisit time.Time `json:"last_visit"`
}
