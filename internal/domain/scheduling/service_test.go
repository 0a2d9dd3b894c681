package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
)

// -- Mock Repositories --

type mockAvailabilityRepo struct {
	windows map[string]*Availability
}

func newMockAvailabilityRepo() *mockAvailabilityRepo {
	return &mockAvailabilityRepo{windows: make(map[string]*Availability)}
}

func availKey(doctorID uuid.UUID, date time.Time) string {
	return doctorID.String() + "|" + date.Format("2006-01-02")
}

func (m *mockAvailabilityRepo) Upsert(_ context.Context, a *Availability) error {
	key := availKey(a.DoctorID, a.Date)
	if existing, ok := m.windows[key]; ok {
		existing.StartTime = a.StartTime
		existing.EndTime = a.EndTime
		*a = *existing
		return nil
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.windows[key] = a
	return nil
}

func (m *mockAvailabilityRepo) ListByDoctorRange(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Availability, error) {
	var items []*Availability
	for _, a := range m.windows {
		if a.DoctorID == doctorID && !a.Date.Before(from) && !a.Date.After(to) {
			items = append(items, a)
		}
	}
	return items, nil
}

func (m *mockAvailabilityRepo) PurgeByDoctor(_ context.Context, doctorID uuid.UUID) error {
	for k, a := range m.windows {
		if a.DoctorID == doctorID {
			delete(m.windows, k)
		}
	}
	return nil
}

type mockAppointmentRepo struct {
	appointments map[uuid.UUID]*Appointment
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	for _, existing := range m.appointments {
		if existing.DoctorID == a.DoctorID && existing.Date.Equal(a.Date) && existing.Time == a.Time {
			return apperr.Conflict("slot is already taken")
		}
	}
	m.appointments[a.ID] = a
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, apperr.NotFound("appointment not found")
	}
	return a, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, a *Appointment) error {
	for _, existing := range m.appointments {
		if existing.ID != a.ID && existing.DoctorID == a.DoctorID &&
			existing.Date.Equal(a.Date) && existing.Time == a.Time {
			return apperr.Conflict("slot is already taken")
		}
	}
	m.appointments[a.ID] = a
	return nil
}

func (m *mockAppointmentRepo) FindSlot(_ context.Context, doctorID uuid.UUID, date time.Time, timeOfDay string, excludeID uuid.UUID) (*Appointment, error) {
	for _, a := range m.appointments {
		if a.ID != excludeID && a.DoctorID == doctorID && a.Date.Equal(date) && a.Time == timeOfDay {
			return a, nil
		}
	}
	return nil, nil
}

func view(a *Appointment) *AppointmentView {
	return &AppointmentView{
		ID: a.ID, DoctorID: a.DoctorID, PatientID: a.PatientID,
		Date: a.Date, Time: a.Time, Status: a.Status, Reason: a.Reason,
	}
}

func (m *mockAppointmentRepo) ListUpcomingByPatient(_ context.Context, patientID uuid.UUID, from time.Time) ([]*AppointmentView, error) {
	var items []*AppointmentView
	for _, a := range m.appointments {
		if a.PatientID == patientID && !a.Date.Before(from) {
			items = append(items, view(a))
		}
	}
	return items, nil
}

func (m *mockAppointmentRepo) ListPastByPatient(_ context.Context, patientID uuid.UUID, before time.Time) ([]*AppointmentView, error) {
	var items []*AppointmentView
	for _, a := range m.appointments {
		if a.PatientID == patientID && a.Date.Before(before) {
			items = append(items, view(a))
		}
	}
	return items, nil
}

func (m *mockAppointmentRepo) ListByDoctorRange(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]*AppointmentView, error) {
	var items []*AppointmentView
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && !a.Date.Before(from) && !a.Date.After(to) {
			items = append(items, view(a))
		}
	}
	return items, nil
}

func (m *mockAppointmentRepo) ListByDoctorPatient(_ context.Context, doctorID, patientID uuid.UUID) ([]*AppointmentView, error) {
	var items []*AppointmentView
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && a.PatientID == patientID {
			items = append(items, view(a))
		}
	}
	return items, nil
}

func (m *mockAppointmentRepo) ExistsRelationship(_ context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && a.PatientID == patientID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAppointmentRepo) DistinctPatients(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*RosterEntry, int, error) {
	seen := make(map[uuid.UUID]*RosterEntry)
	for _, a := range m.appointments {
		if a.DoctorID != doctorID {
			continue
		}
		e, ok := seen[a.PatientID]
		if !ok {
			e = &RosterEntry{PatientID: a.PatientID}
			seen[a.PatientID] = e
		}
		e.Visits++
		if a.Date.After(e.LastVisit) {
			e.LastVisit = a.Date
		}
	}
	var items []*RosterEntry
	for _, e := range seen {
		items = append(items, e)
	}
	return items, len(items), nil
}

func (m *mockAppointmentRepo) ListAll(_ context.Context, limit, offset int) ([]*AppointmentView, int, error) {
	var items []*AppointmentView
	for _, a := range m.appointments {
		items = append(items, view(a))
	}
	return items, len(items), nil
}

func (m *mockAppointmentRepo) Count(_ context.Context) (int, error) {
	return len(m.appointments), nil
}

func (m *mockAppointmentRepo) CountOnDate(_ context.Context, date time.Time) (int, error) {
	n := 0
	for _, a := range m.appointments {
		if a.Date.Equal(date) {
			n++
		}
	}
	return n, nil
}

func (m *mockAppointmentRepo) PurgeByDoctor(_ context.Context, doctorID uuid.UUID) error {
	for id, a := range m.appointments {
		if a.DoctorID == doctorID {
			delete(m.appointments, id)
		}
	}
	return nil
}

type mockNoteRepo struct {
	notes map[uuid.UUID]*TreatmentNote
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[uuid.UUID]*TreatmentNote)}
}

func (m *mockNoteRepo) Upsert(_ context.Context, n *TreatmentNote) error {
	if existing, ok := m.notes[n.AppointmentID]; ok {
		existing.Diagnosis = n.Diagnosis
		existing.Prescription = n.Prescription
		existing.Notes = n.Notes
		*n = *existing
		return nil
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	m.notes[n.AppointmentID] = n
	return nil
}

func (m *mockNoteRepo) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*TreatmentNote, error) {
	n, ok := m.notes[appointmentID]
	if !ok {
		return nil, apperr.NotFound("treatment note not found")
	}
	return n, nil
}

func (m *mockNoteRepo) PurgeByDoctor(_ context.Context, _ uuid.UUID) error {
	return nil
}

type mockDoctorDir struct {
	byUser     map[uuid.UUID]uuid.UUID
	active     map[uuid.UUID]bool
	department uuid.UUID
}

func (m *mockDoctorDir) DoctorDepartment(_ context.Context, doctorID uuid.UUID) (uuid.UUID, bool, error) {
	active, ok := m.active[doctorID]
	if !ok {
		return uuid.Nil, false, apperr.NotFound("doctor not found")
	}
	return m.department, active, nil
}

func (m *mockDoctorDir) DoctorIDForUser(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	id, ok := m.byUser[userID]
	if !ok {
		return uuid.Nil, apperr.NotFound("doctor not found")
	}
	return id, nil
}

type mockPatientDir struct {
	byUser map[uuid.UUID]uuid.UUID
}

func (m *mockPatientDir) PatientIDForUser(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	id, ok := m.byUser[userID]
	if !ok {
		return uuid.Nil, apperr.NotFound("patient not found")
	}
	return id, nil
}

// -- Fixture --

type fixture struct {
	svc          *Service
	availability *mockAvailabilityRepo
	appointments *mockAppointmentRepo
	notes        *mockNoteRepo

	doctorUserID  uuid.UUID
	doctorID      uuid.UUID
	departmentID  uuid.UUID
	patientUserID uuid.UUID
	patientID     uuid.UUID
}

// Fixed clock: Monday 2026-03-02, so the booking window runs through
// 2026-03-09.
var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		availability:  newMockAvailabilityRepo(),
		appointments:  newMockAppointmentRepo(),
		notes:         newMockNoteRepo(),
		doctorUserID:  uuid.New(),
		doctorID:      uuid.New(),
		departmentID:  uuid.New(),
		patientUserID: uuid.New(),
		patientID:     uuid.New(),
	}
	doctors := &mockDoctorDir{
		byUser:     map[uuid.UUID]uuid.UUID{f.doctorUserID: f.doctorID},
		active:     map[uuid.UUID]bool{f.doctorID: true},
		department: f.departmentID,
	}
	patients := &mockPatientDir{
		byUser: map[uuid.UUID]uuid.UUID{f.patientUserID: f.patientID},
	}
	f.svc = NewService(f.availability, f.appointments, f.notes, doctors, patients, nil)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) setAvailability(t *testing.T, date, start, end string) *Availability {
	t.Helper()
	a, err := f.svc.SetAvailability(context.Background(), f.doctorUserID, SetAvailabilityInput{
		Date: date, StartTime: start, EndTime: end,
	})
	if err != nil {
		t.Fatalf("SetAvailability(%s) error: %v", date, err)
	}
	return a
}

func (f *fixture) book(t *testing.T, date, timeOfDay string) *Appointment {
	t.Helper()
	a, err := f.svc.Book(context.Background(), f.patientUserID, BookInput{
		DoctorID: f.doctorID, Date: date, Time: timeOfDay, Reason: "checkup",
	})
	if err != nil {
		t.Fatalf("Book(%s %s) error: %v", date, timeOfDay, err)
	}
	return a
}

// -- Tests --

func TestSetAvailability_OverwritesSameDate(t *testing.T) {
	f := newFixture()

	first := f.setAvailability(t, "2026-03-04", "09:00", "12:00")
	second := f.setAvailability(t, "2026-03-04", "10:00", "17:00")

	if first.ID != second.ID {
		t.Error("expected the same window to be overwritten")
	}
	if second.StartTime != "10:00" || second.EndTime != "17:00" {
		t.Errorf("expected overwritten times, got %s-%s", second.StartTime, second.EndTime)
	}
	if len(f.availability.windows) != 1 {
		t.Errorf("expected 1 window, got %d", len(f.availability.windows))
	}
}

func TestSetAvailability_Window(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		date string
	}{
		{"past date", "2026-03-01"},
		{"beyond seven days", "2026-03-10"},
	}
	for _, tc := range cases {
		_, err := f.svc.SetAvailability(ctx, f.doctorUserID, SetAvailabilityInput{
			Date: tc.date, StartTime: "09:00", EndTime: "17:00",
		})
		if apperr.KindOf(err) != apperr.KindOutOfWindow {
			t.Errorf("%s: expected out-of-window, got %v", tc.name, err)
		}
	}

	// Window boundaries are inclusive.
	f.setAvailability(t, "2026-03-02", "09:00", "17:00")
	f.setAvailability(t, "2026-03-09", "09:00", "17:00")
}

func TestSetAvailability_StartBeforeEnd(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SetAvailability(context.Background(), f.doctorUserID, SetAvailabilityInput{
		Date: "2026-03-04", StartTime: "17:00", EndTime: "09:00",
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBook(t *testing.T) {
	f := newFixture()

	a := f.book(t, "2026-03-04", "10:00")

	if a.Status != StatusBooked {
		t.Errorf("expected booked status, got %s", a.Status)
	}
	if a.PatientID != f.patientID {
		t.Error("expected appointment linked to the caller's patient profile")
	}
	if a.DepartmentID != f.departmentID {
		t.Error("expected the doctor's department recorded on the appointment")
	}
}

func TestBook_SlotConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.book(t, "2026-03-04", "10:00")

	_, err := f.svc.Book(ctx, f.patientUserID, BookInput{
		DoctorID: f.doctorID, Date: "2026-03-04", Time: "10:00",
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	// A cancelled appointment still holds its slot.
	a := f.book(t, "2026-03-04", "11:00")
	if _, err := f.svc.Cancel(ctx, f.patientUserID, a.ID); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	_, err = f.svc.Book(ctx, f.patientUserID, BookInput{
		DoctorID: f.doctorID, Date: "2026-03-04", Time: "11:00",
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict on cancelled slot, got %v", err)
	}
}

// Availability windows guide slot browsing; only a slot conflict
// blocks booking.
func TestBook_NoAvailabilityRequired(t *testing.T) {
	f := newFixture()

	a := f.book(t, "2026-03-04", "10:00")
	if a.Status != StatusBooked {
		t.Errorf("expected booked without an availability window, got %s", a.Status)
	}

	// Dates beyond the availability posting window book fine too.
	far := f.book(t, "2026-04-20", "09:00")
	if far.Status != StatusBooked {
		t.Errorf("expected booked outside the posting window, got %s", far.Status)
	}
}

func TestBook_InactiveDoctor(t *testing.T) {
	f := newFixture()
	doctors := &mockDoctorDir{
		byUser: map[uuid.UUID]uuid.UUID{f.doctorUserID: f.doctorID},
		active: map[uuid.UUID]bool{f.doctorID: false},
	}
	f.svc.doctors = doctors

	_, err := f.svc.Book(context.Background(), f.patientUserID, BookInput{
		DoctorID: f.doctorID, Date: "2026-03-04", Time: "10:00",
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for inactive doctor, got %v", err)
	}
}

func TestReschedule(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.book(t, "2026-03-04", "10:00")

	moved, err := f.svc.Reschedule(ctx, f.patientUserID, a.ID, RescheduleInput{
		Date: "2026-03-05", Time: "11:00",
	})
	if err != nil {
		t.Fatalf("Reschedule() error: %v", err)
	}
	if moved.Date.Format("2006-01-02") != "2026-03-05" || moved.Time != "11:00" {
		t.Errorf("unexpected slot %v %s", moved.Date, moved.Time)
	}
}

func TestReschedule_OwnSlotIsNotAConflict(t *testing.T) {
	f := newFixture()

	a := f.book(t, "2026-03-04", "10:00")

	if _, err := f.svc.Reschedule(context.Background(), f.patientUserID, a.ID, RescheduleInput{
		Date: "2026-03-04", Time: "10:00",
	}); err != nil {
		t.Fatalf("rescheduling onto its own slot must succeed, got %v", err)
	}
}

func TestReschedule_ResetsCancelledToBooked(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.book(t, "2026-03-04", "10:00")
	if _, err := f.svc.Cancel(ctx, f.patientUserID, a.ID); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}

	moved, err := f.svc.Reschedule(ctx, f.patientUserID, a.ID, RescheduleInput{
		Date: "2026-03-04", Time: "14:00",
	})
	if err != nil {
		t.Fatalf("Reschedule() error: %v", err)
	}
	if moved.Status != StatusBooked {
		t.Errorf("expected status reset to booked, got %s", moved.Status)
	}
}

func TestReschedule_OccupiedSlot(t *testing.T) {
	f := newFixture()

	f.book(t, "2026-03-04", "10:00")
	a := f.book(t, "2026-03-04", "11:00")

	_, err := f.svc.Reschedule(context.Background(), f.patientUserID, a.ID, RescheduleInput{
		Date: "2026-03-04", Time: "10:00",
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestReschedule_CompletedForbidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.book(t, "2026-03-04", "10:00")
	if _, err := f.svc.AdminSetStatus(ctx, a.ID, "Completed"); err != nil {
		t.Fatalf("AdminSetStatus() error: %v", err)
	}

	_, err := f.svc.Reschedule(ctx, f.patientUserID, a.ID, RescheduleInput{
		Date: "2026-03-04", Time: "14:00",
	})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCancel_Ownership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.book(t, "2026-03-04", "10:00")

	otherUser := uuid.New()
	f.svc.patients.(*mockPatientDir).byUser[otherUser] = uuid.New()

	if _, err := f.svc.Cancel(ctx, otherUser, a.ID); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden for another patient, got %v", err)
	}

	// Admins cancel through the status override instead.
	cancelled, err := f.svc.AdminSetStatus(ctx, a.ID, "Cancelled")
	if err != nil {
		t.Fatalf("AdminSetStatus() error: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}
}

func TestCancel_CompletedForbidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.book(t, "2026-03-04", "10:00")
	if _, err := f.svc.AdminSetStatus(ctx, a.ID, "Completed"); err != nil {
		t.Fatalf("AdminSetStatus() error: %v", err)
	}

	if _, err := f.svc.Cancel(ctx, f.patientUserID, a.ID); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateClinical(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.book(t, "2026-03-04", "10:00")

	updated, err := f.svc.UpdateClinical(ctx, f.doctorUserID, a.ID, ClinicalInput{
		Status: "Completed", Diagnosis: "flu", Prescription: "rest", Notes: "follow up in a week",
	})
	if err != nil {
		t.Fatalf("UpdateClinical() error: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", updated.Status)
	}

	n, err := f.notes.GetByAppointment(ctx, a.ID)
	if err != nil {
		t.Fatalf("note missing: %v", err)
	}
	if n.Diagnosis != "flu" {
		t.Errorf("unexpected diagnosis %q", n.Diagnosis)
	}

	// A second update overwrites every note field.
	if _, err := f.svc.UpdateClinical(ctx, f.doctorUserID, a.ID, ClinicalInput{
		Status: "Completed", Diagnosis: "influenza A",
	}); err != nil {
		t.Fatalf("second UpdateClinical() error: %v", err)
	}
	n, _ = f.notes.GetByAppointment(ctx, a.ID)
	if n.Diagnosis != "influenza A" || n.Prescription != "" {
		t.Errorf("expected full overwrite, got %q %q", n.Diagnosis, n.Prescription)
	}
}

// Omitting the status records the note and keeps the current status.
func TestUpdateClinical_NoteWithoutStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.book(t, "2026-03-04", "10:00")

	updated, err := f.svc.UpdateClinical(ctx, f.doctorUserID, a.ID, ClinicalInput{Diagnosis: "flu"})
	if err != nil {
		t.Fatalf("UpdateClinical() error: %v", err)
	}
	if updated.Status != StatusBooked {
		t.Errorf("expected status untouched, got %s", updated.Status)
	}

	n, err := f.notes.GetByAppointment(ctx, a.ID)
	if err != nil {
		t.Fatalf("note missing: %v", err)
	}
	if n.Diagnosis != "flu" {
		t.Errorf("unexpected diagnosis %q", n.Diagnosis)
	}
}

func TestUpdateClinical_OtherDoctorForbidden(t *testing.T) {
	f := newFixture()

	a := f.book(t, "2026-03-04", "10:00")

	otherUser, otherDoctor := uuid.New(), uuid.New()
	f.svc.doctors.(*mockDoctorDir).byUser[otherUser] = otherDoctor
	f.svc.doctors.(*mockDoctorDir).active[otherDoctor] = true

	_, err := f.svc.UpdateClinical(context.Background(), otherUser, a.ID, ClinicalInput{Status: "Completed"})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateClinical_InvalidStatus(t *testing.T) {
	f := newFixture()

	a := f.book(t, "2026-03-04", "10:00")

	_, err := f.svc.UpdateClinical(context.Background(), f.doctorUserID, a.ID, ClinicalInput{Status: "done"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPatientHistoryForDoctor_RequiresRelationship(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	strangerID := uuid.New()
	if _, err := f.svc.PatientHistoryForDoctor(ctx, f.doctorUserID, strangerID); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden without a shared appointment, got %v", err)
	}

	f.book(t, "2026-03-04", "10:00")

	items, err := f.svc.PatientHistoryForDoctor(ctx, f.doctorUserID, f.patientID)
	if err != nil {
		t.Fatalf("PatientHistoryForDoctor() error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 appointment, got %d", len(items))
	}
}

func TestPatientUpcomingAndPast(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.book(t, "2026-03-04", "10:00")

	past := &Appointment{
		DoctorID: f.doctorID, PatientID: f.patientID,
		Date: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), Time: "09:00",
		Status: StatusCompleted,
	}
	if err := f.appointments.Create(ctx, past); err != nil {
		t.Fatalf("seed past appointment: %v", err)
	}

	upcoming, err := f.svc.PatientUpcoming(ctx, f.patientUserID)
	if err != nil {
		t.Fatalf("PatientUpcoming() error: %v", err)
	}
	if len(upcoming) != 1 {
		t.Errorf("expected 1 upcoming, got %d", len(upcoming))
	}

	pastItems, err := f.svc.PatientPast(ctx, f.patientUserID)
	if err != nil {
		t.Fatalf("PatientPast() error: %v", err)
	}
	if len(pastItems) != 1 {
		t.Errorf("expected 1 past, got %d", len(pastItems))
	}
}

func TestPurgeDoctorData(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.setAvailability(t, "2026-03-04", "09:00", "17:00")
	a := f.book(t, "2026-03-04", "10:00")
	if _, err := f.svc.UpdateClinical(ctx, f.doctorUserID, a.ID, ClinicalInput{Status: "Completed"}); err != nil {
		t.Fatalf("UpdateClinical() error: %v", err)
	}

	if err := f.svc.PurgeDoctorData(ctx, f.doctorID); err != nil {
		t.Fatalf("PurgeDoctorData() error: %v", err)
	}
	if len(f.appointments.appointments) != 0 {
		t.Error("expected appointments purged")
	}
	if len(f.availability.windows) != 0 {
		t.Error("expected availability purged")
	}
}
