package appointment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinica/clinica/internal/platform/httperr"
)

// -- Mock Repository --

type mockPatient struct {
	accountID uuid.UUID
	active    bool
	firstName string
	lastName  string
}

type mockRepo struct {
	appts    map[uuid.UUID]*Appointment
	patients map[uuid.UUID]*mockPatient
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		appts:    make(map[uuid.UUID]*Appointment),
		patients: make(map[uuid.UUID]*mockPatient),
	}
}

func (m *mockRepo) addPatient(accountID uuid.UUID, first, last string) uuid.UUID {
	id := uuid.New()
	m.patients[id] = &mockPatient{accountID: accountID, active: true, firstName: first, lastName: last}
	return id
}

func (m *mockRepo) join(a *Appointment) *Appointment {
	copied := *a
	copied.joinedFirstName = nil
	copied.joinedLastName = nil
	if a.PatientID != nil {
		if p, ok := m.patients[*a.PatientID]; ok && p.active {
			copied.joinedFirstName = &p.firstName
			copied.joinedLastName = &p.lastName
		}
	}
	copied.resolveName()
	return &copied
}

func (m *mockRepo) ListAll(_ context.Context, accountID uuid.UUID) ([]*Appointment, error) {
	var out []*Appointment
	for _, a := range m.appts {
		if a.AccountID == accountID {
			out = append(out, m.join(a))
		}
	}
	return out, nil
}

func (m *mockRepo) ListByDate(_ context.Context, accountID uuid.UUID, day time.Time) ([]*Appointment, error) {
	var out []*Appointment
	for _, a := range m.appts {
		if a.AccountID == accountID && a.Day.Equal(day) {
			out = append(out, m.join(a))
		}
	}
	return out, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, accountID, patientID uuid.UUID) ([]*Appointment, error) {
	var out []*Appointment
	for _, a := range m.appts {
		if a.AccountID == accountID && a.PatientID != nil && *a.PatientID == patientID {
			out = append(out, m.join(a))
		}
	}
	return out, nil
}

func (m *mockRepo) FindByID(_ context.Context, accountID, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok || a.AccountID != accountID {
		return nil, httperr.ErrNotFound
	}
	return m.join(a), nil
}

func (m *mockRepo) Create(_ context.Context, accountID uuid.UUID, a *Appointment) error {
	if a.PatientID != nil && *a.PatientID != uuid.Nil {
		p, ok := m.patients[*a.PatientID]
		if !ok || !p.active || p.accountID != accountID {
			return fmt.Errorf("patient: %w", httperr.ErrNotFound)
		}
	}
	a.ID = uuid.New()
	a.AccountID = accountID
	a.UpdatedAt = time.Now()
	m.appts[a.ID] = a
	return nil
}

func (m *mockRepo) Update(_ context.Context, accountID uuid.UUID, a *Appointment) error {
	existing, ok := m.appts[a.ID]
	if !ok || existing.AccountID != accountID {
		return httperr.ErrNotFound
	}
	existing.Day = a.Day
	existing.TimeOfDay = a.TimeOfDay
	existing.Coverage = a.Coverage
	existing.Status = a.Status
	existing.ArrivalTime = a.ArrivalTime
	existing.Detail = a.Detail
	existing.FirstVisit = a.FirstVisit
	existing.VisitID = a.VisitID
	existing.UpdatedAt = time.Now()
	return nil
}

func (m *mockRepo) SetStatus(_ context.Context, accountID, id uuid.UUID, status string, arrivalTime *string) error {
	a, ok := m.appts[id]
	if !ok || a.AccountID != accountID {
		return httperr.ErrNotFound
	}
	a.Status = status
	if arrivalTime != nil {
		a.ArrivalTime = arrivalTime
	}
	a.UpdatedAt = time.Now()
	return nil
}

func (m *mockRepo) Delete(_ context.Context, accountID, id uuid.UUID) error {
	a, ok := m.appts[id]
	if !ok || a.AccountID != accountID {
		return httperr.ErrNotFound
	}
	delete(m.appts, id)
	return nil
}

// -- Tests --

func str(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateAppointment_RequiresNamingSource(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Create(context.Background(), uuid.New(), &Appointment{
		Day:       day(2026, 9, 1),
		TimeOfDay: "10:00",
	})
	if !errors.Is(err, httperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateAppointment_RequiresDayAndTime(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	acc := uuid.New()
	pid := repo.addPatient(acc, "Ana", "Gomez")

	_, err := svc.Create(context.Background(), acc, &Appointment{PatientID: &pid})
	if !errors.Is(err, httperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateAppointment_WithPatientReference(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	acc := uuid.New()
	pid := repo.addPatient(acc, "Ana", "Gomez")

	a, err := svc.Create(context.Background(), acc, &Appointment{
		PatientID: &pid,
		Day:       day(2026, 9, 1),
		TimeOfDay: "10:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status must default to scheduled, got %q", a.Status)
	}
	if a.FirstVisit {
		t.Error("first visit must default to false")
	}
	if a.FirstName != "Ana" || a.LastName != "Gomez" {
		t.Errorf("expected resolved patient name, got %q %q", a.FirstName, a.LastName)
	}
}

func TestCreateAppointment_WalkInWithTemporaryName(t *testing.T) {
	svc := NewService(newMockRepo())
	a, err := svc.Create(context.Background(), uuid.New(), &Appointment{
		Day:           day(2026, 9, 1),
		TimeOfDay:     "10:30",
		TempFirstName: str("Walk"),
		TempLastName:  str("In"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.FirstName != "Walk" || a.LastName != "In" {
		t.Errorf("expected temporary name, got %q %q", a.FirstName, a.LastName)
	}
}

func TestCreateAppointment_RejectsUnknownStatus(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	acc := uuid.New()
	pid := repo.addPatient(acc, "Ana", "Gomez")

	_, err := svc.Create(context.Background(), acc, &Appointment{
		PatientID: &pid,
		Day:       day(2026, 9, 1),
		TimeOfDay: "10:00",
		Status:    "teleported",
	})
	if !errors.Is(err, httperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateAppointment_ForeignPatientRejected(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	accA, accB := uuid.New(), uuid.New()
	pid := repo.addPatient(accA, "Ana", "Gomez")

	_, err := svc.Create(context.Background(), accB, &Appointment{
		PatientID: &pid,
		Day:       day(2026, 9, 1),
		TimeOfDay: "10:00",
	})
	if !errors.Is(err, httperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestAppointmentNameResolution_AfterPatientSoftDelete(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	acc := uuid.New()
	pid := repo.addPatient(acc, "Ana", "Gomez")

	created, err := svc.Create(ctx, acc, &Appointment{
		PatientID:     &pid,
		Day:           day(2026, 9, 1),
		TimeOfDay:     "10:00",
		TempFirstName: str("Ana (walk-in)"),
		TempLastName:  str("Gomez"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.FirstName != "Ana" {
		t.Errorf("active patient name must win, got %q", created.FirstName)
	}

	repo.patients[pid].active = false

	// The slot still appears, now under its temporary name.
	got, err := svc.Get(ctx, acc, created.ID)
	if err != nil {
		t.Fatalf("appointment must survive patient soft delete: %v", err)
	}
	if got.FirstName != "Ana (walk-in)" {
		t.Errorf("expected temporary name fallback, got %q", got.FirstName)
	}

	list, _ := svc.List(ctx, acc)
	if len(list) != 1 {
		t.Fatalf("listing must keep the slot, got %d", len(list))
	}
}

func TestAppointmentTenantIsolation(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	accA, accB := uuid.New(), uuid.New()

	created, err := svc.Create(ctx, accA, &Appointment{
		Day:           day(2026, 9, 1),
		TimeOfDay:     "10:00",
		TempFirstName: str("Walk"),
		TempLastName:  str("In"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if list, _ := svc.List(ctx, accB); len(list) != 0 {
		t.Errorf("tenant B must see no appointments, got %d", len(list))
	}
	if _, err := svc.Get(ctx, accB, created.ID); !errors.Is(err, httperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := svc.SetStatus(ctx, accB, created.ID, StatusWaiting, nil); !errors.Is(err, httperr.ErrNotFound) {
		t.Errorf("expected not found on status change, got %v", err)
	}
	if err := svc.Delete(ctx, accB, created.ID); !errors.Is(err, httperr.ErrNotFound) {
		t.Errorf("expected not found on delete, got %v", err)
	}
}

func TestSetStatus_FreeTransitions(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	acc := uuid.New()

	created, _ := svc.Create(ctx, acc, &Appointment{
		Day: day(2026, 9, 1), TimeOfDay: "10:00",
		TempFirstName: str("Walk"), TempLastName: str("In"),
	})

	// Any status may follow any other, including moving backwards.
	for _, status := range []string{StatusWaiting, StatusAttended, StatusScheduled, StatusCancelled, StatusAbsent} {
		got, err := svc.SetStatus(ctx, acc, created.ID, status, nil)
		if err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
		if got.Status != status {
			t.Errorf("expected %s, got %s", status, got.Status)
		}
	}

	if _, err := svc.SetStatus(ctx, acc, created.ID, "paused", nil); !errors.Is(err, httperr.ErrValidation) {
		t.Errorf("unknown status must fail validation, got %v", err)
	}
}

func TestSetStatus_StampsArrivalTime(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	acc := uuid.New()

	created, _ := svc.Create(ctx, acc, &Appointment{
		Day: day(2026, 9, 1), TimeOfDay: "10:00",
		TempFirstName: str("Walk"), TempLastName: str("In"),
	})

	got, err := svc.SetStatus(ctx, acc, created.ID, StatusWaiting, str("10:05"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ArrivalTime == nil || *got.ArrivalTime != "10:05" {
		t.Errorf("arrival time not stamped: %v", got.ArrivalTime)
	}

	// A later change without an arrival time keeps the stamp.
	got, _ = svc.SetStatus(ctx, acc, created.ID, StatusAttended, nil)
	if got.ArrivalTime == nil || *got.ArrivalTime != "10:05" {
		t.Errorf("arrival time must persist, got %v", got.ArrivalTime)
	}
}

func TestListToday(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	acc := uuid.New()

	today := day(2026, 8, 31)
	svc.now = func() time.Time { return time.Date(2026, 8, 31, 9, 15, 0, 0, time.UTC) }

	svc.Create(ctx, acc, &Appointment{Day: today, TimeOfDay: "10:00", TempFirstName: str("A"), TempLastName: str("B")})
	svc.Create(ctx, acc, &Appointment{Day: day(2026, 9, 1), TimeOfDay: "10:00", TempFirstName: str("C"), TempLastName: str("D")})

	list, err := svc.ListToday(ctx, acc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || !list[0].Day.Equal(today) {
		t.Errorf("expected only today's slot, got %+v", list)
	}
}

func TestListToday_LateEveningLocalClock(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	acc := uuid.New()

	// 22:00 local on Aug 30 in a UTC-3 zone is already Aug 31 in UTC.
	// The agenda must still show the 30th.
	local := time.FixedZone("-03", -3*60*60)
	svc.now = func() time.Time { return time.Date(2026, 8, 30, 22, 0, 0, 0, local) }

	svc.Create(ctx, acc, &Appointment{Day: day(2026, 8, 30), TimeOfDay: "23:00", TempFirstName: str("A"), TempLastName: str("B")})
	svc.Create(ctx, acc, &Appointment{Day: day(2026, 8, 31), TimeOfDay: "09:00", TempFirstName: str("C"), TempLastName: str("D")})

	list, err := svc.ListToday(ctx, acc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || !list[0].Day.Equal(day(2026, 8, 30)) {
		t.Errorf("expected the local day's slot, got %+v", list)
	}
}

func TestUpdateAppointment_LinksVisit(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	acc := uuid.New()
	pid := repo.addPatient(acc, "Ana", "Gomez")

	created, _ := svc.Create(ctx, acc, &Appointment{
		PatientID: &pid, Day: day(2026, 9, 1), TimeOfDay: "10:00",
	})

	visitID := uuid.New()
	updated, err := svc.Update(ctx, acc, created.ID, &Appointment{
		Day: day(2026, 9, 2), TimeOfDay: "11:00",
		Status: StatusAttended, VisitID: &visitID, FirstVisit: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.VisitID == nil || *updated.VisitID != visitID {
		t.Errorf("visit link not stored: %v", updated.VisitID)
	}
	if !updated.Day.Equal(day(2026, 9, 2)) || updated.TimeOfDay != "11:00" || !updated.FirstVisit {
		t.Errorf("update not applied: %+v", updated)
	}
	// The naming source does not move on update.
	if updated.PatientID == nil || *updated.PatientID != pid {
		t.Error("patient reference must survive updates")
	}
}
