package appointment

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository/memory"
	"github.com/jwalitptl/careconnect-api/internal/service/audit"
	"github.com/jwalitptl/careconnect-api/internal/service/event"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

var admin = model.Principal{UserID: 1000, Role: model.RoleAdmin}

type party struct {
	principal model.Principal
	profileID int64
}

type fixture struct {
	store *memory.Store
	svc   *Service
	now   time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	now := time.Date(2030, 6, 15, 10, 0, 0, 0, time.UTC)
	svc := NewService(store.Appointments(), store.Patients(), store.Doctors(),
		event.NewEventService(store.Outbox()), audit.NewService(store.Audit()),
		WithLocation(time.UTC), WithClock(func() time.Time { return now }))
	return &fixture{store: store, svc: svc, now: now}
}

func (f *fixture) patient(t *testing.T, email string) party {
	t.Helper()
	u, err := model.NewUser(email, "Pat", "Ient", nil, model.RolePatient)
	require.NoError(t, err)
	p := &model.PatientProfile{DateOfBirth: model.NewDate(1990, 5, 5)}
	require.NoError(t, f.store.Patients().Register(context.Background(), u, p))
	return party{principal: model.Principal{UserID: u.ID, Role: model.RolePatient}, profileID: p.ID}
}

func (f *fixture) doctor(t *testing.T, email string) party {
	t.Helper()
	u, err := model.NewUser(email, "Doc", "Tor", nil, model.RoleDoctor)
	require.NoError(t, err)
	d := &model.DoctorProfile{Availability: true}
	require.NoError(t, f.store.Doctors().Register(context.Background(), u, d))
	return party{principal: model.Principal{UserID: u.ID, Role: model.RoleDoctor}, profileID: d.ID}
}

func (f *fixture) book(t *testing.T, p, d party, at time.Time) *model.Appointment {
	t.Helper()
	appt, err := f.svc.Create(context.Background(), p.principal, &model.CreateAppointmentRequest{DoctorID: d.profileID, AppointmentDate: at})
	require.NoError(t, err)
	return appt
}

func TestCreateForcesCallerAsPatient(t *testing.T) {
	f := setup(t)
	p1 := f.patient(t, "p1@x.test")
	p2 := f.patient(t, "p2@x.test")
	d := f.doctor(t, "d@x.test")

	other := p2.profileID
	appt, err := f.svc.Create(context.Background(), p1.principal, &model.CreateAppointmentRequest{
		DoctorID:        d.profileID,
		PatientID:       &other,
		AppointmentDate: f.now.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, p1.profileID, appt.PatientID)
	assert.Equal(t, model.AppointmentStatusPending, appt.Status)
	assert.Equal(t, "Doc Tor", appt.DoctorName)

	events := f.store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, event.AppointmentCreated, events[0].EventType)
}

func TestCreateRules(t *testing.T) {
	f := setup(t)
	p := f.patient(t, "p@x.test")
	d := f.doctor(t, "d@x.test")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, d.principal, &model.CreateAppointmentRequest{DoctorID: d.profileID, AppointmentDate: f.now})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	_, err = f.svc.Create(ctx, p.principal, &model.CreateAppointmentRequest{DoctorID: 999, AppointmentDate: f.now})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "doctor_id")
}

func TestListAndGetAreRoleScoped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p1 := f.patient(t, "p1@x.test")
	p2 := f.patient(t, "p2@x.test")
	d1 := f.doctor(t, "d1@x.test")
	d2 := f.doctor(t, "d2@x.test")

	a1 := f.book(t, p1, d1, f.now.Add(time.Hour))
	f.book(t, p2, d2, f.now.Add(2*time.Hour))

	all, err := f.svc.List(ctx, admin, nil, model.ScopeActive)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.List(ctx, p1.principal, nil, model.ScopeActive)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, a1.ID, mine[0].ID)

	docs, err := f.svc.List(ctx, d2.principal, nil, model.ScopeActive)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotEqual(t, a1.ID, docs[0].ID)

	_, err = f.svc.Get(ctx, d1.principal, a1.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, admin, a1.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, p2.principal, a1.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
	_, err = f.svc.Get(ctx, d2.principal, a1.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
	_, err = f.svc.Get(ctx, admin, 999)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestUpdateValidatesTransitions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.patient(t, "p@x.test")
	d := f.doctor(t, "d@x.test")
	appt := f.book(t, p, d, f.now.Add(time.Hour))

	confirmed := model.AppointmentStatusConfirmed
	updated, err := f.svc.Update(ctx, p.principal, appt.ID, &model.UpdateAppointmentRequest{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, confirmed, updated.Status)

	pending := model.AppointmentStatusPending
	_, err = f.svc.Update(ctx, p.principal, appt.ID, &model.UpdateAppointmentRequest{Status: &pending})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Cannot change status from confirmed to pending.", appErr.Fields["status"])

	// same status again is a no-op
	_, err = f.svc.Update(ctx, p.principal, appt.ID, &model.UpdateAppointmentRequest{Status: &confirmed})
	require.NoError(t, err)

	var types []string
	for _, e := range f.store.OutboxEvents() {
		types = append(types, e.EventType)
	}
	assert.Equal(t, []string{
		event.AppointmentCreated,
		event.AppointmentUpdated, event.AppointmentStatusChanged,
		event.AppointmentUpdated,
	}, types)
}

func TestUpdateOnlyByOwningPatient(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p1 := f.patient(t, "p1@x.test")
	p2 := f.patient(t, "p2@x.test")
	d := f.doctor(t, "d@x.test")
	appt := f.book(t, p1, d, f.now.Add(time.Hour))

	reason := "checkup"
	for _, caller := range []model.Principal{p2.principal, d.principal, admin} {
		_, err := f.svc.Update(ctx, caller, appt.ID, &model.UpdateAppointmentRequest{Reason: &reason})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden), "caller %v", caller.Role)
	}

	assert.True(t, apperrors.IsCode(f.svc.Delete(ctx, p2.principal, appt.ID), apperrors.ErrForbidden))
	require.NoError(t, f.svc.Delete(ctx, p1.principal, appt.ID))
	_, err := f.svc.Get(ctx, admin, appt.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestPatientSummary(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.patient(t, "p@x.test")
	d := f.doctor(t, "d@x.test")

	a1 := f.book(t, p, d, f.now.Add(time.Hour))
	f.book(t, p, d, f.now.Add(48*time.Hour))
	a3 := f.book(t, p, d, f.now.Add(72*time.Hour))
	confirmed := model.AppointmentStatusConfirmed
	cancelled := model.AppointmentStatusCancelled
	_, err := f.svc.Update(ctx, p.principal, a1.ID, &model.UpdateAppointmentRequest{Status: &confirmed})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, p.principal, a3.ID, &model.UpdateAppointmentRequest{Status: &cancelled})
	require.NoError(t, err)

	summary, err := f.svc.PatientSummary(ctx, p.principal, "12345")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSummary{Pending: 1, Confirmed: 1, Cancelled: 1}, summary.Summary)
	assert.Equal(t, 3, summary.Summary.Total())
	require.Len(t, summary.Upcoming, 1)
	assert.Equal(t, a1.ID, summary.Upcoming[0].ID)
	assert.Equal(t, "Doc Tor", summary.Upcoming[0].Doctor)

	byAdmin, err := f.svc.PatientSummary(ctx, admin, "1")
	require.NoError(t, err)
	assert.Equal(t, summary.Summary, byAdmin.Summary)
}

func TestDoctorSummaryToday(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.patient(t, "p@x.test")
	d := f.doctor(t, "d@x.test")

	today := f.book(t, p, d, f.now.Add(3*time.Hour))
	f.book(t, p, d, f.now.Add(26*time.Hour))
	cancelledToday := f.book(t, p, d, f.now.Add(time.Hour))
	cancelled := model.AppointmentStatusCancelled
	_, err := f.svc.Update(ctx, p.principal, cancelledToday.ID, &model.UpdateAppointmentRequest{Status: &cancelled})
	require.NoError(t, err)

	summary, err := f.svc.DoctorSummary(ctx, d.principal, "")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Summary.Total())
	require.Len(t, summary.Today, 1)
	assert.Equal(t, today.ID, summary.Today[0].ID)
	assert.Equal(t, "Pat Ient", summary.Today[0].Patient)
	assert.Empty(t, summary.Upcoming)
}

func TestSummaryPrecedence(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.patient(t, "p@x.test")
	d := f.doctor(t, "d@x.test")

	_, err := f.svc.PatientSummary(ctx, admin, "")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "patient_id")

	_, err = f.svc.PatientSummary(ctx, admin, "abc")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))

	_, err = f.svc.PatientSummary(ctx, admin, "999")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	// a doctor is refused even without a patient_id
	_, err = f.svc.PatientSummary(ctx, d.principal, "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	_, err = f.svc.DoctorSummary(ctx, p.principal, "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	_, err = f.svc.DoctorSummary(ctx, admin, "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))

	require.NoError(t, f.store.Doctors().SoftDelete(ctx, d.profileID))
	_, err = f.svc.DoctorSummary(ctx, admin, "1")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestDeletedAppointmentsListedForAdminAndRestored(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.patient(t, "p@x.test")
	d := f.doctor(t, "d@x.test")
	appt := f.book(t, p, d, f.now.Add(time.Hour))
	require.NoError(t, f.svc.Delete(ctx, p.principal, appt.ID))

	live, err := f.svc.List(ctx, admin, nil, model.ScopeActive)
	require.NoError(t, err)
	assert.Empty(t, live)

	_, err = f.svc.List(ctx, p.principal, nil, model.ScopeAll)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	withDeleted, err := f.svc.List(ctx, admin, nil, model.ScopeAll)
	require.NoError(t, err)
	require.Len(t, withDeleted, 1)
	assert.True(t, withDeleted[0].IsDeleted)
	assert.NotNil(t, withDeleted[0].DeletedAt)

	_, err = f.svc.Restore(ctx, p.principal, appt.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	restored, err := f.svc.Restore(ctx, admin, appt.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)

	// a live appointment cannot be restored again
	_, err = f.svc.Restore(ctx, admin, appt.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	mine, err := f.svc.List(ctx, p.principal, nil, model.ScopeActive)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, appt.ID, mine[0].ID)

	events := f.store.OutboxEvents()
	assert.Equal(t, event.AppointmentRestored, events[len(events)-1].EventType)
	logs := f.store.AuditLogs()
	require.NotEmpty(t, logs)
	last := logs[len(logs)-1]
	assert.Equal(t, model.AuditActionRestore, last.Action)
	assert.Equal(t, model.AuditEntityAppointment, last.EntityType)
	assert.Equal(t, strconv.FormatInt(appt.ID, 10), last.EntityID)
}
