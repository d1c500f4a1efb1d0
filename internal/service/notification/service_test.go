package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository/memory"
	"github.com/jwalitptl/careconnect-api/internal/service/event"
	"github.com/jwalitptl/careconnect-api/pkg/messaging"
	"github.com/jwalitptl/careconnect-api/pkg/metrics"
)

type sentMail struct {
	to, subject, body string
}

type recordingSender struct {
	sent []sentMail
}

func (r *recordingSender) Send(_ context.Context, to, subject, body string) error {
	r.sent = append(r.sent, sentMail{to, subject, body})
	return nil
}

func setup(t *testing.T) (*Service, *recordingSender, *metrics.Metrics, event.AppointmentPayload) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	pu, err := model.NewUser("pat@x.test", "Pat", "Smith", nil, model.RolePatient)
	require.NoError(t, err)
	patient := &model.PatientProfile{DateOfBirth: model.NewDate(1990, 1, 1)}
	require.NoError(t, store.Patients().Register(ctx, pu, patient))

	du, err := model.NewUser("doc@x.test", "Jane", "Doe", nil, model.RoleDoctor)
	require.NoError(t, err)
	doctor := &model.DoctorProfile{Availability: true}
	require.NoError(t, store.Doctors().Register(ctx, du, doctor))

	sender := &recordingSender{}
	m := metrics.New(prometheus.NewRegistry(), "test")
	svc := NewService(store.Patients(), store.Doctors(), sender, m)

	payload := event.AppointmentPayload{
		AppointmentID:   1,
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		Status:          model.AppointmentStatusPending,
		AppointmentDate: time.Date(2030, 3, 4, 9, 30, 0, 0, time.UTC),
	}
	return svc, sender, m, payload
}

func envelope(t *testing.T, eventType string, payload event.AppointmentPayload) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	msg, err := json.Marshal(messaging.Envelope{ID: "e1", Type: eventType, Payload: json.RawMessage(raw)})
	require.NoError(t, err)
	return msg
}

func TestCreatedNotifiesDoctor(t *testing.T) {
	svc, sender, m, payload := setup(t)

	require.NoError(t, svc.Handle(context.Background(), envelope(t, event.AppointmentCreated, payload)))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "doc@x.test", sender.sent[0].to)
	assert.Contains(t, sender.sent[0].body, "Pat Smith")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues(event.AppointmentCreated)))
}

func TestStatusChangeNotifiesPatient(t *testing.T) {
	svc, sender, _, payload := setup(t)
	payload.Status = model.AppointmentStatusConfirmed
	payload.PreviousStatus = model.AppointmentStatusPending

	require.NoError(t, svc.Handle(context.Background(), envelope(t, event.AppointmentStatusChanged, payload)))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "pat@x.test", sender.sent[0].to)
	assert.Equal(t, "Your appointment is Confirmed", sender.sent[0].subject)
}

func TestHandleFailures(t *testing.T) {
	svc, sender, m, payload := setup(t)
	ctx := context.Background()

	assert.Error(t, svc.Handle(ctx, []byte("not json")))

	payload.DoctorID = 404
	assert.Error(t, svc.Handle(ctx, envelope(t, event.AppointmentCreated, payload)))
	assert.Empty(t, sender.sent)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsFailed.WithLabelValues(event.AppointmentCreated)))
}
