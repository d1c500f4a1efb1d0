package event

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

// Event types written to the outbox. They double as the broker channel names.
const (
	PatientRegistered = "patient.registered"
	PatientDeleted    = "patient.deleted"
	PatientRestored   = "patient.restored"

	DoctorRegistered = "doctor.registered"
	DoctorDeleted    = "doctor.deleted"
	DoctorRestored   = "doctor.restored"

	AppointmentCreated       = "appointment.created"
	AppointmentUpdated       = "appointment.updated"
	AppointmentStatusChanged = "appointment.status_changed"
	AppointmentDeleted       = "appointment.deleted"
	AppointmentRestored      = "appointment.restored"
)

// ProfilePayload is carried by patient.* and doctor.* events.
type ProfilePayload struct {
	ProfileID int64      `json:"profile_id"`
	UserID    int64      `json:"user_id"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
}

// AppointmentPayload is carried by appointment.* events.
type AppointmentPayload struct {
	AppointmentID   int64                   `json:"appointment_id"`
	PatientID       int64                   `json:"patient_id"`
	DoctorID        int64                   `json:"doctor_id"`
	Status          model.AppointmentStatus `json:"status"`
	PreviousStatus  model.AppointmentStatus `json:"previous_status,omitempty"`
	AppointmentDate time.Time               `json:"appointment_date"`
}

func NewAppointmentPayload(a *model.Appointment) AppointmentPayload {
	return AppointmentPayload{
		AppointmentID:   a.ID,
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		Status:          a.Status,
		AppointmentDate: a.AppointmentDate,
	}
}

// Recorder is what services depend on to announce domain events.
type Recorder interface {
	Record(ctx context.Context, eventType string, payload interface{})
}

type EventService struct {
	outboxRepo repository.OutboxRepository
}

func NewEventService(outboxRepo repository.OutboxRepository) *EventService {
	return &EventService{outboxRepo: outboxRepo}
}

// Emit stores the event in the outbox; the worker publishes it later.
func (s *EventService) Emit(ctx context.Context, eventType string, payload interface{}) error {
	event, err := model.NewOutboxEvent(eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// Record is Emit for callers that have already committed their change.
func (s *EventService) Record(ctx context.Context, eventType string, payload interface{}) {
	if err := s.Emit(ctx, eventType, payload); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("failed to record event")
	}
}
