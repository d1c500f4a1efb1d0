package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/careconnect-api/internal/email"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
	"github.com/jwalitptl/careconnect-api/internal/service/event"
	"github.com/jwalitptl/careconnect-api/pkg/messaging"
	"github.com/jwalitptl/careconnect-api/pkg/metrics"
)

// Channels the notifier listens on.
var Channels = []string{event.AppointmentCreated, event.AppointmentStatusChanged}

// Service emails the other party of an appointment when it is booked or its
// status changes.
type Service struct {
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	emailSvc    email.Service
	metrics     *metrics.Metrics
}

func NewService(patientRepo repository.PatientRepository, doctorRepo repository.DoctorRepository,
	emailSvc email.Service, m *metrics.Metrics) *Service {
	return &Service{
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		emailSvc:    emailSvc,
		metrics:     m,
	}
}

// Handle decodes one broker message and sends the matching email.
func (s *Service) Handle(ctx context.Context, msg []byte) error {
	var env struct {
		ID      string                   `json:"id"`
		Type    string                   `json:"type"`
		Payload event.AppointmentPayload `json:"payload"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		return fmt.Errorf("invalid notification message: %w", err)
	}

	err := s.notify(ctx, env.Type, env.Payload)
	if err != nil {
		s.metrics.NotificationsFailed.WithLabelValues(env.Type).Inc()
		return err
	}
	s.metrics.NotificationsSent.WithLabelValues(env.Type).Inc()
	return nil
}

func (s *Service) notify(ctx context.Context, eventType string, p event.AppointmentPayload) error {
	patient, err := s.patientRepo.Get(ctx, p.PatientID, model.ScopeAll)
	if err != nil {
		return fmt.Errorf("failed to load patient %d: %w", p.PatientID, err)
	}
	doctor, err := s.doctorRepo.Get(ctx, p.DoctorID, model.ScopeAll)
	if err != nil {
		return fmt.Errorf("failed to load doctor %d: %w", p.DoctorID, err)
	}
	when := p.AppointmentDate.Format("Mon, 02 Jan 2006 15:04 MST")

	switch eventType {
	case event.AppointmentCreated:
		return s.emailSvc.Send(ctx, doctor.Email,
			"New appointment request",
			fmt.Sprintf("Dr. %s,\n\n%s has requested an appointment on %s.", doctor.FullName(), patient.FullName(), when))
	case event.AppointmentStatusChanged:
		return s.emailSvc.Send(ctx, patient.Email,
			fmt.Sprintf("Your appointment is %s", p.Status.Label()),
			fmt.Sprintf("%s,\n\nyour appointment with Dr. %s on %s is now %s.", patient.FullName(), doctor.FullName(), when, p.Status.Label()))
	default:
		return fmt.Errorf("unsupported event type: %s", eventType)
	}
}

// Subscribe attaches Handle to every notification channel of broker.
func (s *Service) Subscribe(ctx context.Context, broker messaging.Broker) error {
	for _, ch := range Channels {
		if err := messaging.Consume(ctx, broker, ch, s.Handle); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", ch, err)
		}
	}
	return nil
}
