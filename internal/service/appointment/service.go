package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/careconnect-api/internal/access"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
	"github.com/jwalitptl/careconnect-api/internal/service/audit"
	"github.com/jwalitptl/careconnect-api/internal/service/common"
	"github.com/jwalitptl/careconnect-api/internal/service/event"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

const resource = "appointment"

type Service struct {
	repo        repository.AppointmentRepository
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	events      event.Recorder
	auditor     *audit.Service
	location    *time.Location
	now         func() time.Time
}

type Option func(*Service)

// WithLocation sets the zone that decides which appointments are today's.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo repository.AppointmentRepository, patientRepo repository.PatientRepository, doctorRepo repository.DoctorRepository,
	events event.Recorder, auditor *audit.Service, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		events:      events,
		auditor:     auditor,
		location:    time.UTC,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create books an appointment for the calling patient. Any patient id in the
// request is ignored and the appointment always starts pending.
func (s *Service) Create(ctx context.Context, principal model.Principal, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if !access.IsPatient(principal) {
		return nil, apperrors.Forbidden("only patients can book appointments")
	}
	patient, err := s.callerPatient(ctx, principal)
	if err != nil {
		return nil, err
	}
	doctor, err := s.doctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: req.AppointmentDate,
		Status:          model.AppointmentStatusPending,
		Reason:          req.Reason,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create appointment: %w", err))
	}
	appt.PatientName = patient.FullName()
	appt.DoctorName = doctor.FullName()

	s.events.Record(ctx, event.AppointmentCreated, event.NewAppointmentPayload(appt))
	return appt, nil
}

// List returns the appointments the caller may see: all for admins, their
// own for patients and doctors. Only admins may include deleted ones.
func (s *Service) List(ctx context.Context, principal model.Principal, status *model.AppointmentStatus, scope model.Scope) ([]*model.Appointment, error) {
	if scope == model.ScopeAll && !access.IsAdmin(principal) {
		return nil, apperrors.Forbidden("")
	}
	filter := model.AppointmentFilter{Status: status, Scope: scope}

	switch {
	case access.IsAdmin(principal):
	case access.IsPatient(principal):
		patient, err := s.callerPatient(ctx, principal)
		if err != nil {
			return nil, err
		}
		filter.PatientID = &patient.ID
	case access.IsDoctor(principal):
		doctor, err := s.callerDoctor(ctx, principal)
		if err != nil {
			return nil, err
		}
		filter.DoctorID = &doctor.ID
	default:
		return nil, apperrors.Forbidden("")
	}

	appts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appts, nil
}

// Get lets admins see any appointment and patients or doctors only the ones
// they take part in.
func (s *Service) Get(ctx context.Context, principal model.Principal, id int64) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id, model.ScopeActive)
	if err != nil {
		return nil, common.FromRepo(resource, err)
	}

	switch {
	case access.IsAdmin(principal):
		return appt, nil
	case access.IsPatient(principal):
		patient, err := s.callerPatient(ctx, principal)
		if err != nil {
			return nil, err
		}
		if appt.PatientID == patient.ID {
			return appt, nil
		}
	case access.IsDoctor(principal):
		doctor, err := s.callerDoctor(ctx, principal)
		if err != nil {
			return nil, err
		}
		if appt.DoctorID == doctor.ID {
			return appt, nil
		}
	}
	return nil, apperrors.Forbidden("you do not have permission to view this appointment")
}

// Update is reserved to the appointment's own patient. Status changes must
// follow the allowed transitions.
func (s *Service) Update(ctx context.Context, principal model.Principal, id int64, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appt, err := s.ownedByCaller(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	previous := appt.Status
	if req.Status != nil {
		if err := previous.ValidateTransition(*req.Status); err != nil {
			return nil, apperrors.Field("status", transitionMessage(previous, *req.Status, err))
		}
	}
	if req.DoctorID != nil && *req.DoctorID != appt.DoctorID {
		doctor, err := s.doctor(ctx, *req.DoctorID)
		if err != nil {
			return nil, err
		}
		appt.DoctorName = doctor.FullName()
	}

	req.Apply(appt)
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, common.FromRepo(resource, err)
	}

	payload := event.NewAppointmentPayload(appt)
	s.events.Record(ctx, event.AppointmentUpdated, payload)
	if appt.Status != previous {
		payload.PreviousStatus = previous
		s.events.Record(ctx, event.AppointmentStatusChanged, payload)
	}
	return appt, nil
}

// Delete soft deletes; admins may delete any appointment, patients their own.
func (s *Service) Delete(ctx context.Context, principal model.Principal, id int64) error {
	var appt *model.Appointment
	var err error
	if access.IsAdmin(principal) {
		appt, err = s.repo.Get(ctx, id, model.ScopeActive)
		err = common.FromRepo(resource, err)
	} else {
		appt, err = s.ownedByCaller(ctx, principal, id)
	}
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return common.FromRepo(resource, err)
	}

	s.events.Record(ctx, event.AppointmentDeleted, event.NewAppointmentPayload(appt))
	s.auditor.Record(ctx, audit.Entry{
		UserID:     &principal.UserID,
		Action:     model.AuditActionDelete,
		EntityType: model.AuditEntityAppointment,
		EntityID:   id,
	})
	return nil
}

// Restore is admin only and fails with not found unless the appointment is deleted.
func (s *Service) Restore(ctx context.Context, principal model.Principal, id int64) (*model.Appointment, error) {
	if err := access.RequireRole(principal, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, common.FromRepo(resource, err)
	}
	appt, err := s.repo.Get(ctx, id, model.ScopeActive)
	if err != nil {
		return nil, common.FromRepo(resource, err)
	}

	s.events.Record(ctx, event.AppointmentRestored, event.NewAppointmentPayload(appt))
	s.auditor.Record(ctx, audit.Entry{
		UserID:     &principal.UserID,
		Action:     model.AuditActionRestore,
		EntityType: model.AuditEntityAppointment,
		EntityID:   id,
	})
	return appt, nil
}

func (s *Service) ownedByCaller(ctx context.Context, principal model.Principal, id int64) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id, model.ScopeActive)
	if err != nil {
		return nil, common.FromRepo(resource, err)
	}
	if !access.IsPatient(principal) {
		return nil, apperrors.Forbidden("only the patient who booked the appointment can change it")
	}
	patient, err := s.callerPatient(ctx, principal)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != patient.ID {
		return nil, apperrors.Forbidden("only the patient who booked the appointment can change it")
	}
	return appt, nil
}

func (s *Service) doctor(ctx context.Context, id int64) (*model.DoctorProfile, error) {
	doctor, err := s.doctorRepo.Get(ctx, id, model.ScopeActive)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, common.MissingObject("doctor_id", id)
		}
		return nil, apperrors.Internal(err)
	}
	return doctor, nil
}

func (s *Service) callerPatient(ctx context.Context, principal model.Principal) (*model.PatientProfile, error) {
	patient, err := s.patientRepo.GetByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, common.FromRepo("patient profile", err)
	}
	return patient, nil
}

func (s *Service) callerDoctor(ctx context.Context, principal model.Principal) (*model.DoctorProfile, error) {
	doctor, err := s.doctorRepo.GetByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, common.FromRepo("doctor profile", err)
	}
	return doctor, nil
}

func transitionMessage(from, to model.AppointmentStatus, err error) string {
	if errors.Is(err, model.ErrInvalidStatus) {
		return fmt.Sprintf("%q is not a valid choice.", to)
	}
	return fmt.Sprintf("Cannot change status from %s to %s.", from, to)
}
