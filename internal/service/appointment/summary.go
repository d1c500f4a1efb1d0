package appointment

import (
	"context"
	"strconv"
	"time"

	"github.com/jwalitptl/careconnect-api/internal/access"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/service/common"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

// PatientSummary aggregates a patient's appointments. Admins name the patient
// with rawPatientID; patients always get their own summary and the parameter
// is ignored. Checks run in a fixed order: the admin parameter is validated
// (missing or malformed is 400, unknown is 404) before anything is read, and
// every role other than admin and patient is refused with 403.
func (s *Service) PatientSummary(ctx context.Context, principal model.Principal, rawPatientID string) (*model.PatientAppointmentSummary, error) {
	var patientID int64

	switch {
	case access.IsAdmin(principal):
		id, err := parseID("patient_id", rawPatientID)
		if err != nil {
			return nil, err
		}
		patient, err := s.patientRepo.Get(ctx, id, model.ScopeActive)
		if err != nil {
			return nil, common.FromRepo("patient", err)
		}
		patientID = patient.ID
	case access.IsPatient(principal):
		patient, err := s.callerPatient(ctx, principal)
		if err != nil {
			return nil, err
		}
		patientID = patient.ID
	default:
		return nil, apperrors.Forbidden("")
	}

	appts, err := s.repo.List(ctx, model.AppointmentFilter{PatientID: &patientID})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return model.NewPatientSummary(appts), nil
}

// DoctorSummary mirrors PatientSummary for doctors and adds today's pending
// or confirmed appointments.
func (s *Service) DoctorSummary(ctx context.Context, principal model.Principal, rawDoctorID string) (*model.DoctorAppointmentSummary, error) {
	var doctorID int64

	switch {
	case access.IsAdmin(principal):
		id, err := parseID("doctor_id", rawDoctorID)
		if err != nil {
			return nil, err
		}
		doctor, err := s.doctorRepo.Get(ctx, id, model.ScopeActive)
		if err != nil {
			return nil, common.FromRepo("doctor", err)
		}
		doctorID = doctor.ID
	case access.IsDoctor(principal):
		doctor, err := s.callerDoctor(ctx, principal)
		if err != nil {
			return nil, err
		}
		doctorID = doctor.ID
	default:
		return nil, apperrors.Forbidden("")
	}

	appts, err := s.repo.List(ctx, model.AppointmentFilter{DoctorID: &doctorID})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return model.NewDoctorSummary(appts, s.today()), nil
}

// today is the start of the current calendar day in the configured zone.
func (s *Service) today() time.Time {
	now := s.now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
}

func parseID(param, raw string) (int64, error) {
	if raw == "" {
		return 0, apperrors.Field(param, "This query parameter is required.")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Field(param, "A valid integer is required.")
	}
	return id, nil
}
