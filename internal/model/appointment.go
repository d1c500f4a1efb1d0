package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

var (
	ErrInvalidStatus     = errors.New("invalid appointment status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

var statusLabels = map[AppointmentStatus]string{
	AppointmentStatusPending:   "Pending",
	AppointmentStatusConfirmed: "Confirmed",
	AppointmentStatusCancelled: "Cancelled",
	AppointmentStatusCompleted: "Completed",
}

var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled},
}

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	st := AppointmentStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s AppointmentStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s AppointmentStatus) Label() string {
	return statusLabels[s]
}

// Terminal statuses accept no further transitions.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusCompleted
}

// CanTransitionTo reports whether next may follow s. Staying on the same
// status is always allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) ValidateTransition(next AppointmentStatus) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return nil
}

type Appointment struct {
	ID              int64             `json:"id" db:"id"`
	PatientID       int64             `json:"patient_id" db:"patient_id"`
	DoctorID        int64             `json:"doctor_id" db:"doctor_id"`
	PatientName     string            `json:"patient" db:"patient_name"`
	DoctorName      string            `json:"doctor" db:"doctor_name"`
	AppointmentDate time.Time         `json:"appointment_date" db:"appointment_date"`
	Status          AppointmentStatus `json:"status" db:"status"`
	Reason          *string           `json:"reason" db:"reason"`
	SoftDelete
	Timestamps
}

// MarshalJSON adds the display label next to the status.
func (a Appointment) MarshalJSON() ([]byte, error) {
	type plain Appointment
	return json.Marshal(struct {
		plain
		StatusLabel string `json:"status_label"`
	}{plain: plain(a), StatusLabel: a.Status.Label()})
}

// CreateAppointmentRequest ignores patient_id and status; the appointment is
// always owned by the calling patient and starts pending.
type CreateAppointmentRequest struct {
	DoctorID        int64     `json:"doctor_id" binding:"required,gt=0"`
	PatientID       *int64    `json:"patient_id"`
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	Reason          *string   `json:"reason"`
}

type UpdateAppointmentRequest struct {
	DoctorID        *int64             `json:"doctor_id" binding:"omitempty,gt=0"`
	AppointmentDate *time.Time         `json:"appointment_date"`
	Reason          *string            `json:"reason"`
	Status          *AppointmentStatus `json:"status" binding:"omitempty,oneof=pending confirmed cancelled completed"`
}

func (r UpdateAppointmentRequest) Apply(a *Appointment) {
	if r.DoctorID != nil {
		a.DoctorID = *r.DoctorID
	}
	if r.AppointmentDate != nil {
		a.AppointmentDate = *r.AppointmentDate
	}
	if r.Reason != nil {
		a.Reason = r.Reason
	}
	if r.Status != nil {
		a.Status = *r.Status
	}
}

type AppointmentFilter struct {
	PatientID *int64
	DoctorID  *int64
	Status    *AppointmentStatus
	Scope     Scope
}

// StatusSummary counts appointments per status.
type StatusSummary struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
	Completed int `json:"completed"`
}

func (s StatusSummary) Total() int {
	return s.Pending + s.Confirmed + s.Cancelled + s.Completed
}

// AppointmentBrief is the short form used inside summaries; only the
// counterparty name is filled.
type AppointmentBrief struct {
	ID              int64     `json:"id"`
	Doctor          string    `json:"doctor,omitempty"`
	Patient         string    `json:"patient,omitempty"`
	AppointmentDate time.Time `json:"appointment_date"`
}

type PatientAppointmentSummary struct {
	Summary  StatusSummary      `json:"summary"`
	Upcoming []AppointmentBrief `json:"upcoming_appointments"`
}

type DoctorAppointmentSummary struct {
	Summary  StatusSummary      `json:"summary"`
	Upcoming []AppointmentBrief `json:"upcoming_appointments"`
	Today    []AppointmentBrief `json:"todays_appointments"`
}

func Summarize(appts []*Appointment) StatusSummary {
	var s StatusSummary
	for _, a := range appts {
		switch a.Status {
		case AppointmentStatusPending:
			s.Pending++
		case AppointmentStatusConfirmed:
			s.Confirmed++
		case AppointmentStatusCancelled:
			s.Cancelled++
		case AppointmentStatusCompleted:
			s.Completed++
		}
	}
	return s
}

func NewPatientSummary(appts []*Appointment) *PatientAppointmentSummary {
	out := &PatientAppointmentSummary{
		Summary:  Summarize(appts),
		Upcoming: []AppointmentBrief{},
	}
	for _, a := range appts {
		if a.Status == AppointmentStatusConfirmed {
			out.Upcoming = append(out.Upcoming, AppointmentBrief{ID: a.ID, Doctor: a.DoctorName, AppointmentDate: a.AppointmentDate})
		}
	}
	return out
}

// NewDoctorSummary treats [dayStart, dayStart+24h) as today.
func NewDoctorSummary(appts []*Appointment, dayStart time.Time) *DoctorAppointmentSummary {
	dayEnd := dayStart.AddDate(0, 0, 1)
	out := &DoctorAppointmentSummary{
		Summary:  Summarize(appts),
		Upcoming: []AppointmentBrief{},
		Today:    []AppointmentBrief{},
	}
	for _, a := range appts {
		brief := AppointmentBrief{ID: a.ID, Patient: a.PatientName, AppointmentDate: a.AppointmentDate}
		if a.Status == AppointmentStatusConfirmed {
			out.Upcoming = append(out.Upcoming, brief)
		}
		today := !a.AppointmentDate.Before(dayStart) && a.AppointmentDate.Before(dayEnd)
		if today && (a.Status == AppointmentStatusPending || a.Status == AppointmentStatusConfirmed) {
			out.Today = append(out.Today, brief)
		}
	}
	return out
}
