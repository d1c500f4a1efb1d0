package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

type appointmentRepo struct{ s *Store }

func (r *appointmentRepo) view(a *model.Appointment) *model.Appointment {
	cp := *a
	cp.PatientName = r.s.patientName(a.PatientID)
	cp.DoctorName = r.s.doctorName(a.DoctorID)
	return &cp
}

func (r *appointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	a.ID = r.s.next("appointments")
	a.CreatedAt = now()
	a.UpdatedAt = a.CreatedAt
	a.SoftDelete = model.SoftDelete{}
	cp := *a
	r.s.appts[a.ID] = &cp
	return nil
}

func (r *appointmentRepo) Get(ctx context.Context, id int64, scope model.Scope) (*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.appts[id]
	if !ok || !scope.Visible(a.IsDeleted) {
		return nil, repository.ErrNotFound
	}
	return r.view(a), nil
}

func (r *appointmentRepo) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Appointment{}
	for _, a := range r.s.appts {
		if !filter.Scope.Visible(a.IsDeleted) {
			continue
		}
		if filter.PatientID != nil && a.PatientID != *filter.PatientID {
			continue
		}
		if filter.DoctorID != nil && a.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		out = append(out, r.view(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AppointmentDate.Equal(out[j].AppointmentDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].AppointmentDate.Before(out[j].AppointmentDate)
	})
	return out, nil
}

func (r *appointmentRepo) Update(ctx context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.appts[a.ID]
	if !ok || stored.IsDeleted {
		return repository.ErrNotFound
	}
	stored.DoctorID = a.DoctorID
	stored.AppointmentDate = a.AppointmentDate
	stored.Status = a.Status
	stored.Reason = a.Reason
	stored.UpdatedAt = now()
	a.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *appointmentRepo) SoftDelete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appts[id]
	if !ok {
		return repository.ErrNotFound
	}
	return markDeleted(a)
}

func (r *appointmentRepo) Restore(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appts[id]
	if !ok {
		return repository.ErrNotFound
	}
	return markRestored(a)
}
