package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

type timeSlotRepo struct{ s *Store }

func (r *timeSlotRepo) view(slot *model.TimeSlot) *model.TimeSlot {
	cp := *slot
	cp.DoctorName = r.s.doctorName(slot.DoctorID)
	return &cp
}

func (r *timeSlotRepo) Create(ctx context.Context, slot *model.TimeSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	if _, ok := r.s.doctors[slot.DoctorID]; !ok {
		return repository.ErrNotFound
	}
	slot.ID = r.s.next("time_slots")
	slot.CreatedAt = now()
	slot.UpdatedAt = slot.CreatedAt
	slot.SoftDelete = model.SoftDelete{}
	cp := *slot
	r.s.slots[slot.ID] = &cp
	slot.DoctorName = r.s.doctorName(slot.DoctorID)
	return nil
}

func (r *timeSlotRepo) Get(ctx context.Context, id int64, scope model.Scope) (*model.TimeSlot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	slot, ok := r.s.slots[id]
	if !ok || !scope.Visible(slot.IsDeleted) {
		return nil, repository.ErrNotFound
	}
	return r.view(slot), nil
}

func (r *timeSlotRepo) List(ctx context.Context, filter model.TimeSlotFilter) ([]*model.TimeSlot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.TimeSlot{}
	for _, slot := range r.s.slots {
		if !filter.Scope.Visible(slot.IsDeleted) {
			continue
		}
		if filter.DoctorID != nil && slot.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.Date != nil && !slot.Date.Equal(*filter.Date) {
			continue
		}
		out = append(out, r.view(slot))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Time().Before(out[j].Date.Time())
		}
		return out[i].StartTime.Minutes() < out[j].StartTime.Minutes()
	})
	return out, nil
}

func (r *timeSlotRepo) Update(ctx context.Context, slot *model.TimeSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.slots[slot.ID]
	if !ok || stored.IsDeleted {
		return repository.ErrNotFound
	}
	stored.Date = slot.Date
	stored.StartTime = slot.StartTime
	stored.EndTime = slot.EndTime
	stored.IsAvailable = slot.IsAvailable
	stored.UpdatedAt = now()
	slot.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *timeSlotRepo) SoftDelete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	slot, ok := r.s.slots[id]
	if !ok {
		return repository.ErrNotFound
	}
	return markDeleted(slot)
}

func (r *timeSlotRepo) Restore(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	slot, ok := r.s.slots[id]
	if !ok {
		return repository.ErrNotFound
	}
	return markRestored(slot)
}
