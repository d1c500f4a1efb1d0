package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

type specializationRepo struct{ s *Store }

func (r *specializationRepo) view(spec *model.Specialization) *model.Specialization {
	cp := *spec
	cp.DoctorCount = 0
	for _, d := range r.s.doctors {
		if !d.IsDeleted && d.SpecializationID != nil && *d.SpecializationID == spec.ID {
			cp.DoctorCount++
		}
	}
	return &cp
}

func (r *specializationRepo) Create(ctx context.Context, spec *model.Specialization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	spec.ID = r.s.next("specializations")
	spec.CreatedAt = now()
	spec.UpdatedAt = spec.CreatedAt
	spec.SoftDelete = model.SoftDelete{}
	cp := *spec
	r.s.specs[spec.ID] = &cp
	return nil
}

func (r *specializationRepo) Get(ctx context.Context, id int64, scope model.Scope) (*model.Specialization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	spec, ok := r.s.specs[id]
	if !ok || !scope.Visible(spec.IsDeleted) {
		return nil, repository.ErrNotFound
	}
	return r.view(spec), nil
}

func (r *specializationRepo) List(ctx context.Context, scope model.Scope) ([]*model.Specialization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Specialization{}
	for _, spec := range r.s.specs {
		if scope.Visible(spec.IsDeleted) {
			out = append(out, r.view(spec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *specializationRepo) Update(ctx context.Context, spec *model.Specialization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.specs[spec.ID]
	if !ok || stored.IsDeleted {
		return repository.ErrNotFound
	}
	stored.Name = spec.Name
	stored.Description = spec.Description
	stored.UpdatedAt = now()
	spec.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *specializationRepo) SoftDelete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	spec, ok := r.s.specs[id]
	if !ok {
		return repository.ErrNotFound
	}
	return markDeleted(spec)
}

func (r *specializationRepo) Restore(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	spec, ok := r.s.specs[id]
	if !ok {
		return repository.ErrNotFound
	}
	return markRestored(spec)
}
