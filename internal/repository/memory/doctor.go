package memory

import (
	"context"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

type doctorRepo struct{ s *Store }

func (r *doctorRepo) Register(ctx context.Context, user *model.User, profile *model.DoctorProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.insertUser(user); err != nil {
		return err
	}
	if err := r.s.takeFailure(); err != nil {
		delete(r.s.users, user.ID)
		return err
	}

	profile.ID = r.s.next("doctors")
	profile.SetIdentity(user)
	profile.CreatedAt = now()
	profile.UpdatedAt = profile.CreatedAt
	profile.SoftDelete = model.SoftDelete{}
	cp := *profile
	r.s.doctors[profile.ID] = &cp
	return nil
}

func (r *doctorRepo) view(d *model.DoctorProfile) *model.DoctorProfile {
	cp := *d
	if u, ok := r.s.users[d.UserID]; ok {
		cp.SetIdentity(u)
	}
	cp.SpecializationName = nil
	if d.SpecializationID != nil {
		if spec, ok := r.s.specs[*d.SpecializationID]; ok && !spec.IsDeleted {
			name := spec.Name
			cp.SpecializationName = &name
		}
	}
	return &cp
}

func (r *doctorRepo) Get(ctx context.Context, id int64, scope model.Scope) (*model.DoctorProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.doctors[id]
	if !ok || !scope.Visible(d.IsDeleted) {
		return nil, repository.ErrNotFound
	}
	return r.view(d), nil
}

func (r *doctorRepo) GetByUserID(ctx context.Context, userID int64) (*model.DoctorProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, d := range r.s.doctors {
		if d.UserID == userID && !d.IsDeleted {
			return r.view(d), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *doctorRepo) List(ctx context.Context, filter model.DoctorFilter) ([]*model.DoctorProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.DoctorProfile{}
	for _, id := range sortedIDs(r.s.doctors) {
		d := r.s.doctors[id]
		if !filter.Scope.Visible(d.IsDeleted) {
			continue
		}
		if filter.SpecializationID != nil && (d.SpecializationID == nil || *d.SpecializationID != *filter.SpecializationID) {
			continue
		}
		if filter.Available != nil && d.Availability != *filter.Available {
			continue
		}
		out = append(out, r.view(d))
	}
	return out, nil
}

func (r *doctorRepo) Update(ctx context.Context, id int64, user model.UserUpdate, profile model.DoctorUpdate) (*model.DoctorProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.doctors[id]
	if !ok || d.IsDeleted {
		return nil, repository.ErrNotFound
	}
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	if err := r.s.updateUser(d.UserID, user); err != nil {
		return nil, err
	}
	profile.Apply(d)
	d.UpdatedAt = now()
	return r.view(d), nil
}

func (r *doctorRepo) SoftDelete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[id]
	if !ok || d.IsDeleted {
		return repository.ErrNotFound
	}
	d.MarkDeleted(now())
	if u, ok := r.s.users[d.UserID]; ok {
		u.IsActive = false
	}
	return nil
}

func (r *doctorRepo) Restore(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[id]
	if !ok || !d.IsDeleted {
		return repository.ErrNotFound
	}
	d.Restore()
	if u, ok := r.s.users[d.UserID]; ok {
		u.IsActive = true
	}
	return nil
}
