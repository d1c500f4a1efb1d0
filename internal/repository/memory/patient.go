package memory

import (
	"context"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

type patientRepo struct{ s *Store }

func (r *patientRepo) Register(ctx context.Context, user *model.User, profile *model.PatientProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.insertUser(user); err != nil {
		return err
	}
	if err := r.s.takeFailure(); err != nil {
		delete(r.s.users, user.ID)
		return err
	}

	profile.ID = r.s.next("patients")
	profile.SetIdentity(user)
	profile.CreatedAt = now()
	profile.UpdatedAt = profile.CreatedAt
	profile.SoftDelete = model.SoftDelete{}
	cp := *profile
	r.s.patients[profile.ID] = &cp
	return nil
}

func (r *patientRepo) Get(ctx context.Context, id int64, scope model.Scope) (*model.PatientProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.get(id, scope)
}

func (r *patientRepo) get(id int64, scope model.Scope) (*model.PatientProfile, error) {
	p, ok := r.s.patients[id]
	if !ok || !scope.Visible(p.IsDeleted) {
		return nil, repository.ErrNotFound
	}
	return r.view(p), nil
}

func (r *patientRepo) view(p *model.PatientProfile) *model.PatientProfile {
	cp := *p
	if u, ok := r.s.users[p.UserID]; ok {
		cp.SetIdentity(u)
	}
	return &cp
}

func (r *patientRepo) GetByUserID(ctx context.Context, userID int64) (*model.PatientProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.patients {
		if p.UserID == userID && !p.IsDeleted {
			return r.view(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *patientRepo) List(ctx context.Context, scope model.Scope) ([]*model.PatientProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.PatientProfile{}
	for _, id := range sortedIDs(r.s.patients) {
		p := r.s.patients[id]
		if scope.Visible(p.IsDeleted) {
			out = append(out, r.view(p))
		}
	}
	return out, nil
}

func (r *patientRepo) Update(ctx context.Context, id int64, user model.UserUpdate, profile model.PatientUpdate) (*model.PatientProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.patients[id]
	if !ok || p.IsDeleted {
		return nil, repository.ErrNotFound
	}
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	if err := r.s.updateUser(p.UserID, user); err != nil {
		return nil, err
	}
	profile.Apply(p)
	p.UpdatedAt = now()
	return r.view(p), nil
}

func (r *patientRepo) SoftDelete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok || p.IsDeleted {
		return repository.ErrNotFound
	}
	p.MarkDeleted(now())
	if u, ok := r.s.users[p.UserID]; ok {
		u.IsActive = false
	}
	return nil
}

func (r *patientRepo) Restore(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok || !p.IsDeleted {
		return repository.ErrNotFound
	}
	p.Restore()
	if u, ok := r.s.users[p.UserID]; ok {
		u.IsActive = true
	}
	return nil
}
