package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/careconnect-api/internal/access"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
	"github.com/jwalitptl/careconnect-api/internal/service/audit"
	"github.com/jwalitptl/careconnect-api/internal/service/common"
	"github.com/jwalitptl/careconnect-api/internal/service/event"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/security"
)

const resource = "doctor"

// Invalidator drops cached specialization listings whose doctor counts changed.
type Invalidator interface {
	Invalidate()
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate() {}

type Service struct {
	repo     repository.DoctorRepository
	userRepo repository.UserRepository
	specRepo repository.SpecializationRepository
	hasher   security.PasswordHasher
	events   event.Recorder
	auditor  *audit.Service
	cache    Invalidator
}

func NewService(repo repository.DoctorRepository, userRepo repository.UserRepository, specRepo repository.SpecializationRepository,
	hasher security.PasswordHasher, events event.Recorder, auditor *audit.Service, cache Invalidator) *Service {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		specRepo: specRepo,
		hasher:   hasher,
		events:   events,
		auditor:  auditor,
		cache:    cache,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterDoctorRequest) (*model.DoctorProfile, error) {
	taken, err := s.userRepo.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if taken {
		return nil, common.EmailTaken("Doctor")
	}
	if err := s.checkSpecialization(ctx, req.SpecializationID); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.Field("password", fmt.Sprintf("Ensure this field has at least %d characters.", security.MinPasswordLen))
		}
		return nil, apperrors.Internal(err)
	}

	user, err := model.NewUser(req.Email, req.FirstName, req.LastName, req.PhoneNumber, model.RoleDoctor)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	user.PasswordHash = hash

	profile := &model.DoctorProfile{
		SpecializationID: req.SpecializationID,
		ExperienceYears:  req.ExperienceYears,
		Address:          req.Address,
		Availability:     true,
	}
	if err := s.repo.Register(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, common.EmailTaken("Doctor")
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to register doctor: %w", err))
	}

	// reload for the joined specialization name
	created, err := s.repo.Get(ctx, profile.ID, model.ScopeActive)
	if err != nil {
		return nil, common.FromRepo(resource, err)
	}

	s.cache.Invalidate()
	s.events.Record(ctx, event.DoctorRegistered, profilePayload(created))
	return created, nil
}

// Get is open to every authenticated caller.
func (s *Service) Get(ctx context.Context, id int64) (*model.DoctorProfile, error) {
	profile, err := s.repo.Get(ctx, id, model.ScopeActive)
	if err != nil {
		return nil, common.FromRepo(resource, err)
	}
	return profile, nil
}

// List shows deleted profiles only to admins asking for them.
func (s *Service) List(ctx context.Context, principal model.Principal, filter model.DoctorFilter) ([]*model.DoctorProfile, error) {
	if filter.Scope == model.ScopeAll && !access.IsAdmin(principal) {
		return nil, apperrors.Forbidden("")
	}
	profiles, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return profiles, nil
}

func (s *Service) Update(ctx context.Context, principal model.Principal, id int64, req *model.UpdateDoctorRequest) (*model.DoctorProfile, error) {
	current, err := s.owned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSpecialization(ctx, req.SpecializationID); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, req.UserUpdate(), req.Profile())
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, common.EmailTaken("user")
		}
		return nil, common.FromRepo(resource, err)
	}
	if req.SpecializationID != nil {
		s.cache.Invalidate()
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:     &principal.UserID,
		Action:     model.AuditActionUpdate,
		EntityType: model.AuditEntityDoctor,
		EntityID:   id,
		Metadata:   audit.Changes(current, updated, auditedFields...),
	})
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, principal model.Principal, id int64) error {
	profile, err := s.owned(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return common.FromRepo(resource, err)
	}

	s.cache.Invalidate()
	s.events.Record(ctx, event.DoctorDeleted, profilePayload(profile))
	s.audit(ctx, principal, model.AuditActionDelete, id)
	return nil
}

func (s *Service) Restore(ctx context.Context, principal model.Principal, id int64) (*model.DoctorProfile, error) {
	if err := access.RequireRole(principal, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, common.FromRepo(resource, err)
	}
	profile, err := s.repo.Get(ctx, id, model.ScopeActive)
	if err != nil {
		return nil, common.FromRepo(resource, err)
	}

	s.cache.Invalidate()
	s.events.Record(ctx, event.DoctorRestored, profilePayload(profile))
	s.audit(ctx, principal, model.AuditActionRestore, id)
	return profile, nil
}

func (s *Service) owned(ctx context.Context, principal model.Principal, id int64) (*model.DoctorProfile, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireAdminOrOwner(principal, profile.UserID); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) checkSpecialization(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.specRepo.Get(ctx, *id, model.ScopeActive); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return common.MissingObject("specialization_id", *id)
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) audit(ctx context.Context, principal model.Principal, action string, id int64) {
	s.auditor.Record(ctx, audit.Entry{
		UserID:     &principal.UserID,
		Action:     action,
		EntityType: model.AuditEntityDoctor,
		EntityID:   id,
	})
}

var auditedFields = []string{
	"email", "first_name", "last_name", "phone_number",
	"specialization_id", "experience_years", "address", "availability",
}

func profilePayload(d *model.DoctorProfile) event.ProfilePayload {
	return event.ProfilePayload{ProfileID: d.ID, UserID: d.UserID, Email: d.Email, Role: model.RoleDoctor}
}
