package patient

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

const resource = "patient"

type Service struct {
	repo     repository.PatientRepository
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	events   event.Recorder
	auditor  *audit.Service
}

func NewService(repo repository.PatientRepository, userRepo repository.UserRepository, hasher security.PasswordHasher,
	events event.Recorder, auditor *audit.Service) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		hasher:   hasher,
		events:   events,
		auditor:  auditor,
	}
}

// Register creates the identity and its patient profile in one transaction.
func (s *Service) Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.PatientProfile, error) {
	taken, err := s.userRepo.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if taken {
		return nil, common.EmailTaken("Patient")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.Field("password", fmt.Sprintf("Ensure this field has at least %d characters.", security.MinPasswordLen))
		}
		return nil, apperrors.Internal(err)
	}

	user, err := model.NewUser(req.Email, req.FirstName, req.LastName, req.PhoneNumber, model.RolePatient)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	user.PasswordHash = hash

	profile := &model.PatientProfile{
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
	}
	if err := s.repo.Register(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, common.EmailTaken("Patient")
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to register patient: %w", err))
	}

	s.events.Record(ctx, event.PatientRegistered, profilePayload(profile))
	return profile, nil
}

// Get is allowed for admins and the patient the profile belongs to.
func (s *Service) Get(ctx context.Context, principal model.Principal, id int64) (*model.PatientProfile, error) {
	profile, err := s.repo.Get(ctx, id, model.ScopeActive)
	if err != nil {
		return nil, common.FromRepo(resource, err)
	}
	if err := access.RequireAdminOrOwner(principal, profile.UserID); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) List(ctx context.Context, principal model.Principal, includeDeleted bool) ([]*model.PatientProfile, error) {
	if err := access.RequireRole(principal, model.RoleAdmin); err != nil {
		return nil, err
	}
	profiles, err := s.repo.List(ctx, model.ScopeFor(includeDeleted))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return profiles, nil
}

// Update writes the identity and profile halves of req together.
func (s *Service) Update(ctx context.Context, principal model.Principal, id int64, req *model.UpdatePatientRequest) (*model.PatientProfile, error) {
	current, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, req.UserUpdate(), req.Profile())
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, common.EmailTaken("user")
		}
		return nil, common.FromRepo(resource, err)
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:     &principal.UserID,
		Action:     model.AuditActionUpdate,
		EntityType: model.AuditEntityPatient,
		EntityID:   id,
		Metadata:   audit.Changes(current, updated, auditedFields...),
	})
	return updated, nil
}

// Delete hides the profile and deactivates its identity.
func (s *Service) Delete(ctx context.Context, principal model.Principal, id int64) error {
	profile, err := s.Get(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return common.FromRepo(resource, err)
	}

	s.events.Record(ctx, event.PatientDeleted, profilePayload(profile))
	s.audit(ctx, principal, model.AuditActionDelete, id)
	return nil
}

// Restore is admin only and fails with not found unless the profile is deleted.
func (s *Service) Restore(ctx context.Context, principal model.Principal, id int64) (*model.PatientProfile, error) {
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

	s.events.Record(ctx, event.PatientRestored, profilePayload(profile))
	s.audit(ctx, principal, model.AuditActionRestore, id)
	return profile, nil
}

func (s *Service) audit(ctx context.Context, principal model.Principal, action string, id int64) {
	s.auditor.Record(ctx, audit.Entry{
		UserID:     &principal.UserID,
		Action:     action,
		EntityType: model.AuditEntityPatient,
		EntityID:   id,
	})
}

var auditedFields = []string{"email", "first_name", "last_name", "phone_number", "date_of_birth", "address"}

func profilePayload(p *model.PatientProfile) event.ProfilePayload {
	return event.ProfilePayload{ProfileID: p.ID, UserID: p.UserID, Email: p.Email, Role: model.RolePatient}
}
