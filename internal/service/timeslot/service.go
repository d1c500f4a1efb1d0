package timeslot

import (
	"context"
	"errors"

	"github.com/jwalitptl/careconnect-api/internal/access"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
	"github.com/jwalitptl/careconnect-api/internal/service/common"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

const resource = "time slot"

type Service struct {
	repo       repository.TimeSlotRepository
	doctorRepo repository.DoctorRepository
}

func NewService(repo repository.TimeSlotRepository, doctorRepo repository.DoctorRepository) *Service {
	return &Service{repo: repo, doctorRepo: doctorRepo}
}

// List shows live slots; the deleted ones are visible to admins only.
func (s *Service) List(ctx context.Context, principal model.Principal, filter model.TimeSlotFilter) ([]*model.TimeSlot, error) {
	if filter.Scope == model.ScopeAll && !access.IsAdmin(principal) {
		return nil, apperrors.Forbidden("")
	}
	slots, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return slots, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.TimeSlot, error) {
	slot, err := s.repo.Get(ctx, id, model.ScopeActive)
	if err != nil {
		return nil, common.FromRepo(resource, err)
	}
	return slot, nil
}

// Create always attaches the slot to the calling doctor's own profile.
func (s *Service) Create(ctx context.Context, principal model.Principal, req *model.CreateTimeSlotRequest) (*model.TimeSlot, error) {
	doctor, err := s.callerDoctor(ctx, principal)
	if err != nil {
		return nil, err
	}

	slot := &model.TimeSlot{
		DoctorID:    doctor.ID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		slot.IsAvailable = *req.IsAvailable
	}
	if err := validate(slot); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, apperrors.Internal(err)
	}
	return slot, nil
}

func (s *Service) Update(ctx context.Context, principal model.Principal, id int64, req *model.UpdateTimeSlotRequest) (*model.TimeSlot, error) {
	slot, err := s.owned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	req.Apply(slot)
	if err := validate(slot); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, common.FromRepo(resource, err)
	}
	return slot, nil
}

func (s *Service) Delete(ctx context.Context, principal model.Principal, id int64) error {
	if _, err := s.owned(ctx, principal, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return common.FromRepo(resource, err)
	}
	return nil
}

// Restore is admin only and fails with not found unless the slot is deleted.
func (s *Service) Restore(ctx context.Context, principal model.Principal, id int64) (*model.TimeSlot, error) {
	if err := access.RequireRole(principal, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, common.FromRepo(resource, err)
	}
	return s.Get(ctx, id)
}

// owned loads the slot and checks, in this order: it exists, the caller is a
// doctor, and the doctor is the one who created it.
func (s *Service) owned(ctx context.Context, principal model.Principal, id int64) (*model.TimeSlot, error) {
	slot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doctor, err := s.callerDoctor(ctx, principal)
	if err != nil {
		return nil, err
	}
	if slot.DoctorID != doctor.ID {
		return nil, apperrors.Forbidden("you can only modify your own time slots")
	}
	return slot, nil
}

func (s *Service) callerDoctor(ctx context.Context, principal model.Principal) (*model.DoctorProfile, error) {
	if err := access.RequireRole(principal, model.RoleDoctor); err != nil {
		return nil, err
	}
	doctor, err := s.doctorRepo.GetByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Forbidden("doctor profile not found")
		}
		return nil, apperrors.Internal(err)
	}
	return doctor, nil
}

func validate(slot *model.TimeSlot) error {
	if !slot.EndTime.After(slot.StartTime) {
		return apperrors.Field("end_time", "End time must be after start time.")
	}
	return nil
}
