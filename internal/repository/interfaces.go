package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrAlreadyRevoked = errors.New("token is blacklisted")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id int64) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		// EmailTaken ignores the identity with excludeUserID.
		EmailTaken(ctx context.Context, email string, excludeUserID int64) (bool, error)
	}

	// PatientRepository writes identity and profile rows together; every
	// multi-row operation runs in a single transaction.
	PatientRepository interface {
		Register(ctx context.Context, user *model.User, profile *model.PatientProfile) error
		Get(ctx context.Context, id int64, scope model.Scope) (*model.PatientProfile, error)
		GetByUserID(ctx context.Context, userID int64) (*model.PatientProfile, error)
		List(ctx context.Context, scope model.Scope) ([]*model.PatientProfile, error)
		Update(ctx context.Context, id int64, user model.UserUpdate, profile model.PatientUpdate) (*model.PatientProfile, error)
		SoftDelete(ctx context.Context, id int64) error
		Restore(ctx context.Context, id int64) error
	}

	DoctorRepository interface {
		Register(ctx context.Context, user *model.User, profile *model.DoctorProfile) error
		Get(ctx context.Context, id int64, scope model.Scope) (*model.DoctorProfile, error)
		GetByUserID(ctx context.Context, userID int64) (*model.DoctorProfile, error)
		List(ctx context.Context, filter model.DoctorFilter) ([]*model.DoctorProfile, error)
		Update(ctx context.Context, id int64, user model.UserUpdate, profile model.DoctorUpdate) (*model.DoctorProfile, error)
		SoftDelete(ctx context.Context, id int64) error
		Restore(ctx context.Context, id int64) error
	}

	SpecializationRepository interface {
		Create(ctx context.Context, s *model.Specialization) error
		Get(ctx context.Context, id int64, scope model.Scope) (*model.Specialization, error)
		List(ctx context.Context, scope model.Scope) ([]*model.Specialization, error)
		Update(ctx context.Context, s *model.Specialization) error
		SoftDelete(ctx context.Context, id int64) error
		Restore(ctx context.Context, id int64) error
	}

	TimeSlotRepository interface {
		Create(ctx context.Context, slot *model.TimeSlot) error
		Get(ctx context.Context, id int64, scope model.Scope) (*model.TimeSlot, error)
		List(ctx context.Context, filter model.TimeSlotFilter) ([]*model.TimeSlot, error)
		Update(ctx context.Context, slot *model.TimeSlot) error
		SoftDelete(ctx context.Context, id int64) error
		Restore(ctx context.Context, id int64) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, a *model.Appointment) error
		Get(ctx context.Context, id int64, scope model.Scope) (*model.Appointment, error)
		List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error)
		Update(ctx context.Context, a *model.Appointment) error
		SoftDelete(ctx context.Context, id int64) error
		Restore(ctx context.Context, id int64) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending moves up to limit due events to PROCESSING and returns them.
		ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		// MarkFailed reschedules the event at retryAt, or fails it for good when retryAt is nil.
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	// TokenBlacklist remembers revoked refresh tokens by jti until they expire.
	TokenBlacklist interface {
		Revoke(ctx context.Context, jti string, ttl time.Duration) error
		IsRevoked(ctx context.Context, jti string) (bool, error)
	}
)
