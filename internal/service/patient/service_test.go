package patient

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository/memory"
	"github.com/jwalitptl/careconnect-api/internal/service/audit"
	"github.com/jwalitptl/careconnect-api/internal/service/event"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/security"
)

var admin = model.Principal{UserID: 1000, Role: model.RoleAdmin}

func newService() (*Service, *memory.Store) {
	store := memory.NewStore()
	svc := NewService(store.Patients(), store.Users(), security.NewBcryptHasher(bcrypt.MinCost),
		event.NewEventService(store.Outbox()), audit.NewService(store.Audit()))
	return svc, store
}

func registerRequest(email string) *model.RegisterPatientRequest {
	phone := "5550101"
	return &model.RegisterPatientRequest{
		IdentityFields: model.IdentityFields{
			Email:       email,
			Password:    "password10",
			FirstName:   "Ann",
			LastName:    "Lee",
			PhoneNumber: &phone,
		},
		DateOfBirth: model.NewDate(2000, 1, 1),
		Address:     "1 Main St",
	}
}

func owner(p *model.PatientProfile) model.Principal {
	return model.Principal{UserID: p.UserID, Email: p.Email, Role: model.RolePatient}
}

func TestRegisterEchoesIdentity(t *testing.T) {
	svc, store := newService()

	profile, err := svc.Register(context.Background(), registerRequest("a@b.com"))
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", profile.Email)
	assert.Equal(t, "Ann", profile.FirstName)
	assert.Equal(t, "Lee", profile.LastName)
	assert.Equal(t, "5550101", *profile.PhoneNumber)

	user, err := store.Users().Get(context.Background(), profile.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, user.Role)
	assert.NotEqual(t, "password10", user.PasswordHash)

	events := store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, event.PatientRegistered, events[0].EventType)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("a@b.com"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerRequest("A@B.com"))
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Equal(t, "Patient with this email already exists.", appErr.Fields["email"])
}

func TestRegisterRollsBackIdentity(t *testing.T) {
	svc, store := newService()
	store.FailNext = errors.New("disk full")

	_, err := svc.Register(context.Background(), registerRequest("a@b.com"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInternal))

	_, err = store.Users().GetByEmail(context.Background(), "a@b.com")
	assert.Error(t, err)
}

func TestGetIsOwnerOrAdmin(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	p1, err := svc.Register(ctx, registerRequest("one@b.com"))
	require.NoError(t, err)
	p2, err := svc.Register(ctx, registerRequest("two@b.com"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, owner(p1), p1.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, admin, p1.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, owner(p2), p1.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	_, err = svc.Get(ctx, admin, 999)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestUpdatePartitionsFields(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	p, err := svc.Register(ctx, registerRequest("one@b.com"))
	require.NoError(t, err)

	first := "Anne"
	address := "2 High St"
	updated, err := svc.Update(ctx, owner(p), p.ID, &model.UpdatePatientRequest{
		IdentityUpdate: model.IdentityUpdate{FirstName: &first},
		Address:        &address,
	})
	require.NoError(t, err)
	assert.Equal(t, "Anne", updated.FirstName)
	assert.Equal(t, "Lee", updated.LastName)
	assert.Equal(t, "2 High St", updated.Address)
	assert.True(t, updated.DateOfBirth.Equal(model.NewDate(2000, 1, 1)))

	user, err := store.Users().Get(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Anne", user.FirstName)

	logs := store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionUpdate, logs[0].Action)
	assert.Contains(t, string(logs[0].Metadata), `"first_name":{"new":"Anne","old":"Ann"}`)
	assert.NotContains(t, string(logs[0].Metadata), "date_of_birth")
}

func TestUpdateEmailHeldByAnotherIdentity(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	p1, err := svc.Register(ctx, registerRequest("one@b.com"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, registerRequest("two@b.com"))
	require.NoError(t, err)

	email := "two@b.com"
	_, err = svc.Update(ctx, owner(p1), p1.ID, &model.UpdatePatientRequest{IdentityUpdate: model.IdentityUpdate{Email: &email}})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "email")
}

func TestDeleteAndRestore(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	p, err := svc.Register(ctx, registerRequest("one@b.com"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner(p), p.ID))

	active, err := svc.List(ctx, admin, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, admin, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsDeleted)
	assert.NotNil(t, all[0].DeletedAt)

	user, err := store.Users().Get(ctx, p.UserID)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	_, err = svc.Restore(ctx, owner(p), p.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	restored, err := svc.Restore(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)

	user, err = store.Users().Get(ctx, p.UserID)
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	// restoring a live profile is not found
	_, err = svc.Restore(ctx, admin, p.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	assert.Len(t, store.AuditLogs(), 2)
}

func TestListIsAdminOnly(t *testing.T) {
	svc, _ := newService()
	_, err := svc.List(context.Background(), model.Principal{UserID: 5, Role: model.RoleDoctor}, false)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
}
