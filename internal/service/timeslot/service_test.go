package timeslot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

func registerDoctor(t *testing.T, store *memory.Store, email string) model.Principal {
	t.Helper()
	u, err := model.NewUser(email, "Doc", email, nil, model.RoleDoctor)
	require.NoError(t, err)
	require.NoError(t, store.Doctors().Register(context.Background(), u, &model.DoctorProfile{Availability: true}))
	return model.Principal{UserID: u.ID, Email: u.Email, Role: model.RoleDoctor}
}

func slotRequest() *model.CreateTimeSlotRequest {
	return &model.CreateTimeSlotRequest{
		Date:      model.NewDate(2025, 1, 1),
		StartTime: model.NewClock(9, 0),
		EndTime:   model.NewClock(10, 0),
	}
}

func TestCreateAttachesCallerDoctor(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.TimeSlots(), store.Doctors())
	doc := registerDoctor(t, store, "five@clinic.test")

	slot, err := svc.Create(context.Background(), doc, slotRequest())
	require.NoError(t, err)

	profile, err := store.Doctors().GetByUserID(context.Background(), doc.UserID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, slot.DoctorID)
	assert.True(t, slot.IsAvailable)

	got, err := svc.Get(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doc five@clinic.test", got.DoctorName)
}

func TestCreateRequiresDoctorAndOrderedTimes(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.TimeSlots(), store.Doctors())
	doc := registerDoctor(t, store, "five@clinic.test")

	_, err := svc.Create(context.Background(), model.Principal{UserID: 9, Role: model.RolePatient}, slotRequest())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	req := slotRequest()
	req.EndTime = model.NewClock(8, 30)
	_, err = svc.Create(context.Background(), doc, req)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "end_time")
}

func TestOtherDoctorCannotModifySlot(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.TimeSlots(), store.Doctors())
	ctx := context.Background()
	five := registerDoctor(t, store, "five@clinic.test")
	seven := registerDoctor(t, store, "seven@clinic.test")

	slot, err := svc.Create(ctx, five, slotRequest())
	require.NoError(t, err)

	off := false
	_, err = svc.Update(ctx, seven, slot.ID, &model.UpdateTimeSlotRequest{IsAvailable: &off})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
	assert.True(t, apperrors.IsCode(svc.Delete(ctx, seven, slot.ID), apperrors.ErrForbidden))

	admin := model.Principal{UserID: 1, Role: model.RoleAdmin}
	assert.True(t, apperrors.IsCode(svc.Delete(ctx, admin, slot.ID), apperrors.ErrForbidden))

	assert.True(t, apperrors.IsCode(svc.Delete(ctx, seven, 999), apperrors.ErrNotFound))

	updated, err := svc.Update(ctx, five, slot.ID, &model.UpdateTimeSlotRequest{IsAvailable: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)

	require.NoError(t, svc.Delete(ctx, five, slot.ID))
	list, err := svc.List(ctx, five, model.TimeSlotFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListFilters(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.TimeSlots(), store.Doctors())
	ctx := context.Background()
	five := registerDoctor(t, store, "five@clinic.test")
	seven := registerDoctor(t, store, "seven@clinic.test")

	_, err := svc.Create(ctx, five, slotRequest())
	require.NoError(t, err)
	other := slotRequest()
	other.Date = model.NewDate(2025, 1, 2)
	s2, err := svc.Create(ctx, seven, other)
	require.NoError(t, err)

	day := model.NewDate(2025, 1, 2)
	byDate, err := svc.List(ctx, five, model.TimeSlotFilter{Date: &day})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, s2.ID, byDate[0].ID)

	byDoctor, err := svc.List(ctx, five, model.TimeSlotFilter{DoctorID: &s2.DoctorID})
	require.NoError(t, err)
	require.Len(t, byDoctor, 1)

	all, err := svc.List(ctx, five, model.TimeSlotFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeletedSlotsListedForAdminAndRestored(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.TimeSlots(), store.Doctors())
	ctx := context.Background()
	five := registerDoctor(t, store, "five@clinic.test")
	admin := model.Principal{UserID: 1, Role: model.RoleAdmin}

	slot, err := svc.Create(ctx, five, slotRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, five, slot.ID))

	_, err = svc.Get(ctx, slot.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	_, err = svc.List(ctx, five, model.TimeSlotFilter{Scope: model.ScopeAll})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	withDeleted, err := svc.List(ctx, admin, model.TimeSlotFilter{Scope: model.ScopeAll})
	require.NoError(t, err)
	require.Len(t, withDeleted, 1)
	assert.True(t, withDeleted[0].IsDeleted)

	_, err = svc.Restore(ctx, five, slot.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	restored, err := svc.Restore(ctx, admin, slot.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)

	_, err = svc.Restore(ctx, admin, slot.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	live, err := svc.List(ctx, five, model.TimeSlotFilter{})
	require.NoError(t, err)
	assert.Len(t, live, 1)
}
