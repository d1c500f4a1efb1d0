package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository/memory"
	"github.com/jwalitptl/careconnect-api/internal/service/audit"
	"github.com/jwalitptl/careconnect-api/pkg/auth"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/security"
)

type fixture struct {
	store *memory.Store
	svc   *Service
	user  *model.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	tokens := auth.NewManager(auth.Config{
		Secret:        "access",
		RefreshSecret: "refresh",
		Issuer:        "careconnect",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})

	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	phone := "5550100"
	user, err := model.NewUser("Ann@Clinic.test", "Ann", "Lee", &phone, model.RolePatient)
	require.NoError(t, err)
	user.PasswordHash = hash
	require.NoError(t, store.Users().Create(context.Background(), user))

	svc := NewService(store.Users(), tokens, memory.NewBlacklist(), hasher, audit.NewService(store.Audit()))
	return &fixture{store: store, svc: svc, user: user}
}

func TestLoginReturnsIdentityAndTokens(t *testing.T) {
	f := setup(t)

	resp, err := f.svc.Login(context.Background(), &model.LoginRequest{Email: "ann@clinic.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	assert.Equal(t, f.user.ID, resp.ID)
	assert.Equal(t, "ann@clinic.test", resp.Email)
	assert.Equal(t, model.RolePatient, resp.UserType)
	assert.Equal(t, "5550100", *resp.PhoneNumber)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	logs := f.store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionLogin, logs[0].Action)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, &model.LoginRequest{Email: "ann@clinic.test", Password: "wrong-pass"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))

	_, err = f.svc.Login(ctx, &model.LoginRequest{Email: "nobody@clinic.test", Password: "s3cret-pass"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrInvalidCredentials.Error(), appErr.Message)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	f := setup(t)
	profile := &model.PatientProfile{DateOfBirth: model.NewDate(1990, 1, 1)}
	u, err := model.NewUser("gone@clinic.test", "Gone", "User", nil, model.RolePatient)
	require.NoError(t, err)
	u.PasswordHash = f.user.PasswordHash
	require.NoError(t, f.store.Patients().Register(context.Background(), u, profile))
	require.NoError(t, f.store.Patients().SoftDelete(context.Background(), profile.ID))

	_, err = f.svc.Login(context.Background(), &model.LoginRequest{Email: "gone@clinic.test", Password: "s3cret-pass"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestRefreshAndLogout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, &model.LoginRequest{Email: "ann@clinic.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	principal, err := f.svc.Authenticate(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, principal.UserID)

	require.NoError(t, f.svc.Logout(ctx, *principal, login.RefreshToken))

	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
	assert.Equal(t, model.ErrTokenRevoked.Error(), appErr.Message)

	// a second logout with the same token fails
	assert.Error(t, f.svc.Logout(ctx, *principal, login.RefreshToken))
}

func TestLogoutRejectsMissingOrAccessToken(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	login, err := f.svc.Login(ctx, &model.LoginRequest{Email: "ann@clinic.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	p := model.Principal{UserID: f.user.ID, Role: model.RolePatient}
	assert.ErrorIs(t, f.svc.Logout(ctx, p, ""), ErrRefreshTokenRequired)
	assert.Error(t, f.svc.Logout(ctx, p, login.AccessToken))
}

func TestAuthenticateRejectsRefreshToken(t *testing.T) {
	f := setup(t)
	login, err := f.svc.Login(context.Background(), &model.LoginRequest{Email: "ann@clinic.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = f.svc.Authenticate(context.Background(), login.RefreshToken)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestLogoutRejectsAnotherUsersRefreshToken(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	login, err := f.svc.Login(ctx, &model.LoginRequest{Email: "ann@clinic.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	other := model.Principal{UserID: f.user.ID + 1, Role: model.RolePatient}
	assert.ErrorIs(t, f.svc.Logout(ctx, other, login.RefreshToken), ErrForeignRefreshToken)

	// the owner's session is untouched
	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	owner := model.Principal{UserID: f.user.ID, Role: model.RolePatient}
	require.NoError(t, f.svc.Logout(ctx, owner, login.RefreshToken))
}
