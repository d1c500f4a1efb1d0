package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

func newMock(t *testing.T) (BaseRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewBaseRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

var patientColumns = []string{
	"id", "user_id", "email", "first_name", "last_name", "phone_number",
	"date_of_birth", "address", "is_deleted", "deleted_at", "created_at", "updated_at",
}

func TestPatientRegisterCommitsUserAndProfile(t *testing.T) {
	base, mock := newMock(t)
	repo := NewPatientRepository(base)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO users")).
		WithArgs("a@b.com", "hash", "Ann", "Lee", nil, "patient", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(10, now, now))
	mock.ExpectQuery(q("INSERT INTO patient_profiles")).
		WithArgs(int64(10), "2000-01-01", "1 Main St").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(3, now, now))
	mock.ExpectCommit()

	user, err := model.NewUser("a@b.com", "Ann", "Lee", nil, model.RolePatient)
	require.NoError(t, err)
	user.PasswordHash = "hash"
	profile := &model.PatientProfile{DateOfBirth: model.NewDate(2000, 1, 1), Address: "1 Main St"}

	require.NoError(t, repo.Register(context.Background(), user, profile))
	assert.Equal(t, int64(3), profile.ID)
	assert.Equal(t, int64(10), profile.UserID)
	assert.Equal(t, "a@b.com", profile.Email)
}

func TestPatientRegisterDuplicateEmailRollsBack(t *testing.T) {
	base, mock := newMock(t)
	repo := NewPatientRepository(base)

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
	mock.ExpectRollback()

	user, _ := model.NewUser("a@b.com", "Ann", "Lee", nil, model.RolePatient)
	err := repo.Register(context.Background(), user, &model.PatientProfile{})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestPatientRegisterProfileFailureRollsBack(t *testing.T) {
	base, mock := newMock(t)
	repo := NewPatientRepository(base)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO users")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(10, now, now))
	mock.ExpectQuery(q("INSERT INTO patient_profiles")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	user, _ := model.NewUser("a@b.com", "Ann", "Lee", nil, model.RolePatient)
	err := repo.Register(context.Background(), user, &model.PatientProfile{DateOfBirth: model.NewDate(2000, 1, 1)})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPatientSoftDeleteDeactivatesUser(t *testing.T) {
	base, mock := newMock(t)
	repo := NewPatientRepository(base)

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE patient_profiles SET is_deleted = TRUE")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE users SET is_active = $1")).
		WithArgs(false, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SoftDelete(context.Background(), 3))
}

func TestPatientSoftDeleteMissingRollsBack(t *testing.T) {
	base, mock := newMock(t)
	repo := NewPatientRepository(base)

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE patient_profiles SET is_deleted = TRUE")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.SoftDelete(context.Background(), 3), repository.ErrNotFound)
}

func TestPatientRestoreReactivatesUser(t *testing.T) {
	base, mock := newMock(t)
	repo := NewPatientRepository(base)

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE patient_profiles SET is_deleted = FALSE, deleted_at = NULL")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE users SET is_active = $1")).
		WithArgs(true, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Restore(context.Background(), 3))
}

func TestPatientListScopes(t *testing.T) {
	base, mock := newMock(t)
	repo := NewPatientRepository(base)
	now := time.Now()

	mock.ExpectQuery(q("WHERE p.is_deleted = FALSE ORDER BY p.id")).
		WillReturnRows(sqlmock.NewRows(patientColumns).
			AddRow(1, 10, "a@b.com", "Ann", "Lee", nil, now, "", false, nil, now, now))
	mock.ExpectQuery(`JOIN users u ON u.id = p.user_id ORDER BY p.id`).
		WillReturnRows(sqlmock.NewRows(patientColumns).
			AddRow(1, 10, "a@b.com", "Ann", "Lee", nil, now, "", false, nil, now, now).
			AddRow(2, 11, "c@d.com", "Cy", "Doe", nil, now, "", true, now, now, now))

	active, err := repo.List(context.Background(), model.ScopeActive)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := repo.List(context.Background(), model.ScopeAll)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[1].IsDeleted)
}

func TestPatientUpdateDuplicateEmail(t *testing.T) {
	base, mock := newMock(t)
	repo := NewPatientRepository(base)
	email := "Taken@B.com"

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE users SET email = COALESCE($1, email)")).
		WithArgs("taken@b.com", nil, nil, nil, int64(3)).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 3, model.UserUpdate{Email: &email}, model.PatientUpdate{})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestDoctorListFilters(t *testing.T) {
	base, mock := newMock(t)
	repo := NewDoctorRepository(base)
	spec := int64(4)
	available := true

	mock.ExpectQuery(q("WHERE d.is_deleted = FALSE AND d.specialization_id = $1 AND d.availability = $2")).
		WithArgs(int64(4), true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	doctors, err := repo.List(context.Background(), model.DoctorFilter{SpecializationID: &spec, Available: &available})
	require.NoError(t, err)
	assert.Empty(t, doctors)
}

func TestSpecializationGetNotFound(t *testing.T) {
	base, mock := newMock(t)
	repo := NewSpecializationRepository(base)

	mock.ExpectQuery(q("WHERE s.id = $1 AND s.is_deleted = FALSE")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), 9, model.ScopeActive)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTimeSlotListFilters(t *testing.T) {
	base, mock := newMock(t)
	repo := NewTimeSlotRepository(base)
	doctorID := int64(5)
	date := model.NewDate(2025, 1, 1)

	mock.ExpectQuery(q("WHERE t.is_deleted = FALSE AND t.doctor_id = $1 AND t.date = $2")).
		WithArgs(int64(5), "2025-01-01").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	slots, err := repo.List(context.Background(), model.TimeSlotFilter{DoctorID: &doctorID, Date: &date})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestOutboxMarkFailedReschedules(t *testing.T) {
	base, mock := newMock(t)
	repo := NewOutboxRepository(base)
	id := uuid.New()
	retryAt := time.Now().Add(time.Minute)

	mock.ExpectExec(q("UPDATE outbox_events SET status = $1")).
		WithArgs(model.OutboxStatusPending, "boom", retryAt, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE outbox_events SET status = $1")).
		WithArgs(model.OutboxStatusFailed, "boom", nil, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), id, "boom", &retryAt))
	require.NoError(t, repo.MarkFailed(context.Background(), id, "boom", nil))
}

func TestTokenBlacklistRevokeTwice(t *testing.T) {
	base, mock := newMock(t)
	bl := NewTokenBlacklist(base)

	mock.ExpectExec(q("INSERT INTO revoked_tokens")).
		WithArgs("jti-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO revoked_tokens")).
		WithArgs("jti-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, bl.Revoke(context.Background(), "jti-1", time.Hour))
	assert.ErrorIs(t, bl.Revoke(context.Background(), "jti-1", time.Hour), repository.ErrAlreadyRevoked)
}

func TestTimeSlotScopeAndRestore(t *testing.T) {
	base, mock := newMock(t)
	repo := NewTimeSlotRepository(base)
	doctorID := int64(5)
	slotColumns := []string{
		"id", "doctor_id", "doctor_name", "date", "start_time", "end_time", "is_available",
		"is_deleted", "deleted_at", "created_at", "updated_at",
	}

	mock.ExpectQuery(q("WHERE t.is_deleted = FALSE AND t.doctor_id = $1 ORDER BY t.date")).
		WithArgs(doctorID).
		WillReturnRows(sqlmock.NewRows(slotColumns))
	mock.ExpectQuery(`JOIN users u ON u.id = d.user_id WHERE t.doctor_id = \$1 ORDER BY t.date`).
		WithArgs(doctorID).
		WillReturnRows(sqlmock.NewRows(slotColumns))
	mock.ExpectExec(q("SET is_deleted = FALSE, deleted_at = NULL, updated_at = NOW()")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("WHERE id = $1 AND is_deleted = TRUE")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.List(context.Background(), model.TimeSlotFilter{DoctorID: &doctorID})
	require.NoError(t, err)
	_, err = repo.List(context.Background(), model.TimeSlotFilter{DoctorID: &doctorID, Scope: model.ScopeAll})
	require.NoError(t, err)

	require.NoError(t, repo.Restore(context.Background(), 9))
	assert.ErrorIs(t, repo.Restore(context.Background(), 9), repository.ErrNotFound)
}
