package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone_number, role, is_active, created_at, updated_at`

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return insertUser(ctx, r.db, user)
}

func (r *userRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &u, query, model.NormalizeEmail(email)); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, excludeUserID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`
	if err := r.db.GetContext(ctx, &exists, query, model.NormalizeEmail(email), excludeUserID); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

type queryerContext interface {
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

func insertUser(ctx context.Context, q queryerContext, user *model.User) error {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, phone_number, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRowxContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.Role,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// updateUserOfProfile applies the set identity fields to the user behind a profile row.
func updateUserOfProfile(ctx context.Context, ext sqlx.ExecerContext, profileTable string, profileID int64, u model.UserUpdate) error {
	if u.Empty() {
		return nil
	}
	var email *string
	if u.Email != nil {
		normalized := model.NormalizeEmail(*u.Email)
		email = &normalized
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET email = COALESCE($1, email),
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			phone_number = COALESCE($4, phone_number),
			updated_at = NOW()
		WHERE id = (SELECT user_id FROM %s WHERE id = $5 AND is_deleted = FALSE)
	`, profileTable)

	res, err := ext.ExecContext(ctx, query, email, u.FirstName, u.LastName, u.PhoneNumber, profileID)
	if isUniqueViolation(err) {
		return repository.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return mustAffect(res)
}
