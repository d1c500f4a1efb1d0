package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

const patientSelect = `
	SELECT p.id, p.user_id, u.email, u.first_name, u.last_name, u.phone_number,
		p.date_of_birth, p.address, p.is_deleted, p.deleted_at, p.created_at, p.updated_at
	FROM patient_profiles p
	JOIN users u ON u.id = p.user_id`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Register(ctx context.Context, user *model.User, profile *model.PatientProfile) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}

		query := `
			INSERT INTO patient_profiles (user_id, date_of_birth, address)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query, user.ID, profile.DateOfBirth, profile.Address).
			Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return fmt.Errorf("failed to create patient profile: %w", err)
		}

		profile.SetIdentity(user)
		return nil
	})
}

func (r *patientRepository) Get(ctx context.Context, id int64, scope model.Scope) (*model.PatientProfile, error) {
	return getPatient(ctx, r.db, id, scope)
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID int64) (*model.PatientProfile, error) {
	var p model.PatientProfile
	query := patientSelect + ` WHERE p.user_id = $1 AND p.is_deleted = FALSE`
	if err := r.db.GetContext(ctx, &p, query, userID); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *patientRepository) List(ctx context.Context, scope model.Scope) ([]*model.PatientProfile, error) {
	query := patientSelect
	if f := scopeFilter("p", scope); f != "" {
		query += " WHERE " + f
	}
	query += " ORDER BY p.id"

	patients := []*model.PatientProfile{}
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Update(ctx context.Context, id int64, user model.UserUpdate, profile model.PatientUpdate) (*model.PatientProfile, error) {
	var updated *model.PatientProfile
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := updateUserOfProfile(ctx, tx, tablePatients, id, user); err != nil {
			return err
		}

		query := `
			UPDATE patient_profiles
			SET date_of_birth = COALESCE($1, date_of_birth),
				address = COALESCE($2, address),
				updated_at = NOW()
			WHERE id = $3 AND is_deleted = FALSE
		`
		res, err := tx.ExecContext(ctx, query, profile.DateOfBirth, profile.Address, id)
		if err != nil {
			return fmt.Errorf("failed to update patient profile: %w", err)
		}
		if err := mustAffect(res); err != nil {
			return err
		}

		updated, err = getPatient(ctx, tx, id, model.ScopeActive)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *patientRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := softDelete(ctx, tx, tablePatients, id); err != nil {
			return err
		}
		return setUserActive(ctx, tx, tablePatients, id, false)
	})
}

func (r *patientRepository) Restore(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := restore(ctx, tx, tablePatients, id); err != nil {
			return err
		}
		return setUserActive(ctx, tx, tablePatients, id, true)
	})
}

func getPatient(ctx context.Context, q sqlx.QueryerContext, id int64, scope model.Scope) (*model.PatientProfile, error) {
	conds := []string{"p.id = $1"}
	if f := scopeFilter("p", scope); f != "" {
		conds = append(conds, f)
	}

	var p model.PatientProfile
	query := patientSelect + " WHERE " + strings.Join(conds, " AND ")
	if err := sqlx.GetContext(ctx, q, &p, query, id); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
