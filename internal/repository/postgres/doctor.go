package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

const doctorSelect = `
	SELECT d.id, d.user_id, u.email, u.first_name, u.last_name, u.phone_number,
		d.specialization_id, s.name AS specialization_name, d.experience_years, d.address, d.availability,
		d.is_deleted, d.deleted_at, d.created_at, d.updated_at
	FROM doctor_profiles d
	JOIN users u ON u.id = d.user_id
	LEFT JOIN specializations s ON s.id = d.specialization_id AND s.is_deleted = FALSE`

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

func (r *doctorRepository) Register(ctx context.Context, user *model.User, profile *model.DoctorProfile) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}

		query := `
			INSERT INTO doctor_profiles (user_id, specialization_id, experience_years, address, availability)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query,
			user.ID,
			profile.SpecializationID,
			profile.ExperienceYears,
			profile.Address,
			profile.Availability,
		).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return fmt.Errorf("failed to create doctor profile: %w", err)
		}

		profile.SetIdentity(user)
		return nil
	})
}

func (r *doctorRepository) Get(ctx context.Context, id int64, scope model.Scope) (*model.DoctorProfile, error) {
	return getDoctor(ctx, r.db, id, scope)
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID int64) (*model.DoctorProfile, error) {
	var d model.DoctorProfile
	query := doctorSelect + ` WHERE d.user_id = $1 AND d.is_deleted = FALSE`
	if err := r.db.GetContext(ctx, &d, query, userID); err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *doctorRepository) List(ctx context.Context, filter model.DoctorFilter) ([]*model.DoctorProfile, error) {
	var conds []string
	var args []interface{}

	if f := scopeFilter("d", filter.Scope); f != "" {
		conds = append(conds, f)
	}
	if filter.SpecializationID != nil {
		args = append(args, *filter.SpecializationID)
		conds = append(conds, fmt.Sprintf("d.specialization_id = $%d", len(args)))
	}
	if filter.Available != nil {
		args = append(args, *filter.Available)
		conds = append(conds, fmt.Sprintf("d.availability = $%d", len(args)))
	}

	query := doctorSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY d.id"

	doctors := []*model.DoctorProfile{}
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) Update(ctx context.Context, id int64, user model.UserUpdate, profile model.DoctorUpdate) (*model.DoctorProfile, error) {
	var updated *model.DoctorProfile
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := updateUserOfProfile(ctx, tx, tableDoctors, id, user); err != nil {
			return err
		}

		query := `
			UPDATE doctor_profiles
			SET address = COALESCE($1, address),
				experience_years = COALESCE($2, experience_years),
				specialization_id = COALESCE($3, specialization_id),
				availability = COALESCE($4, availability),
				updated_at = NOW()
			WHERE id = $5 AND is_deleted = FALSE
		`
		res, err := tx.ExecContext(ctx, query,
			profile.Address,
			profile.ExperienceYears,
			profile.SpecializationID,
			profile.Availability,
			id,
		)
		if err != nil {
			return fmt.Errorf("failed to update doctor profile: %w", err)
		}
		if err := mustAffect(res); err != nil {
			return err
		}

		updated, err = getDoctor(ctx, tx, id, model.ScopeActive)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *doctorRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := softDelete(ctx, tx, tableDoctors, id); err != nil {
			return err
		}
		return setUserActive(ctx, tx, tableDoctors, id, false)
	})
}

func (r *doctorRepository) Restore(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := restore(ctx, tx, tableDoctors, id); err != nil {
			return err
		}
		return setUserActive(ctx, tx, tableDoctors, id, true)
	})
}

func getDoctor(ctx context.Context, q sqlx.QueryerContext, id int64, scope model.Scope) (*model.DoctorProfile, error) {
	conds := []string{"d.id = $1"}
	if f := scopeFilter("d", scope); f != "" {
		conds = append(conds, f)
	}

	var d model.DoctorProfile
	query := doctorSelect + " WHERE " + strings.Join(conds, " AND ")
	if err := sqlx.GetContext(ctx, q, &d, query, id); err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}
