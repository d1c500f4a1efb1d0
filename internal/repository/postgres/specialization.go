package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

const specializationSelect = `
	SELECT s.id, s.name, s.description, s.is_deleted, s.deleted_at, s.created_at, s.updated_at,
		(SELECT COUNT(*) FROM doctor_profiles d
			WHERE d.specialization_id = s.id AND d.is_deleted = FALSE) AS doctor_count
	FROM specializations s`

type specializationRepository struct {
	BaseRepository
}

func NewSpecializationRepository(base BaseRepository) repository.SpecializationRepository {
	return &specializationRepository{base}
}

func (r *specializationRepository) Create(ctx context.Context, s *model.Specialization) error {
	query := `
		INSERT INTO specializations (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, s.Name, s.Description).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create specialization: %w", err)
	}
	return nil
}

func (r *specializationRepository) Get(ctx context.Context, id int64, scope model.Scope) (*model.Specialization, error) {
	query := specializationSelect + ` WHERE s.id = $1`
	if f := scopeFilter("s", scope); f != "" {
		query += " AND " + f
	}

	var s model.Specialization
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *specializationRepository) List(ctx context.Context, scope model.Scope) ([]*model.Specialization, error) {
	query := specializationSelect
	if f := scopeFilter("s", scope); f != "" {
		query += " WHERE " + f
	}
	query += " ORDER BY s.name"

	specs := []*model.Specialization{}
	if err := r.db.SelectContext(ctx, &specs, query); err != nil {
		return nil, fmt.Errorf("failed to list specializations: %w", err)
	}
	return specs, nil
}

func (r *specializationRepository) Update(ctx context.Context, s *model.Specialization) error {
	query := `
		UPDATE specializations
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3 AND is_deleted = FALSE
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, s.Name, s.Description, s.ID).Scan(&s.UpdatedAt); err != nil {
		return notFound(err)
	}
	return nil
}

func (r *specializationRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, tableSpecializations, id)
}

func (r *specializationRepository) Restore(ctx context.Context, id int64) error {
	return restore(ctx, r.db, tableSpecializations, id)
}
