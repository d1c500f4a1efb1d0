package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

const timeSlotSelect = `
	SELECT t.id, t.doctor_id, TRIM(u.first_name || ' ' || u.last_name) AS doctor_name,
		t.date, t.start_time, t.end_time, t.is_available,
		t.is_deleted, t.deleted_at, t.created_at, t.updated_at
	FROM time_slots t
	JOIN doctor_profiles d ON d.id = t.doctor_id
	JOIN users u ON u.id = d.user_id`

type timeSlotRepository struct {
	BaseRepository
}

func NewTimeSlotRepository(base BaseRepository) repository.TimeSlotRepository {
	return &timeSlotRepository{base}
}

func (r *timeSlotRepository) Create(ctx context.Context, slot *model.TimeSlot) error {
	query := `
		INSERT INTO time_slots (doctor_id, date, start_time, end_time, is_available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		slot.DoctorID,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.IsAvailable,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create time slot: %w", err)
	}
	return nil
}

func (r *timeSlotRepository) Get(ctx context.Context, id int64, scope model.Scope) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	query := timeSlotSelect + ` WHERE t.id = $1`
	if f := scopeFilter("t", scope); f != "" {
		query += " AND " + f
	}
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, notFound(err)
	}
	return &slot, nil
}

func (r *timeSlotRepository) List(ctx context.Context, filter model.TimeSlotFilter) ([]*model.TimeSlot, error) {
	var conds []string
	var args []interface{}

	if f := scopeFilter("t", filter.Scope); f != "" {
		conds = append(conds, f)
	}
	if filter.DoctorID != nil {
		args = append(args, *filter.DoctorID)
		conds = append(conds, fmt.Sprintf("t.doctor_id = $%d", len(args)))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		conds = append(conds, fmt.Sprintf("t.date = $%d", len(args)))
	}

	query := timeSlotSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.date, t.start_time"

	slots := []*model.TimeSlot{}
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list time slots: %w", err)
	}
	return slots, nil
}

func (r *timeSlotRepository) Update(ctx context.Context, slot *model.TimeSlot) error {
	query := `
		UPDATE time_slots
		SET date = $1, start_time = $2, end_time = $3, is_available = $4, updated_at = NOW()
		WHERE id = $5 AND is_deleted = FALSE
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.IsAvailable,
		slot.ID,
	).Scan(&slot.UpdatedAt); err != nil {
		return notFound(err)
	}
	return nil
}

func (r *timeSlotRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, tableTimeSlots, id)
}

func (r *timeSlotRepository) Restore(ctx context.Context, id int64) error {
	return restore(ctx, r.db, tableTimeSlots, id)
}
