package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

const appointmentSelect = `
	SELECT a.id, a.patient_id, a.doctor_id,
		TRIM(pu.first_name || ' ' || pu.last_name) AS patient_name,
		TRIM(du.first_name || ' ' || du.last_name) AS doctor_name,
		a.appointment_date, a.status, a.reason,
		a.is_deleted, a.deleted_at, a.created_at, a.updated_at
	FROM appointments a
	JOIN patient_profiles p ON p.id = a.patient_id
	JOIN users pu ON pu.id = p.user_id
	JOIN doctor_profiles d ON d.id = a.doctor_id
	JOIN users du ON du.id = d.user_id`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (patient_id, doctor_id, appointment_date, status, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		a.PatientID,
		a.DoctorID,
		a.AppointmentDate,
		a.Status,
		a.Reason,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64, scope model.Scope) (*model.Appointment, error) {
	var a model.Appointment
	query := appointmentSelect + ` WHERE a.id = $1`
	if f := scopeFilter("a", scope); f != "" {
		query += " AND " + f
	}
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *appointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	var conds []string
	var args []interface{}

	if f := scopeFilter("a", filter.Scope); f != "" {
		conds = append(conds, f)
	}
	if filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		conds = append(conds, fmt.Sprintf("a.patient_id = $%d", len(args)))
	}
	if filter.DoctorID != nil {
		args = append(args, *filter.DoctorID)
		conds = append(conds, fmt.Sprintf("a.doctor_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}

	query := appointmentSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY a.appointment_date"

	appts := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) Update(ctx context.Context, a *model.Appointment) error {
	query := `
		UPDATE appointments
		SET doctor_id = $1, appointment_date = $2, status = $3, reason = $4, updated_at = NOW()
		WHERE id = $5 AND is_deleted = FALSE
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		a.DoctorID,
		a.AppointmentDate,
		a.Status,
		a.Reason,
		a.ID,
	).Scan(&a.UpdatedAt); err != nil {
		return notFound(err)
	}
	return nil
}

func (r *appointmentRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, tableAppointments, id)
}

func (r *appointmentRepository) Restore(ctx context.Context, id int64) error {
	return restore(ctx, r.db, tableAppointments, id)
}
