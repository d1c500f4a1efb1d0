package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/careconnect-api/internal/model"
)

// Soft-deletable tables. Only these names are ever interpolated into SQL.
const (
	tableSpecializations = "specializations"
	tablePatients        = "patient_profiles"
	tableDoctors         = "doctor_profiles"
	tableTimeSlots       = "time_slots"
	tableAppointments    = "appointments"
)

// softDelete hides a live row. Deleting an already deleted row reports ErrNotFound.
func softDelete(ctx context.Context, ext sqlx.ExecerContext, table string, id int64) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`, table)

	res, err := ext.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete %s %d: %w", table, id, err)
	}
	return mustAffect(res)
}

// restore brings back a deleted row and clears its deletion timestamp.
func restore(ctx context.Context, ext sqlx.ExecerContext, table string, id int64) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = FALSE, deleted_at = NULL, updated_at = NOW()
		WHERE id = $1 AND is_deleted = TRUE
	`, table)

	res, err := ext.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to restore %s %d: %w", table, id, err)
	}
	return mustAffect(res)
}

// scopeFilter returns the WHERE fragment for alias under scope, or "".
func scopeFilter(alias string, scope model.Scope) string {
	if scope == model.ScopeAll {
		return ""
	}
	return alias + ".is_deleted = FALSE"
}

// setUserActive flips the identity behind a profile row.
func setUserActive(ctx context.Context, ext sqlx.ExecerContext, profileTable string, profileID int64, active bool) error {
	query := fmt.Sprintf(`
		UPDATE users
		SET is_active = $1, updated_at = NOW()
		WHERE id = (SELECT user_id FROM %s WHERE id = $2)
	`, profileTable)

	res, err := ext.ExecContext(ctx, query, active, profileID)
	if err != nil {
		return fmt.Errorf("failed to update user activity: %w", err)
	}
	return mustAffect(res)
}
