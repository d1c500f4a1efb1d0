// Package access holds the capability checks every record-scoped operation
// composes before touching data. A failed check is always a permission error.
package access

import (
	"github.com/jwalitptl/careconnect-api/internal/model"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

func IsAdmin(p model.Principal) bool   { return p.Role == model.RoleAdmin }
func IsPatient(p model.Principal) bool { return p.Role == model.RolePatient }
func IsDoctor(p model.Principal) bool  { return p.Role == model.RoleDoctor }

// IsOwner reports whether the caller is the identity a record belongs to.
func IsOwner(p model.Principal, userID int64) bool {
	return p.UserID != 0 && p.UserID == userID
}

// RequireRole fails unless the caller holds one of roles.
func RequireRole(p model.Principal, roles ...model.Role) error {
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return apperrors.Forbidden("")
}

// RequireAdminOrOwner lets admins through, and everyone else only for their own records.
func RequireAdminOrOwner(p model.Principal, userID int64) error {
	if IsAdmin(p) || IsOwner(p, userID) {
		return nil
	}
	return apperrors.Forbidden("")
}
