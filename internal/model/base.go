package model

import (
	"time"
)

// SoftDelete is embedded by every entity that is hidden instead of removed.
type SoftDelete struct {
	IsDeleted bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at" db:"deleted_at"`
}

func (s *SoftDelete) MarkDeleted(now time.Time) {
	s.IsDeleted = true
	s.DeletedAt = &now
}

// Restore clears both fields; no deletion history is retained.
func (s *SoftDelete) Restore() {
	s.IsDeleted = false
	s.DeletedAt = nil
}

func (s SoftDelete) Deleted() bool {
	return s.IsDeleted
}

// SoftDeletable is implemented by pointers to entities embedding SoftDelete.
type SoftDeletable interface {
	MarkDeleted(now time.Time)
	Restore()
	Deleted() bool
}

// Scope selects which rows a repository read may see.
type Scope int

const (
	// ScopeActive hides soft-deleted rows.
	ScopeActive Scope = iota
	// ScopeAll is the administrative view including soft-deleted rows.
	ScopeAll
)

func ScopeFor(includeDeleted bool) Scope {
	if includeDeleted {
		return ScopeAll
	}
	return ScopeActive
}

// Visible reports whether a row in the given soft-delete state is part of the scope.
func (s Scope) Visible(deleted bool) bool {
	return s == ScopeAll || !deleted
}

// Timestamps contains the bookkeeping columns shared by all tables.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
