package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     *int64          `json:"user_id" db:"user_id"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   string          `json:"entity_id" db:"entity_id"`
	Metadata   json.RawMessage `json:"metadata" db:"metadata"`
	IPAddress  string          `json:"ip_address" db:"ip_address"`
	UserAgent  string          `json:"user_agent" db:"user_agent"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

const (
	// Action types
	AuditActionCreate  = "create"
	AuditActionUpdate  = "update"
	AuditActionDelete  = "delete"
	AuditActionRestore = "restore"
	AuditActionLogin   = "login"
	AuditActionLogout  = "logout"

	// Entity types
	AuditEntityUser           = "user"
	AuditEntityPatient        = "patient"
	AuditEntityDoctor         = "doctor"
	AuditEntitySpecialization = "specialization"
	AuditEntityTimeSlot       = "time_slot"
	AuditEntityAppointment    = "appointment"
)

// RequestMeta is the client information recorded with audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
