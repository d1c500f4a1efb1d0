package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is the single role an identity holds.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

var ErrInvalidRole = errors.New("invalid role")

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// User is the authenticatable identity behind every profile.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	PhoneNumber  *string   `json:"phone_number" db:"phone_number"`
	Role         Role      `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser builds an active identity with exactly one valid role.
func NewUser(email, firstName, lastName string, phone *string, role Role) (*User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	email = NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("email is required")
	}
	return &User{
		Email:       email,
		FirstName:   strings.TrimSpace(firstName),
		LastName:    strings.TrimSpace(lastName),
		PhoneNumber: phone,
		Role:        role,
		IsActive:    true,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID int64
	Email  string
	Role   Role
}

// UserUpdate carries the identity half of a profile update. Nil fields are left untouched.
type UserUpdate struct {
	Email       *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.FirstName == nil && u.LastName == nil && u.PhoneNumber == nil
}

// Apply copies the set fields onto user.
func (u UserUpdate) Apply(user *User) {
	if u.Email != nil {
		user.Email = NormalizeEmail(*u.Email)
	}
	if u.FirstName != nil {
		user.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		user.LastName = *u.LastName
	}
	if u.PhoneNumber != nil {
		user.PhoneNumber = u.PhoneNumber
	}
}

// IdentityFields is embedded by registration requests.
type IdentityFields struct {
	Email       string  `json:"email" binding:"required,email,max=254"`
	Password    string  `json:"password" binding:"required,min=8"`
	FirstName   string  `json:"first_name" binding:"required,max=150"`
	LastName    string  `json:"last_name" binding:"required,max=150"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=12"`
}

// IdentityUpdate is embedded by profile update requests.
type IdentityUpdate struct {
	Email       *string `json:"email" binding:"omitempty,email,max=254"`
	FirstName   *string `json:"first_name" binding:"omitempty,min=1,max=150"`
	LastName    *string `json:"last_name" binding:"omitempty,min=1,max=150"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=12"`
}

func (r IdentityUpdate) UserUpdate() UserUpdate {
	return UserUpdate{
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
	}
}
