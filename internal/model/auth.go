package model

import (
	"errors"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest may be empty when the refresh token comes from the cookie.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LoginResponse struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	PhoneNumber  *string `json:"phone_number"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	UserType     Role    `json:"user_type"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// Auth errors
var (
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrTokenRevoked       = errors.New("token is blacklisted")
)
