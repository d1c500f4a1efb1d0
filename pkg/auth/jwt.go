package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Subject is the identity a token is issued for.
type Subject struct {
	UserID int64
	Email  string
	Role   string
}

// Claims represents JWT claims
type Claims struct {
	UserID int64     `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Type   TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TTL is the remaining lifetime of the token, never negative.
func (c *Claims) TTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := c.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

type Config struct {
	Secret        string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Manager issues and verifies HS256 tokens. Access and refresh tokens are
// signed with different secrets so one can never be replayed as the other.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(cfg Config) *Manager {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &Manager{
		accessSecret:  []byte(cfg.Secret),
		refreshSecret: []byte(refreshSecret),
		issuer:        cfg.Issuer,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

// Pair is a freshly issued access/refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

func (m *Manager) IssuePair(sub Subject) (*Pair, error) {
	access, err := m.Issue(sub, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := m.Issue(sub, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *Manager) Issue(sub Subject, typ TokenType) (string, error) {
	now := time.Now()
	ttl := m.accessTTL
	if typ == TokenTypeRefresh {
		ttl = m.refreshTTL
	}

	claims := Claims{
		UserID: sub.UserID,
		Email:  sub.Email,
		Role:   sub.Role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   fmt.Sprintf("%d", sub.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretFor(typ))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Parse verifies signature, issuer, expiry and the expected token type.
func (m *Manager) Parse(tokenStr string, typ TokenType) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secretFor(typ), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != typ {
		return nil, ErrWrongTokenType
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) secretFor(typ TokenType) []byte {
	if typ == TokenTypeRefresh {
		return m.refreshSecret
	}
	return m.accessSecret
}
