package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
	"github.com/jwalitptl/careconnect-api/internal/service/audit"
	"github.com/jwalitptl/careconnect-api/pkg/auth"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/security"
)

var (
	ErrRefreshTokenRequired = errors.New("refresh token is required")
	ErrInactiveUser         = errors.New("user is inactive or deleted")
	ErrForeignRefreshToken  = errors.New("refresh token does not belong to the current user")
)

type Service struct {
	userRepo  repository.UserRepository
	tokens    *auth.Manager
	blacklist repository.TokenBlacklist
	hasher    security.PasswordHasher
	auditor   *audit.Service
}

func NewService(userRepo repository.UserRepository, tokens *auth.Manager, blacklist repository.TokenBlacklist,
	hasher security.PasswordHasher, auditor *audit.Service) *Service {
	return &Service{
		userRepo:  userRepo,
		tokens:    tokens,
		blacklist: blacklist,
		hasher:    hasher,
		auditor:   auditor,
	}
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
		}
		return nil, apperrors.Internal(err)
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
	}

	pair, err := s.tokens.IssuePair(subjectOf(user))
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate tokens: %w", err))
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:     &user.ID,
		Action:     model.AuditActionLogin,
		EntityType: model.AuditEntityUser,
		EntityID:   user.ID,
	})

	return &model.LoginResponse{
		ID:           user.ID,
		Email:        user.Email,
		PhoneNumber:  user.PhoneNumber,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		UserType:     user.Role,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh issues a new access token for a valid, non-revoked refresh token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.RefreshResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid refresh token: %w", err))
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if revoked {
		return nil, apperrors.Unauthorized(model.ErrTokenRevoked)
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.Issue(subjectOf(user), auth.TokenTypeAccess)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate token: %w", err))
	}
	return &model.RefreshResponse{AccessToken: access}, nil
}

// Logout blacklists the refresh token until it would have expired anyway.
// Errors are returned raw; the caller reports every one of them the same way.
func (s *Service) Logout(ctx context.Context, principal model.Principal, refreshToken string) error {
	if refreshToken == "" {
		return ErrRefreshTokenRequired
	}
	claims, err := s.tokens.Parse(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return fmt.Errorf("token is invalid or expired: %w", err)
	}
	if claims.UserID != principal.UserID {
		return ErrForeignRefreshToken
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.TTL(time.Now())); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:     &principal.UserID,
		Action:     model.AuditActionLogout,
		EntityType: model.AuditEntityUser,
		EntityID:   principal.UserID,
	})
	return nil
}

// Authenticate resolves a bearer access token to the calling principal.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*model.Principal, error) {
	claims, err := s.tokens.Parse(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid token: %w", err))
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return &model.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func (s *Service) activeUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(ErrInactiveUser)
		}
		return nil, apperrors.Internal(err)
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized(ErrInactiveUser)
	}
	return user, nil
}

func subjectOf(u *model.User) auth.Subject {
	return auth.Subject{UserID: u.ID, Email: u.Email, Role: u.Role.String()}
}
