package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/careconnect-api/internal/handler"
	"github.com/jwalitptl/careconnect-api/internal/model"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

var (
	errMissingAuthHeader = errors.New("authentication credentials were not provided")
	errBadAuthHeader     = errors.New("invalid authorization header format")
)

// Authenticator resolves an access token to the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.Principal, error)
}

type AuthMiddleware struct {
	authService Authenticator
}

func NewAuthMiddleware(authService Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and sets the principal in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handler.RespondWithError(c, apperrors.Unauthorized(errMissingAuthHeader))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			handler.RespondWithError(c, apperrors.Unauthorized(errBadAuthHeader))
			return
		}

		principal, err := m.authService.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			handler.RespondWithError(c, err)
			return
		}

		handler.SetPrincipal(c, *principal)
		c.Set("user_id", principal.UserID)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not listed. It must run after Authenticate.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := handler.Principal(c)
		for _, r := range roles {
			if principal.Role == r {
				c.Next()
				return
			}
		}
		handler.RespondWithError(c, apperrors.Forbidden(""))
	}
}
