package auth

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/careconnect-api/internal/handler"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/service/auth"
)

const refreshCookie = "refresh_token"

// CookieConfig controls the refresh token cookie set on login.
type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
	Domain string
}

type Handler struct {
	svc    *auth.Service
	cookie CookieConfig
}

func NewHandler(svc *auth.Service, cookie CookieConfig) *Handler {
	return &Handler{svc: svc, cookie: cookie}
}

// RegisterRoutes mounts the public token endpoints; logout needs a bearer
// token and is mounted on the protected group.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", h.Login)
	public.POST("/auth/refresh", h.Refresh)
	protected.POST("/auth/logout", h.Logout)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, resp.RefreshToken, int(h.cookie.MaxAge.Seconds()), "/", h.cookie.Domain, h.cookie.Secure, true)
	handler.OK(c, resp)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req model.RefreshTokenRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, resp)
}

// Logout takes the refresh token from the cookie, falling back to the body.
// Every failure is reported as a 400 carrying the error text.
func (h *Handler) Logout(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)
	if token == "" {
		var req model.LogoutRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
		token = req.RefreshToken
	}

	if err := h.svc.Logout(c.Request.Context(), handler.Principal(c), token); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	c.SetCookie(refreshCookie, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
	c.JSON(http.StatusOK, &handler.Response{Status: "success", Message: "Successfully logged out."})
}
