package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/careconnect-api/internal/model"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func serve(t *testing.T, h gin.HandlerFunc, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	r := gin.New()
	r.POST("/items/:id", h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/items/1", strings.NewReader(body)))

	var resp Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestRespondWithErrorMapsKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", apperrors.NotFound("patient", nil), http.StatusNotFound, "patient not found"},
		{"forbidden", apperrors.Forbidden(""), http.StatusForbidden, "permission denied"},
		{"unauthorized", apperrors.Unauthorized(nil), http.StatusUnauthorized, "authentication credentials were not provided"},
		{"wrapped app error", errors.Join(errors.New("ctx"), apperrors.BadRequest("bad", nil)), http.StatusBadRequest, "bad"},
		{"plain error hides detail", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
		{"deadline", apperrors.Internal(fmt.Errorf("failed to list time slots: %w", context.DeadlineExceeded)), http.StatusGatewayTimeout, "request timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serve(t, func(c *gin.Context) { RespondWithError(c, tt.err) }, "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.msg, resp.Message)
		})
	}
}

func TestRespondWithErrorCarriesFields(t *testing.T) {
	w, resp := serve(t, func(c *gin.Context) {
		RespondWithError(c, apperrors.Field("email", "Patient with this email already exists."))
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Patient with this email already exists.", resp.Errors["email"])
}

type bindTarget struct {
	Name  string     `json:"name" binding:"required"`
	Count int        `json:"count"`
	Day   model.Date `json:"day"`
}

func TestBindJSON(t *testing.T) {
	h := func(c *gin.Context) {
		var req bindTarget
		if !BindJSON(c, &req) {
			return
		}
		OK(c, req.Name)
	}

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"valid", `{"name":"x"}`, http.StatusOK, ""},
		{"missing required", `{}`, http.StatusBadRequest, "name"},
		{"wrong type", `{"name":"x","count":"many"}`, http.StatusBadRequest, "count"},
		{"malformed", `{"name":`, http.StatusBadRequest, ""},
		{"empty", ``, http.StatusBadRequest, ""},
		{"bad date", `{"name":"x","day":"tomorrow"}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serve(t, h, tt.body)
			assert.Equal(t, tt.status, w.Code)
			if tt.field != "" {
				assert.NotEmpty(t, resp.Errors[tt.field])
			}
		})
	}
}

func TestParamIDRejectsNonNumeric(t *testing.T) {
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := ParamID(c, "id", "item")
		if !ok {
			return
		}
		OK(c, id)
	})

	for path, status := range map[string]int{"/items/5": 200, "/items/abc": 404, "/items/0": 404, "/items/-3": 404} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, w.Code, path)
	}
}

func TestPrincipalDefaultsToZero(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, model.Principal{}, Principal(c))

	SetPrincipal(c, model.Principal{UserID: 3, Role: model.RoleAdmin})
	assert.Equal(t, model.RoleAdmin, Principal(c).Role)
}
