package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/careconnect-api/internal/model"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/validator"
)

const ContextPrincipal = "principal"

type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(data))
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, NewSuccessResponse(data))
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondWithError renders err with the status its kind maps to. An error
// caused by the request deadline is a 504. Anything else that is not an
// AppError is treated as internal and logged.
func RespondWithError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		log.Warn().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString("request_id")).
			Msg("request timed out")
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, NewErrorResponse("request timeout"))
		return
	}

	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}

	status := appErr.Code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString("request_id")).
			Msg("request failed")
	}

	resp := NewErrorResponse(appErr.Message)
	resp.Errors = appErr.Fields
	c.AbortWithStatusJSON(status, resp)
}

// BindJSON decodes the request body into obj. On failure the error response
// has already been written and false is returned.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondWithError(c, BindingError(err))
		return false
	}
	return true
}

// BindingError translates decoding and validation failures into 400s.
func BindingError(err error) *apperrors.AppError {
	if fields := validator.FieldErrors(err); fields != nil {
		return apperrors.Validation(fields)
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			return apperrors.BadRequest("invalid request body", err)
		}
		return apperrors.Field(field, "Invalid type, expected "+typeErr.Type.String()+".")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apperrors.BadRequest("malformed JSON", err)
	case errors.Is(err, io.EOF):
		return apperrors.BadRequest("request body is required", err)
	case errors.As(err, &maxErr):
		return apperrors.BadRequest("request body too large", err)
	case errors.Is(err, model.ErrInvalidDate), errors.Is(err, model.ErrInvalidClock):
		return apperrors.BadRequest(strings.ToUpper(err.Error()[:1])+err.Error()[1:]+".", err)
	}
	return apperrors.BadRequest("invalid request body", err)
}

// ParamID reads a positive integer path parameter. Non-numeric ids do not
// match any resource, so they answer 404 like an unknown id.
func ParamID(c *gin.Context, name, resource string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondWithError(c, apperrors.NotFound(resource, err))
		return 0, false
	}
	return id, true
}

// QueryBool is true only for "true" and "1".
func QueryBool(c *gin.Context, name string) bool {
	v := strings.ToLower(c.Query(name))
	return v == "true" || v == "1"
}

// QueryInt64 returns nil when the parameter is absent.
func QueryInt64(c *gin.Context, name string) (*int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.Field(name, "A valid integer is required.")
	}
	return &v, nil
}

func SetPrincipal(c *gin.Context, p model.Principal) {
	c.Set(ContextPrincipal, p)
}

// Principal returns the caller set by the authentication middleware. Routes
// without that middleware get the zero value, which holds no role.
func Principal(c *gin.Context) model.Principal {
	if v, ok := c.Get(ContextPrincipal); ok {
		if p, ok := v.(model.Principal); ok {
			return p
		}
	}
	return model.Principal{}
}
