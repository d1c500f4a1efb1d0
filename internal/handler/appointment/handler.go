package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/careconnect-api/internal/handler"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/service/appointment"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.PATCH("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
		appointments.POST("/:id/restore", h.RestoreAppointment)
	}
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var status *model.AppointmentStatus
	if raw := c.Query("status"); raw != "" {
		st, err := model.ParseAppointmentStatus(raw)
		if err != nil {
			handler.RespondWithError(c, apperrors.Field("status", "Select a valid choice. "+raw+" is not one of the available choices."))
			return
		}
		status = &st
	}
	scope := model.ScopeFor(handler.QueryBool(c, "include_deleted"))

	appts, err := h.service.List(c.Request.Context(), handler.Principal(c), status, scope)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, appts)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appt, err := h.service.Create(c.Request.Context(), handler.Principal(c), &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.Created(c, appt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}

	appt, err := h.service.Get(c.Request.Context(), handler.Principal(c), id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, appt)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}
	var req model.UpdateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appt, err := h.service.Update(c.Request.Context(), handler.Principal(c), id, &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, appt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), handler.Principal(c), id); err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.NoContent(c)
}

func (h *Handler) RestoreAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}

	appt, err := h.service.Restore(c.Request.Context(), handler.Principal(c), id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, appt)
}
