package doctor

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/careconnect-api/internal/handler"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/service/appointment"
	"github.com/jwalitptl/careconnect-api/internal/service/doctor"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

type Handler struct {
	service      *doctor.Service
	appointments *appointment.Service
}

func NewHandler(service *doctor.Service, appointments *appointment.Service) *Handler {
	return &Handler{
		service:      service,
		appointments: appointments,
	}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/doctors/register", h.RegisterDoctor)

	doctors := protected.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/appointments", h.AppointmentSummary)
		doctors.GET("/:id", h.GetDoctor)
		doctors.PUT("/:id", h.UpdateDoctor)
		doctors.PATCH("/:id", h.UpdateDoctor)
		doctors.DELETE("/:id", h.DeleteDoctor)
		doctors.POST("/:id/restore", h.RestoreDoctor)
	}
}

func (h *Handler) RegisterDoctor(c *gin.Context) {
	var req model.RegisterDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	d, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.Created(c, d)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	doctors, err := h.service.List(c.Request.Context(), handler.Principal(c), filter)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, doctors)
}

func parseFilter(c *gin.Context) (model.DoctorFilter, error) {
	filter := model.DoctorFilter{Scope: model.ScopeFor(handler.QueryBool(c, "include_deleted"))}

	specID, err := handler.QueryInt64(c, "specialization_id")
	if err != nil {
		return filter, err
	}
	filter.SpecializationID = specID

	if raw := c.Query("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, apperrors.Field("available", "Must be a valid boolean.")
		}
		filter.Available = &available
	}
	return filter, nil
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "doctor")
	if !ok {
		return
	}

	d, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, d)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "doctor")
	if !ok {
		return
	}
	var req model.UpdateDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	d, err := h.service.Update(c.Request.Context(), handler.Principal(c), id, &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, d)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "doctor")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), handler.Principal(c), id); err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.NoContent(c)
}

func (h *Handler) RestoreDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "doctor")
	if !ok {
		return
	}

	d, err := h.service.Restore(c.Request.Context(), handler.Principal(c), id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, d)
}

func (h *Handler) AppointmentSummary(c *gin.Context) {
	summary, err := h.appointments.DoctorSummary(c.Request.Context(), handler.Principal(c), c.Query("doctor_id"))
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, summary)
}
