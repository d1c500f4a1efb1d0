package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/careconnect-api/internal/handler"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/service/appointment"
	"github.com/jwalitptl/careconnect-api/internal/service/patient"
)

type Handler struct {
	service      *patient.Service
	appointments *appointment.Service
}

func NewHandler(service *patient.Service, appointments *appointment.Service) *Handler {
	return &Handler{
		service:      service,
		appointments: appointments,
	}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/patients/register", h.RegisterPatient)

	patients := protected.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/appointments", h.AppointmentSummary)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.PATCH("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
		patients.POST("/:id/restore", h.RestorePatient)
	}
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	var req model.RegisterPatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.Created(c, p)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context(), handler.Principal(c), handler.QueryBool(c, "include_deleted"))
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "patient")
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), handler.Principal(c), id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "patient")
	if !ok {
		return
	}
	var req model.UpdatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Update(c.Request.Context(), handler.Principal(c), id, &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, p)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "patient")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), handler.Principal(c), id); err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.NoContent(c)
}

func (h *Handler) RestorePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "patient")
	if !ok {
		return
	}

	p, err := h.service.Restore(c.Request.Context(), handler.Principal(c), id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, p)
}

func (h *Handler) AppointmentSummary(c *gin.Context) {
	summary, err := h.appointments.PatientSummary(c.Request.Context(), handler.Principal(c), c.Query("patient_id"))
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, summary)
}
