package timeslot

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/careconnect-api/internal/handler"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/service/timeslot"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

type Handler struct {
	service *timeslot.Service
}

func NewHandler(service *timeslot.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	slots := r.Group("/time-slots")
	{
		slots.GET("", h.ListTimeSlots)
		slots.POST("", h.CreateTimeSlot)
		slots.GET("/:id", h.GetTimeSlot)
		slots.PUT("/:id", h.UpdateTimeSlot)
		slots.PATCH("/:id", h.UpdateTimeSlot)
		slots.DELETE("/:id", h.DeleteTimeSlot)
		slots.POST("/:id/restore", h.RestoreTimeSlot)
	}
}

func (h *Handler) ListTimeSlots(c *gin.Context) {
	var filter model.TimeSlotFilter

	doctorID, err := handler.QueryInt64(c, "doctor_id")
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	filter.DoctorID = doctorID

	if raw := c.Query("date"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			handler.RespondWithError(c, apperrors.Field("date", "Date has wrong format. Use YYYY-MM-DD."))
			return
		}
		filter.Date = &d
	}

	filter.Scope = model.ScopeFor(handler.QueryBool(c, "include_deleted"))

	slots, err := h.service.List(c.Request.Context(), handler.Principal(c), filter)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, slots)
}

func (h *Handler) CreateTimeSlot(c *gin.Context) {
	var req model.CreateTimeSlotRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	slot, err := h.service.Create(c.Request.Context(), handler.Principal(c), &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.Created(c, slot)
}

func (h *Handler) GetTimeSlot(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "time slot")
	if !ok {
		return
	}

	slot, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, slot)
}

func (h *Handler) UpdateTimeSlot(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "time slot")
	if !ok {
		return
	}
	var req model.UpdateTimeSlotRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	slot, err := h.service.Update(c.Request.Context(), handler.Principal(c), id, &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, slot)
}

func (h *Handler) DeleteTimeSlot(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "time slot")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), handler.Principal(c), id); err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.NoContent(c)
}

func (h *Handler) RestoreTimeSlot(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "time slot")
	if !ok {
		return
	}

	slot, err := h.service.Restore(c.Request.Context(), handler.Principal(c), id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, slot)
}
