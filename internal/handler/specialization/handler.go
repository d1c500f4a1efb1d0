package specialization

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/careconnect-api/internal/handler"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/service/specialization"
)

type Handler struct {
	service *specialization.Service
}

func NewHandler(service *specialization.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	specs := r.Group("/specializations")
	{
		specs.GET("", h.ListSpecializations)
		specs.POST("", h.CreateSpecialization)
		specs.GET("/:id", h.GetSpecialization)
		specs.PUT("/:id", h.UpdateSpecialization)
		specs.PATCH("/:id", h.UpdateSpecialization)
		specs.DELETE("/:id", h.DeleteSpecialization)
		specs.POST("/:id/restore", h.RestoreSpecialization)
	}
}

func (h *Handler) ListSpecializations(c *gin.Context) {
	specs, err := h.service.List(c.Request.Context(), handler.Principal(c), handler.QueryBool(c, "include_deleted"))
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, specs)
}

func (h *Handler) CreateSpecialization(c *gin.Context) {
	var req model.CreateSpecializationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	spec, err := h.service.Create(c.Request.Context(), handler.Principal(c), &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.Created(c, spec)
}

func (h *Handler) GetSpecialization(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "specialization")
	if !ok {
		return
	}

	spec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, spec)
}

func (h *Handler) UpdateSpecialization(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "specialization")
	if !ok {
		return
	}
	var req model.UpdateSpecializationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	spec, err := h.service.Update(c.Request.Context(), handler.Principal(c), id, &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, spec)
}

func (h *Handler) DeleteSpecialization(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "specialization")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), handler.Principal(c), id); err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.NoContent(c)
}

func (h *Handler) RestoreSpecialization(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "specialization")
	if !ok {
		return
	}

	spec, err := h.service.Restore(c.Request.Context(), handler.Principal(c), id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.OK(c, spec)
}
