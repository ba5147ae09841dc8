package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/models"
	"catalog-service/internal/services"
)

type FeatureHandler struct {
	svc *services.FeatureService
}

func NewFeatureHandler(svc *services.FeatureService) *FeatureHandler {
	return &FeatureHandler{svc: svc}
}

func (h *FeatureHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/features")
	g.GET("", h.ListByOwner)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// ListByOwner lists the features of one product or service.
// GET /api/features?ownerKind=product&ownerId=
func (h *FeatureHandler) ListByOwner(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Query("ownerId"))
	if err != nil {
		respondError(c, apperrors.Validation("ownerId must be a valid UUID"))
		return
	}
	features, err := h.svc.ListByOwner(c.Request.Context(), c.Query("ownerKind"), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, features)
}

func (h *FeatureHandler) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	feature, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, feature)
}

func (h *FeatureHandler) Create(c *gin.Context) {
	var req models.CreateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	feature, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, feature)
}

func (h *FeatureHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	feature, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, feature)
}

func (h *FeatureHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "feature deleted")
}
