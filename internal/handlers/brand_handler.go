package handlers

import (
	"github.com/gin-gonic/gin"

	"catalog-service/internal/models"
	"catalog-service/internal/services"
)

type BrandHandler struct {
	svc   *services.BrandService
	pager Pager
}

func NewBrandHandler(svc *services.BrandService, pager Pager) *BrandHandler {
	return &BrandHandler{svc: svc, pager: pager}
}

func (h *BrandHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/brands")
	g.GET("", h.GetAll)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *BrandHandler) GetAll(c *gin.Context) {
	brands, info, err := h.svc.GetAll(c.Request.Context(), h.pager.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, brands, info)
}

func (h *BrandHandler) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	brand, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, brand)
}

func (h *BrandHandler) Create(c *gin.Context) {
	var req models.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	brand, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, brand)
}

func (h *BrandHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	brand, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, brand)
}

func (h *BrandHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "brand deleted")
}
