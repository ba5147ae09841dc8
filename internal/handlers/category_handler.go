package handlers

import (
	"github.com/gin-gonic/gin"

	"catalog-service/internal/models"
	"catalog-service/internal/services"
)

type CategoryHandler struct {
	svc   *services.CategoryService
	pager Pager
}

func NewCategoryHandler(svc *services.CategoryService, pager Pager) *CategoryHandler {
	return &CategoryHandler{svc: svc, pager: pager}
}

func (h *CategoryHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/categories")
	g.GET("", h.GetAll)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.GET("/:id/subcategories", h.GetSubCategories)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *CategoryHandler) GetAll(c *gin.Context) {
	categories, info, err := h.svc.GetAll(c.Request.Context(), h.pager.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, categories, info)
}

func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	category, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, category)
}

// GetSubCategories lists the direct active children.
// GET /api/categories/:id/subcategories
func (h *CategoryHandler) GetSubCategories(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	children, err := h.svc.GetSubCategories(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, children)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	category, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, category)
}

// Update rejects moves that would make the category its own ancestor.
// PUT /api/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	category, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, category)
}

// Delete answers 409 while active items still use the category.
// DELETE /api/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "category deleted")
}
