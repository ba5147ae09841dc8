package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/models"
	"catalog-service/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CatalogHandler serves the same REST surface for one item kind.
// Products and services each get their own instance.
type CatalogHandler struct {
	svc   *services.CatalogService
	pager Pager
}

func NewCatalogHandler(svc *services.CatalogService, pager Pager) *CatalogHandler {
	return &CatalogHandler{svc: svc, pager: pager}
}

// Register mounts the kind's routes under rg, e.g. /api/products.
func (h *CatalogHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/" + h.svc.Kind().Plural())

	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/search", h.Search)
	g.GET("/search/popular", h.PopularSearches)
	g.GET("/category/:categoryId", h.GetByCategory)
	g.GET("/brand/:brandId", h.GetByBrand)
	g.GET("/price-range", h.GetByPriceRange)
	g.GET("/user/:userId", h.GetByUser)
	g.GET("/mine", h.GetMine)
	g.POST("/by-ids", h.GetByIDs)
	g.GET("/export", h.Export)
	g.GET("/import/template", h.ImportTemplate)
	g.POST("/import", h.Import)

	g.POST("/aggregate", h.CreateAggregate)
	g.PUT("/aggregate/:id", h.UpdateAggregate)
	g.DELETE("/aggregate/:id", h.DeleteAggregate)

	g.GET("/:id", h.GetByID)
	g.GET("/:id/details", h.GetDetails)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PUT("/:id/price", h.SetPrice)
	g.GET("/:id/features", h.Features)
	g.POST("/:id/brands/:brandId", h.AddBrand)
	g.DELETE("/:id/brands/:brandId", h.RemoveBrand)
}

// ============================================================================
// Queries
// ============================================================================

// List returns active items, newest first.
// GET /api/{kind}?pageNumber=&pageSize=
func (h *CatalogHandler) List(c *gin.Context) {
	items, info, err := h.svc.List(c.Request.Context(), h.pager.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, models.ToResponses(items), info)
}

// GetByID returns one active item. With ?details=true features are included.
// GET /api/{kind}/:id
func (h *CatalogHandler) GetByID(c *gin.Context) {
	if details, _ := strconv.ParseBool(c.Query("details")); details {
		h.GetDetails(c)
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item.ToResponse())
}

// GetDetails returns the item with category, media, brands and features.
// GET /api/{kind}/:id/details
func (h *CatalogHandler) GetDetails(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	details, err := h.svc.GetByIDWithDetails(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, details.ToResponse())
}

func (h *CatalogHandler) GetByCategory(c *gin.Context) {
	categoryID, ok := uuidParam(c, "categoryId")
	if !ok {
		return
	}
	items, info, err := h.svc.GetByCategory(c.Request.Context(), categoryID, h.pager.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, models.ToResponses(items), info)
}

func (h *CatalogHandler) GetByBrand(c *gin.Context) {
	brandID, ok := uuidParam(c, "brandId")
	if !ok {
		return
	}
	items, info, err := h.svc.GetByBrand(c.Request.Context(), brandID, h.pager.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, models.ToResponses(items), info)
}

// GetByPriceRange filters on price. Either bound may be omitted.
// GET /api/{kind}/price-range?min=&max=
func (h *CatalogHandler) GetByPriceRange(c *gin.Context) {
	minPrice, err := optionalFloat(c, "min")
	if err != nil {
		respondError(c, err)
		return
	}
	maxPrice, err := optionalFloat(c, "max")
	if err != nil {
		respondError(c, err)
		return
	}
	items, info, err := h.svc.GetByPriceRange(c.Request.Context(), minPrice, maxPrice, h.pager.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, models.ToResponses(items), info)
}

func (h *CatalogHandler) GetByUser(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	h.listByOwner(c, userID)
}

// GetMine lists the caller's own items.
// GET /api/{kind}/mine
func (h *CatalogHandler) GetMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	h.listByOwner(c, userID)
}

func (h *CatalogHandler) listByOwner(c *gin.Context, ownerID uuid.UUID) {
	items, info, err := h.svc.GetByUserID(c.Request.Context(), ownerID, h.pager.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, models.ToResponses(items), info)
}

// GetByIDs returns the active items among the given ids. Unknown ids are skipped.
// POST /api/{kind}/by-ids
func (h *CatalogHandler) GetByIDs(c *gin.Context) {
	var req models.GetByIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	items, err := h.svc.GetByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, models.ToResponses(items))
}

// Search ranks items by approximate name match, best first.
// GET /api/{kind}/search?name=
func (h *CatalogHandler) Search(c *gin.Context) {
	results, err := h.svc.SearchByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.CatalogItemResponse, 0, len(results))
	for i := range results {
		resp := results[i].ToResponse()
		score := results[i].Score
		resp.Score = &score
		out = append(out, resp)
	}
	respondOK(c, out)
}

// PopularSearches returns the most frequent search terms for the kind.
// GET /api/{kind}/search/popular?limit=
func (h *CatalogHandler) PopularSearches(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	terms, err := h.svc.PopularSearches(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, terms)
}

func (h *CatalogHandler) Features(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	features, err := h.svc.Features(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, features)
}

// ============================================================================
// Commands
// ============================================================================

// Create adds an item owned by the caller.
// POST /api/{kind}
func (h *CatalogHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := h.svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, item.ToResponse())
}

// CreateAggregate adds an item with its media, features and brand links in one transaction.
// POST /api/{kind}/aggregate
func (h *CatalogHandler) CreateAggregate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.CreateAggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	details, err := h.svc.CreateAggregate(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, details.ToResponse())
}

func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item.ToResponse())
}

func (h *CatalogHandler) UpdateAggregate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateAggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	details, err := h.svc.UpdateAggregate(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, details.ToResponse())
}

// SetPrice replaces the price only.
// PUT /api/{kind}/:id/price
func (h *CatalogHandler) SetPrice(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := h.svc.SetPrice(c.Request.Context(), id, *req.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item.ToResponse())
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, fmt.Sprintf("%s deleted", h.svc.Kind()))
}

// DeleteAggregate also soft-deletes the item's media, features and favorites.
// DELETE /api/{kind}/aggregate/:id
func (h *CatalogHandler) DeleteAggregate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteAggregate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, fmt.Sprintf("%s and its dependents deleted", h.svc.Kind()))
}

func (h *CatalogHandler) AddBrand(c *gin.Context) {
	h.brandLink(c, true)
}

func (h *CatalogHandler) RemoveBrand(c *gin.Context) {
	h.brandLink(c, false)
}

// brandLink succeeds whether or not the link was already in the requested state.
func (h *CatalogHandler) brandLink(c *gin.Context, add bool) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	brandID, ok := uuidParam(c, "brandId")
	if !ok {
		return
	}

	var succeeded bool
	var err error
	if add {
		succeeded, err = h.svc.AddBrand(c.Request.Context(), id, brandID)
	} else {
		succeeded, err = h.svc.RemoveBrand(c.Request.Context(), id, brandID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"success": succeeded})
}

// ============================================================================
// Spreadsheets
// ============================================================================

// Export streams every active item as an XLSX workbook.
// GET /api/{kind}/export
func (h *CatalogHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Export(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}
	filename := h.svc.Kind().Plural() + "_export.xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *CatalogHandler) ImportTemplate(c *gin.Context) {
	respondOK(c, models.ImportTemplateFor(h.svc.Kind()))
}

// Import creates one item per spreadsheet row, owned by the caller.
// POST /api/{kind}/import (multipart field "file")
func (h *CatalogHandler) Import(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, apperrors.Validation("please upload an XLSX file in the \"file\" field"))
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		respondError(c, apperrors.Validation("only XLSX files are supported"))
		return
	}

	result, err := h.svc.Import(c.Request.Context(), userID, file)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

func optionalFloat(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.Validation("%s must be a number", name)
	}
	return &v, nil
}
