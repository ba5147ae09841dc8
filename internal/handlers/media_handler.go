package handlers

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/models"
	"catalog-service/internal/services"
)

type MediaHandler struct {
	svc   *services.MediaService
	pager Pager
}

func NewMediaHandler(svc *services.MediaService, pager Pager) *MediaHandler {
	return &MediaHandler{svc: svc, pager: pager}
}

func (h *MediaHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/media")
	g.GET("", h.GetAll)
	g.POST("", h.Create)
	g.POST("/upload", h.Upload)
	g.GET("/item/:itemId", h.ListByItem)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// RegisterPublic mounts the file download route outside authentication.
func (h *MediaHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/media/files/:name", h.File)
}

func (h *MediaHandler) GetAll(c *gin.Context) {
	media, info, err := h.svc.GetAll(c.Request.Context(), h.pager.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, media, info)
}

func (h *MediaHandler) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	media, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, media)
}

// ListByItem returns an item's media, oldest first.
// GET /api/media/item/:itemId
func (h *MediaHandler) ListByItem(c *gin.Context) {
	itemID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}
	media, err := h.svc.ListByItem(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, media)
}

// Create records media whose file already lives at an external URL.
// POST /api/media
func (h *MediaHandler) Create(c *gin.Context) {
	var req models.CreateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	media, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, media)
}

// Upload stores the multipart "file" field and records it as media of the item.
// POST /api/media/upload (fields: file, itemId, mediaTypeId)
func (h *MediaHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, apperrors.Validation("a file is required in the \"file\" field"))
		return
	}
	defer file.Close()

	itemID, err := uuid.Parse(c.PostForm("itemId"))
	if err != nil {
		respondError(c, apperrors.Validation("itemId must be a valid UUID"))
		return
	}
	mediaTypeID, err := uuid.Parse(c.PostForm("mediaTypeId"))
	if err != nil {
		respondError(c, apperrors.Validation("mediaTypeId must be a valid UUID"))
		return
	}

	media, err := h.svc.Upload(c.Request.Context(), services.UploadInput{
		ItemID:      itemID,
		MediaTypeID: mediaTypeID,
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, media)
}

// File streams a stored blob.
// GET /api/media/files/:name
func (h *MediaHandler) File(c *gin.Context) {
	name := c.Param("name")
	rc, err := h.svc.OpenFile(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

func (h *MediaHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	media, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, media)
}

func (h *MediaHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "media deleted")
}

type MediaTypeHandler struct {
	svc *services.MediaTypeService
}

func NewMediaTypeHandler(svc *services.MediaTypeService) *MediaTypeHandler {
	return &MediaTypeHandler{svc: svc}
}

func (h *MediaTypeHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/mediatypes")
	g.GET("", h.GetAll)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *MediaTypeHandler) GetAll(c *gin.Context) {
	mediaTypes, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, mediaTypes)
}

func (h *MediaTypeHandler) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	mediaType, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, mediaType)
}

func (h *MediaTypeHandler) Create(c *gin.Context) {
	var req models.CreateMediaTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	mediaType, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, mediaType)
}

func (h *MediaTypeHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateMediaTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	mediaType, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, mediaType)
}

func (h *MediaTypeHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "media type deleted")
}
