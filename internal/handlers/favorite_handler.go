package handlers

import (
	"github.com/gin-gonic/gin"

	"catalog-service/internal/models"
	"catalog-service/internal/services"
)

// FavoriteHandler always acts on the authenticated user's favorites.
type FavoriteHandler struct {
	svc   *services.FavoriteService
	pager Pager
}

func NewFavoriteHandler(svc *services.FavoriteService, pager Pager) *FavoriteHandler {
	return &FavoriteHandler{svc: svc, pager: pager}
}

func (h *FavoriteHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/favorites")
	g.GET("", h.List)
	g.POST("", h.Add)
	g.DELETE("/:id", h.Remove)
}

func (h *FavoriteHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	favorites, info, err := h.svc.ListByUser(c.Request.Context(), userID, h.pager.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, favorites, info)
}

// Add answers 409 when the item is already an active favorite.
// POST /api/favorites
func (h *FavoriteHandler) Add(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	favorite, err := h.svc.Add(c.Request.Context(), userID, req.BaseItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, favorite)
}

func (h *FavoriteHandler) Remove(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "favorite removed")
}
