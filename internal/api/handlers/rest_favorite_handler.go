package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/api/middleware"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/query"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/services"
)

// RestFavoriteHandler handles the signed-in user's saved properties and
// comparisons drawn from them.
type RestFavoriteHandler struct {
	favoriteService   services.IFavoriteService
	comparisonService services.IComparisonService
}

// NewRestFavoriteHandler creates a new RestFavoriteHandler.
func NewRestFavoriteHandler(favoriteService services.IFavoriteService, comparisonService services.IComparisonService) *RestFavoriteHandler {
	return &RestFavoriteHandler{favoriteService: favoriteService, comparisonService: comparisonService}
}

// ListFavorites handles GET /v1/favorites
func (h *RestFavoriteHandler) ListFavorites(c *gin.Context) {
	favs, err := h.favoriteService.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Failed to load favorites")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": favs})
}

// AddFavorite handles POST /v1/favorites/:id
func (h *RestFavoriteHandler) AddFavorite(c *gin.Context) {
	id, ok := parsePropertyID(c)
	if !ok {
		return
	}
	if err := h.favoriteService.Add(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err, "Failed to add favorite")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"property_id": id})
}

// RemoveFavorite handles DELETE /v1/favorites/:id
func (h *RestFavoriteHandler) RemoveFavorite(c *gin.Context) {
	id, ok := parsePropertyID(c)
	if !ok {
		return
	}
	if err := h.favoriteService.Remove(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err, "Failed to remove favorite")
		return
	}
	c.Status(http.StatusNoContent)
}

// Compare handles GET /v1/compare?ids=1,2,3
func (h *RestFavoriteHandler) Compare(c *gin.Context) {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids must be a comma separated list of property IDs"})
		return
	}
	if len(ids) > 4*query.MaxComparison {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many property IDs"})
		return
	}
	view, err := h.comparisonService.Compare(c.Request.Context(), middleware.UserID(c), ids)
	if err != nil {
		respondError(c, err, "Failed to compare properties")
		return
	}
	c.JSON(http.StatusOK, view)
}

func parseIDList(raw string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
