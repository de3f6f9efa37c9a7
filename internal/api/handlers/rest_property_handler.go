package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/query"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/services"
)

// RestPropertyHandler handles REST requests for the public catalog.
type RestPropertyHandler struct {
	propertyService services.IPropertyService
}

// NewRestPropertyHandler creates a new RestPropertyHandler.
func NewRestPropertyHandler(propertyService services.IPropertyService) *RestPropertyHandler {
	return &RestPropertyHandler{propertyService: propertyService}
}

// SearchProperties handles GET /v1/properties. Query parameters seed the
// criteria on top of the configured defaults; malformed values are ignored.
func (h *RestPropertyHandler) SearchProperties(c *gin.Context) {
	criteria := query.FromValues(c.Request.URL.Query(), h.propertyService.Defaults())
	res, err := h.propertyService.Search(c.Request.Context(), criteria)
	if err != nil {
		respondError(c, err, "Failed to search properties")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Suggest handles GET /v1/properties/suggest?q=
func (h *RestPropertyHandler) Suggest(c *gin.Context) {
	suggestions, err := h.propertyService.Suggest(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err, "Failed to load suggestions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// Featured handles GET /v1/properties/featured
func (h *RestPropertyHandler) Featured(c *gin.Context) {
	props, err := h.propertyService.Featured(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load featured properties")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": props})
}

// GetPropertyByID handles GET /v1/properties/:id
func (h *RestPropertyHandler) GetPropertyByID(c *gin.Context) {
	id, ok := parsePropertyID(c)
	if !ok {
		return
	}
	p, err := h.propertyService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve property")
		return
	}
	c.JSON(http.StatusOK, p)
}

// FlushSearchCache handles DELETE /v1/admin/search-cache
func (h *RestPropertyHandler) FlushSearchCache(c *gin.Context) {
	n, err := h.propertyService.FlushCache(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to flush search cache")
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}
