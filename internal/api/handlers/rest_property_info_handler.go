package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/services"
)

// RestPropertyInfoHandler serves enriched market data per address.
type RestPropertyInfoHandler struct {
	infoService services.IPropertyInfoService
}

// NewRestPropertyInfoHandler creates a new RestPropertyInfoHandler. A nil
// service answers every request with 503.
func NewRestPropertyInfoHandler(infoService services.IPropertyInfoService) *RestPropertyInfoHandler {
	return &RestPropertyInfoHandler{infoService: infoService}
}

// PropertyInfoRequest is the body of POST /v1/property-info.
type PropertyInfoRequest struct {
	Address string `json:"address" binding:"required"`
}

// Lookup handles POST /v1/property-info. A complete record is returned with
// 200; otherwise enrichment is queued and a fetching status comes back with 202.
func (h *RestPropertyInfoHandler) Lookup(c *gin.Context) {
	if h.infoService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Property info is not available"})
		return
	}
	var req PropertyInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrAddressRequired.Error()})
		return
	}
	info, status, err := h.infoService.Lookup(c.Request.Context(), req.Address)
	if err != nil {
		respondError(c, err, "Failed to look up property info")
		return
	}
	if status != nil {
		c.JSON(http.StatusAccepted, status)
		return
	}
	c.JSON(http.StatusOK, info)
}
