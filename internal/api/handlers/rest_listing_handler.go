package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/api/middleware"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/services"
)

// RestListingHandler handles listing submission and photo uploads.
type RestListingHandler struct {
	listingService services.IListingService
}

// NewRestListingHandler creates a new RestListingHandler.
func NewRestListingHandler(listingService services.IListingService) *RestListingHandler {
	return &RestListingHandler{listingService: listingService}
}

// UploadRequest is the body of POST /v1/listings/:id/images.
type UploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// CompleteUploadRequest is the body of POST /v1/listings/:id/images/complete.
type CompleteUploadRequest struct {
	Key string `json:"key" binding:"required"`
}

// SubmitListing handles POST /v1/listings
func (h *RestListingHandler) SubmitListing(c *gin.Context) {
	var draft models.ListingDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing: " + err.Error()})
		return
	}
	p, err := h.listingService.Submit(c.Request.Context(), middleware.UserID(c), &draft)
	if err != nil {
		respondError(c, err, "Failed to submit listing")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ListOwnListings handles GET /v1/listings
func (h *RestListingHandler) ListOwnListings(c *gin.Context) {
	props, err := h.listingService.ListByOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Failed to load listings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": props})
}

// RequestImageUpload handles POST /v1/listings/:id/images
func (h *RestListingHandler) RequestImageUpload(c *gin.Context) {
	id, ok := parsePropertyID(c)
	if !ok {
		return
	}
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename and content_type are required"})
		return
	}
	ticket, err := h.listingService.RequestImageUpload(c.Request.Context(), middleware.UserID(c), id, req.Filename, req.ContentType)
	if err != nil {
		respondError(c, err, "Failed to generate upload URL")
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// CompleteImageUpload handles POST /v1/listings/:id/images/complete. The
// image is processed in the background and appears on the listing later.
func (h *RestListingHandler) CompleteImageUpload(c *gin.Context) {
	id, ok := parsePropertyID(c)
	if !ok {
		return
	}
	var req CompleteUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}
	if err := h.listingService.CompleteImageUpload(c.Request.Context(), middleware.UserID(c), id, req.Key); err != nil {
		respondError(c, err, "Failed to schedule image processing")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Image upload confirmed, processing scheduled."})
}
