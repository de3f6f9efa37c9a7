package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/api/middleware"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/services"
)

// RestUserHandler handles REST requests related to users.
type RestUserHandler struct {
	userService    services.IUserService
	listingService services.IListingService
}

// NewRestUserHandler creates a new RestUserHandler.
func NewRestUserHandler(userService services.IUserService, listingService services.IListingService) *RestUserHandler {
	return &RestUserHandler{
		userService:    userService,
		listingService: listingService,
	}
}

// PublicUser represents the data returned for a user profile.
type PublicUser struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DateJoined   string `json:"date_joined"`
	ListingCount int    `json:"listing_count"`
}

// SignInRequest is the body of POST /v1/auth/signin.
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp handles POST /v1/auth/signup
func (h *RestUserHandler) SignUp(c *gin.Context) {
	var reg services.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	sess, err := h.userService.Register(c.Request.Context(), reg)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// SignIn handles POST /v1/auth/signin
func (h *RestUserHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	sess, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Failed to sign in")
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Me handles GET /v1/me
func (h *RestUserHandler) Me(c *gin.Context) {
	user, err := h.userService.FindByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserByID handles GET /v1/users/:id
func (h *RestUserHandler) GetUserByID(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	user, err := h.userService.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve user")
		return
	}
	listings, err := h.listingService.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve user")
		return
	}

	c.JSON(http.StatusOK, PublicUser{
		ID:           user.ID,
		Name:         user.DisplayName(),
		DateJoined:   user.CreatedAt.Format("2006-01-02"),
		ListingCount: len(listings),
	})
}
