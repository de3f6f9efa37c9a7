package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/auth"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/services"
)

// errorStatus maps service sentinels to HTTP status codes and client
// messages. Unknown errors are internal.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrPropertyNotFound):
		return http.StatusNotFound, "Property not found"
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, services.ErrAlreadyFavorited):
		return http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrEmailExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrNotListingOwner):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, models.ErrInvalidProperty),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrUnsupportedImage),
		errors.Is(err, services.ErrInvalidImageKey),
		errors.Is(err, services.ErrAddressRequired):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, ""
}

// respondError writes err as {"error": ...}. Internal errors are recorded
// on the context for the logger and answered with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = fallback
	}
	c.JSON(status, gin.H{"error": msg})
}

func parsePropertyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID format"})
		return 0, false
	}
	return id, true
}
