package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/core"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/models"
)

// UserHandler handles user-profile related API endpoints.
type UserHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, logger: logger}
}

// GetCurrentUserProfile handles GET /api/v1/users/me. The optional
// ?fresh=true query skips the profile cache; clients send it when arriving
// with the subscriptionUpdated marker after checkout.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	bypassCache := c.Query("fresh") == "true"

	user, err := h.userService.GetByID(c.Request.Context(), userID, bypassCache)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
			return
		}
		h.logger.Error("Failed to load user profile", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve user profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateCurrentUserProfile handles PUT /api/v1/users/me.
func (h *UserHandler) UpdateCurrentUserProfile(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
			return
		}
		h.logger.Error("Failed to update user profile", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update user profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}
