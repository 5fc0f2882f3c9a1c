package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/core"
)

// AuthHandler handles authentication related API endpoints.
type AuthHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(us core.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{userService: us, logger: logger}
}

// InitializeUserProfile handles POST /api/v1/users/initialize. Clients call
// it after a Firebase login or signup to ensure a backend profile exists.
func (h *AuthHandler) InitializeUserProfile(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	email := c.GetString("userEmail")
	displayName := c.GetString("userDisplayName")
	photoURL := c.GetString("userPhotoURL")

	user, created, err := h.userService.GetOrCreate(c.Request.Context(), userID, email, displayName, photoURL)
	if err != nil {
		h.logger.Error("Failed to initialize user profile", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to initialize user profile"})
		return
	}

	if created {
		c.JSON(http.StatusCreated, user)
		return
	}
	c.JSON(http.StatusOK, user)
}

// contextUserID pulls the authenticated user ID set by the auth middleware.
// Writes the error response itself when the ID is missing or malformed.
func contextUserID(c *gin.Context) (string, bool) {
	rawUserID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return "", false
	}
	userID, ok := rawUserID.(string)
	if !ok || userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid user ID format in context"})
		return "", false
	}
	return userID, true
}
