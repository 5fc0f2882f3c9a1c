package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/core"
)

// RequirePaidPlan gates a route group behind an active paid subscription.
// It must run after VerifyToken so the user ID is present in the context.
func RequirePaidPlan(userService core.UserService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawUserID, exists := c.Get("userID")
		userID, ok := rawUserID.(string)
		if !exists || !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
			return
		}

		user, err := userService.GetByID(c.Request.Context(), userID, false)
		if err != nil {
			logger.Warn("Failed to load profile for plan check", zap.String("userID", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to verify subscription"})
			return
		}

		if !user.HasPaidAccess() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error:   "Paid plan required",
				Details: "Upgrade to a paid plan to use AI assistant features.",
			})
			return
		}

		c.Next()
	}
}
