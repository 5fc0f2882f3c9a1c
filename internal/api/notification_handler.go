package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/core"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/models"
)

// NotificationHandler handles in-app notification endpoints.
type NotificationHandler struct {
	notificationService core.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(ns core.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: ns, logger: logger}
}

func (h *NotificationHandler) mapNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Notification not found"})
	case errors.Is(err, core.ErrNotNotificationOwner):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Notification does not belong to you"})
	default:
		h.logger.Error("Internal error in NotificationHandler", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// ListNotifications handles GET /notifications.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	list, err := h.notificationService.List(c.Request.Context(), userID)
	if err != nil {
		h.mapNotificationError(c, err)
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}
	c.JSON(http.StatusOK, list)
}

// MarkNotificationRead handles POST /notifications/:notificationId/read.
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), userID, c.Param("notificationId")); err != nil {
		h.mapNotificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Notification marked read"})
}

// DeleteNotification handles DELETE /notifications/:notificationId.
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), userID, c.Param("notificationId")); err != nil {
		h.mapNotificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Notification deleted"})
}
