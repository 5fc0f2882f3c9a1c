package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/db"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/models"
)

// Errors for notification operations.
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotNotificationOwner = errors.New("notification does not belong to user")
)

// notificationService implements the NotificationService interface.
type notificationService struct {
	repo   db.NotificationRepository
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService instance.
func NewNotificationService(repo db.NotificationRepository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) List(ctx context.Context, userID string) ([]*models.Notification, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user '%s': %w", userID, err)
	}
	return list, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.checkOwnership(ctx, userID, notificationID); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to mark notification '%s' read: %w", notificationID, err)
	}
	return nil
}

func (s *notificationService) Delete(ctx context.Context, userID, notificationID string) error {
	if err := s.checkOwnership(ctx, userID, notificationID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to delete notification '%s': %w", notificationID, err)
	}
	return nil
}

// Notify records an in-app notification for the user.
func (s *notificationService) Notify(ctx context.Context, userID, kind, title, body string) error {
	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification for user '%s': %w", userID, err)
	}
	return nil
}

func (s *notificationService) checkOwnership(ctx context.Context, userID, notificationID string) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrNotificationNotFound, notificationID)
		}
		return fmt.Errorf("failed to load notification '%s': %w", notificationID, err)
	}
	if n.UserID != userID {
		return fmt.Errorf("%w: '%s'", ErrNotNotificationOwner, notificationID)
	}
	return nil
}
