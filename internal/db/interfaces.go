package db

import (
	"context"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/models"
)

// UserRepository defines storage operations for user profiles.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// Replace overwrites the full user document. Partial field updates are
	// deliberately not offered: readers must only ever observe a complete
	// snapshot of role, status and plan.
	Replace(ctx context.Context, user *models.User) error
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
}

// DealRepository defines storage operations for brand deals.
type DealRepository interface {
	Create(ctx context.Context, deal *models.Deal) error
	GetByID(ctx context.Context, dealID string) (*models.Deal, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Deal, error)
	Update(ctx context.Context, deal *models.Deal) error
	Delete(ctx context.Context, dealID string) error
}

// NotificationRepository defines storage operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
