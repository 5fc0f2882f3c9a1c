package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/models"
)

const notificationsCollection = "notifications"

// firestoreNotificationRepository implements NotificationRepository using Firestore.
type firestoreNotificationRepository struct {
	client *firestore.Client
}

// NewFirestoreNotificationRepository creates a new instance of firestoreNotificationRepository.
func NewFirestoreNotificationRepository(client *firestore.Client) NotificationRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for NotificationRepository.")
	}
	return &firestoreNotificationRepository{client: client}
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		return errors.New("notification ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(notificationsCollection).Doc(n.ID).Create(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to create notification '%s': %w", n.ID, err)
	}
	return nil
}

func (r *firestoreNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	if id == "" {
		return nil, errors.New("notification ID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(notificationsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("notification '%s' not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get notification '%s': %w", id, err)
	}

	var n models.Notification
	if err := docSnap.DataTo(&n); err != nil {
		return nil, fmt.Errorf("failed to decode notification '%s': %w", id, err)
	}
	n.ID = docSnap.Ref.ID

	return &n, nil
}

func (r *firestoreNotificationRepository) ListByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListByUser operation")
	}
	iter := r.client.Collection(notificationsCollection).
		Where("UserID", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var out []*models.Notification
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list notifications for user '%s': %w", userID, err)
		}
		var n models.Notification
		if err := docSnap.DataTo(&n); err != nil {
			return nil, fmt.Errorf("failed to decode notification '%s': %w", docSnap.Ref.ID, err)
		}
		n.ID = docSnap.Ref.ID
		out = append(out, &n)
	}
	return out, nil
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("notification ID cannot be empty for MarkRead operation")
	}
	_, err := r.client.Collection(notificationsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "Read", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("notification '%s' not found: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to mark notification '%s' read: %w", id, err)
	}
	return nil
}

func (r *firestoreNotificationRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("notification ID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(notificationsCollection).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete notification '%s': %w", id, err)
	}
	return nil
}
