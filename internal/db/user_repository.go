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

const usersCollection = "users"

// ErrNotFound is returned when a document does not exist in Firestore.
var ErrNotFound = errors.New("document not found")

// firestoreUserRepository implements UserRepository using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for UserRepository.")
	}
	return &firestoreUserRepository{client: client}
}

// Create adds a new user document. The user.ID (Firebase Auth UID) is used as
// the document ID. CreatedAt/UpdatedAt are set server-side via serverTimestamp.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user with ID '%s' already exists: %w", user.ID, err)
		}
		return fmt.Errorf("failed to create user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// GetByID retrieves a user document by its ID (Firebase Auth UID).
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}

	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", userID, err)
	}
	user.ID = docSnap.Ref.ID

	return &user, nil
}

// Replace overwrites the full user document. Set without merge options is
// intentional: the document is always written as a complete snapshot so that
// role, subscription status and plan can never be observed half-updated.
func (r *firestoreUserRepository) Replace(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Replace operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to replace user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// GetByStripeCustomerID looks up the user holding the given Stripe customer ID.
// Used by the webhook path, where events carry the customer rather than the UID.
func (r *firestoreUserRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	if customerID == "" {
		return nil, errors.New("customerID cannot be empty")
	}
	iter := r.client.Collection(usersCollection).Where("StripeCustomerID", "==", customerID).Limit(1).Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("no user with Stripe customer '%s': %w", customerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by Stripe customer '%s': %w", customerID, err)
	}

	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for Stripe customer '%s': %w", customerID, err)
	}
	user.ID = docSnap.Ref.ID

	return &user, nil
}
