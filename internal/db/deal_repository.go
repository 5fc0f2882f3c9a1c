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

const dealsCollection = "deals"

// firestoreDealRepository implements DealRepository using Firestore.
type firestoreDealRepository struct {
	client *firestore.Client
}

// NewFirestoreDealRepository creates a new instance of firestoreDealRepository.
func NewFirestoreDealRepository(client *firestore.Client) DealRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for DealRepository.")
	}
	return &firestoreDealRepository{client: client}
}

func (r *firestoreDealRepository) Create(ctx context.Context, deal *models.Deal) error {
	if deal.ID == "" {
		return errors.New("deal ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(dealsCollection).Doc(deal.ID).Create(ctx, deal)
	if err != nil {
		return fmt.Errorf("failed to create deal '%s': %w", deal.ID, err)
	}
	return nil
}

func (r *firestoreDealRepository) GetByID(ctx context.Context, dealID string) (*models.Deal, error) {
	if dealID == "" {
		return nil, errors.New("dealID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(dealsCollection).Doc(dealID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("deal '%s' not found: %w", dealID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get deal '%s': %w", dealID, err)
	}

	var deal models.Deal
	if err := docSnap.DataTo(&deal); err != nil {
		return nil, fmt.Errorf("failed to decode deal data for '%s': %w", dealID, err)
	}
	deal.ID = docSnap.Ref.ID

	return &deal, nil
}

func (r *firestoreDealRepository) ListByUser(ctx context.Context, userID string) ([]*models.Deal, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListByUser operation")
	}
	iter := r.client.Collection(dealsCollection).
		Where("UserID", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var deals []*models.Deal
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list deals for user '%s': %w", userID, err)
		}
		var deal models.Deal
		if err := docSnap.DataTo(&deal); err != nil {
			return nil, fmt.Errorf("failed to decode deal '%s': %w", docSnap.Ref.ID, err)
		}
		deal.ID = docSnap.Ref.ID
		deals = append(deals, &deal)
	}
	return deals, nil
}

func (r *firestoreDealRepository) Update(ctx context.Context, deal *models.Deal) error {
	if deal.ID == "" {
		return errors.New("deal ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(dealsCollection).Doc(deal.ID).Set(ctx, deal)
	if err != nil {
		return fmt.Errorf("failed to update deal '%s': %w", deal.ID, err)
	}
	return nil
}

func (r *firestoreDealRepository) Delete(ctx context.Context, dealID string) error {
	if dealID == "" {
		return errors.New("dealID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(dealsCollection).Doc(dealID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete deal '%s': %w", dealID, err)
	}
	return nil
}
