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

// Errors for deal operations.
var (
	ErrDealNotFound      = errors.New("deal not found")
	ErrDealAccessDenied  = errors.New("deal does not belong to user")
	ErrInvalidDealStatus = errors.New("invalid deal status")
)

// dealService implements the DealService interface.
type dealService struct {
	dealRepo db.DealRepository
	logger   *zap.Logger
}

// NewDealService creates a new DealService instance.
func NewDealService(dealRepo db.DealRepository, logger *zap.Logger) DealService {
	return &dealService{dealRepo: dealRepo, logger: logger}
}

func (s *dealService) CreateDeal(ctx context.Context, userID string, req models.CreateDealRequest) (*models.Deal, error) {
	status := req.Status
	if status == "" {
		status = models.DealStatusLead
	}
	if !models.ValidDealStatus(status) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidDealStatus, status)
	}
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	deal := &models.Deal{
		ID:           uuid.NewString(),
		UserID:       userID,
		BrandName:    req.BrandName,
		ContactEmail: req.ContactEmail,
		Status:       status,
		Value:        req.Value,
		Currency:     currency,
		Deliverables: req.Deliverables,
		Notes:        req.Notes,
		DueDate:      req.DueDate,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal for user '%s': %w", userID, err)
	}
	return deal, nil
}

func (s *dealService) GetDealByID(ctx context.Context, userID, dealID string) (*models.Deal, error) {
	return s.getOwned(ctx, userID, dealID)
}

func (s *dealService) ListDeals(ctx context.Context, userID string) ([]*models.Deal, error) {
	deals, err := s.dealRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals for user '%s': %w", userID, err)
	}
	return deals, nil
}

func (s *dealService) UpdateDeal(ctx context.Context, userID, dealID string, req models.UpdateDealRequest) (*models.Deal, error) {
	deal, err := s.getOwned(ctx, userID, dealID)
	if err != nil {
		return nil, err
	}

	updated := *deal
	if req.BrandName != nil {
		updated.BrandName = *req.BrandName
	}
	if req.ContactEmail != nil {
		updated.ContactEmail = *req.ContactEmail
	}
	if req.Status != nil {
		if !models.ValidDealStatus(*req.Status) {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidDealStatus, *req.Status)
		}
		updated.Status = *req.Status
	}
	if req.Value != nil {
		updated.Value = *req.Value
	}
	if req.Currency != nil {
		updated.Currency = *req.Currency
	}
	if req.Deliverables != nil {
		updated.Deliverables = *req.Deliverables
	}
	if req.Notes != nil {
		updated.Notes = *req.Notes
	}
	if req.DueDate != nil {
		updated.DueDate = req.DueDate
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.dealRepo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update deal '%s': %w", dealID, err)
	}
	return &updated, nil
}

func (s *dealService) DeleteDeal(ctx context.Context, userID, dealID string) error {
	if _, err := s.getOwned(ctx, userID, dealID); err != nil {
		return err
	}
	if err := s.dealRepo.Delete(ctx, dealID); err != nil {
		return fmt.Errorf("failed to delete deal '%s': %w", dealID, err)
	}
	return nil
}

func (s *dealService) getOwned(ctx context.Context, userID, dealID string) (*models.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrDealNotFound, dealID)
		}
		return nil, fmt.Errorf("failed to load deal '%s': %w", dealID, err)
	}
	if deal.UserID != userID {
		return nil, fmt.Errorf("%w: '%s'", ErrDealAccessDenied, dealID)
	}
	return deal, nil
}
