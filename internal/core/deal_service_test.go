package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/db"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/models"
)

// fakeDealRepo is an in-memory db.DealRepository.
type fakeDealRepo struct {
	mu    sync.Mutex
	deals map[string]*models.Deal
}

func newFakeDealRepo() *fakeDealRepo {
	return &fakeDealRepo{deals: map[string]*models.Deal{}}
}

func (r *fakeDealRepo) Create(ctx context.Context, deal *models.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *deal
	r.deals[deal.ID] = &cp
	return nil
}

func (r *fakeDealRepo) GetByID(ctx context.Context, dealID string) (*models.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deal, ok := r.deals[dealID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *deal
	return &cp, nil
}

func (r *fakeDealRepo) ListByUser(ctx context.Context, userID string) ([]*models.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Deal
	for _, deal := range r.deals {
		if deal.UserID == userID {
			cp := *deal
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDealRepo) Update(ctx context.Context, deal *models.Deal) error {
	return r.Create(ctx, deal)
}

func (r *fakeDealRepo) Delete(ctx context.Context, dealID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.deals, dealID)
	return nil
}

func TestCreateDealDefaults(t *testing.T) {
	svc := NewDealService(newFakeDealRepo(), zap.NewNop())

	deal, err := svc.CreateDeal(context.Background(), "uid-1", models.CreateDealRequest{
		BrandName: "Acme Coffee",
		Value:     150000,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, deal.ID)
	assert.Equal(t, "uid-1", deal.UserID)
	assert.Equal(t, models.DealStatusLead, deal.Status)
	assert.Equal(t, "usd", deal.Currency)
}

func TestCreateDealRejectsUnknownStatus(t *testing.T) {
	svc := NewDealService(newFakeDealRepo(), zap.NewNop())

	_, err := svc.CreateDeal(context.Background(), "uid-1", models.CreateDealRequest{
		BrandName: "Acme Coffee",
		Status:    "ghosted",
	})
	assert.ErrorIs(t, err, ErrInvalidDealStatus)
}

func TestUpdateDealFoldsOnlyProvidedFields(t *testing.T) {
	repo := newFakeDealRepo()
	svc := NewDealService(repo, zap.NewNop())

	deal, err := svc.CreateDeal(context.Background(), "uid-1", models.CreateDealRequest{
		BrandName: "Acme Coffee",
		Value:     150000,
		Notes:     "intro call done",
	})
	require.NoError(t, err)

	status := models.DealStatusSigned
	updated, err := svc.UpdateDeal(context.Background(), "uid-1", deal.ID, models.UpdateDealRequest{
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, models.DealStatusSigned, updated.Status)
	assert.Equal(t, "Acme Coffee", updated.BrandName)
	assert.Equal(t, int64(150000), updated.Value)
	assert.Equal(t, "intro call done", updated.Notes)
}

func TestDealOwnershipEnforced(t *testing.T) {
	repo := newFakeDealRepo()
	svc := NewDealService(repo, zap.NewNop())

	deal, err := svc.CreateDeal(context.Background(), "uid-1", models.CreateDealRequest{BrandName: "Acme"})
	require.NoError(t, err)

	_, err = svc.GetDealByID(context.Background(), "uid-2", deal.ID)
	assert.ErrorIs(t, err, ErrDealAccessDenied)

	err = svc.DeleteDeal(context.Background(), "uid-2", deal.ID)
	assert.ErrorIs(t, err, ErrDealAccessDenied)

	_, err = svc.GetDealByID(context.Background(), "uid-1", "missing")
	assert.ErrorIs(t, err, ErrDealNotFound)
}
