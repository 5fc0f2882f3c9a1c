package core

import (
	"context"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/models"
)

// UserService defines the interface for user-profile operations.
type UserService interface {
	// GetOrCreate retrieves a user by ID, creating a default free-tier
	// profile on first login. Returns the user and whether it was created.
	GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error)
	// GetByID retrieves a user. bypassCache forces a read from Firestore,
	// used when a client signals a fresh subscription change.
	GetByID(ctx context.Context, userID string, bypassCache bool) (*models.User, error)
	// UpdateProfile replaces the user document with an updated snapshot.
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error)
	// ApplySubscription replaces the user's billing fields as one atomic
	// document write and invalidates the profile cache.
	ApplySubscription(ctx context.Context, userID string, state models.SubscriptionState) (*models.User, error)
	// GetByStripeCustomerID resolves the user owning a Stripe customer.
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
}

// BillingService defines the interface for payment-provider operations.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID, email, planName, billingCycle, successURL, cancelURL string) (string, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSessionDetail, error)
	CreatePortalSession(ctx context.Context, userID, returnURL string) (string, error)
	CancelSubscription(ctx context.Context, userID string) error
	RequestRefund(ctx context.Context, userID string) error
	HandleWebhook(ctx context.Context, signature string, payload []byte) error
}

// DealService defines the interface for brand-deal CRM operations.
type DealService interface {
	CreateDeal(ctx context.Context, userID string, req models.CreateDealRequest) (*models.Deal, error)
	GetDealByID(ctx context.Context, userID, dealID string) (*models.Deal, error)
	ListDeals(ctx context.Context, userID string) ([]*models.Deal, error)
	UpdateDeal(ctx context.Context, userID, dealID string, req models.UpdateDealRequest) (*models.Deal, error)
	DeleteDeal(ctx context.Context, userID, dealID string) error
}

// NotificationService defines the interface for in-app notifications.
type NotificationService interface {
	List(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	Delete(ctx context.Context, userID, notificationID string) error
	Notify(ctx context.Context, userID, kind, title, body string) error
}

// AssistantService defines AI-assisted generation operations. All of these
// are pro-gated at the API layer.
type AssistantService interface {
	AnalyzeContract(ctx context.Context, contractText string) (*ContractAnalysis, error)
	RecommendPricing(ctx context.Context, req PricingRequest) (*PricingRecommendation, error)
	DealInsights(ctx context.Context, deals []*models.Deal) (*DealInsightsResult, error)
	DraftOutreachEmail(ctx context.Context, req OutreachRequest) (*EmailDraft, error)
	DraftCaptions(ctx context.Context, topic, tone string, count int) (*CaptionDrafts, error)
}

// CheckoutSessionDetail is what the post-purchase confirmation page shows.
type CheckoutSessionDetail struct {
	SessionID    string `json:"sessionId"`
	PlanName     string `json:"planName"`
	Amount       int64  `json:"amount"` // cents
	Currency     string `json:"currency"`
	BillingCycle string `json:"billingCycle"`
	Status       string `json:"status"`
	UserEmail    string `json:"userEmail,omitempty"`
}

// ContractAnalysis is the structured result of analyzing a brand contract.
type ContractAnalysis struct {
	Summary      string   `json:"summary"`
	PaymentTerms string   `json:"paymentTerms"`
	Exclusivity  string   `json:"exclusivity"`
	RedFlags     []string `json:"redFlags"`
}

// PricingRequest carries the inputs for a pricing recommendation.
type PricingRequest struct {
	Platform     string `json:"platform" binding:"required"`
	Followers    int64  `json:"followers" binding:"required"`
	Deliverable  string `json:"deliverable" binding:"required"`
	Niche        string `json:"niche"`
	EngagementPc string `json:"engagementPct"`
}

// PricingRecommendation is a suggested rate range.
type PricingRecommendation struct {
	SuggestedMin int64  `json:"suggestedMin"` // cents
	SuggestedMax int64  `json:"suggestedMax"` // cents
	Currency     string `json:"currency"`
	Rationale    string `json:"rationale"`
}

// DealInsightsResult summarizes a creator's deal pipeline.
type DealInsightsResult struct {
	Summary         string   `json:"summary"`
	Opportunities   []string `json:"opportunities"`
	Risks           []string `json:"risks"`
	SuggestedFollow []string `json:"suggestedFollowUps"`
}

// OutreachRequest carries the inputs for drafting a brand outreach email.
type OutreachRequest struct {
	BrandName   string `json:"brandName" binding:"required"`
	CreatorName string `json:"creatorName"`
	Pitch       string `json:"pitch"`
	Tone        string `json:"tone"`
}

// EmailDraft is a generated email.
type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// CaptionDrafts is a set of generated social captions.
type CaptionDrafts struct {
	Captions []string `json:"captions"`
}
