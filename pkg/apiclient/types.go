package apiclient

import (
	"fmt"
	"time"
)

// Profile mirrors the user document returned by GET /users/me.
type Profile struct {
	ID                    string            `json:"id"`
	Email                 string            `json:"email"`
	DisplayName           string            `json:"displayName,omitempty"`
	PhotoURL              string            `json:"photoURL,omitempty"`
	Role                  string            `json:"role"`
	SubscriptionStatus    string            `json:"subscriptionStatus,omitempty"`
	SubscriptionPlan      string            `json:"subscriptionPlan,omitempty"`
	SubscriptionPeriodEnd *time.Time        `json:"subscriptionPeriodEnd,omitempty"`
	Integrations          map[string]string `json:"integrations,omitempty"`
	CreatedAt             time.Time         `json:"createdAt"`
	UpdatedAt             time.Time         `json:"updatedAt"`
}

// UpdateProfileRequest is the payload for PUT /users/me. Nil fields are left
// unchanged on the server.
type UpdateProfileRequest struct {
	DisplayName  *string            `json:"displayName,omitempty"`
	PhotoURL     *string            `json:"photoURL,omitempty"`
	Integrations *map[string]string `json:"integrations,omitempty"`
}

// CheckoutSessionDetail describes a completed checkout session, shown on the
// post-purchase confirmation page.
type CheckoutSessionDetail struct {
	SessionID    string `json:"sessionId"`
	PlanName     string `json:"planName"`
	Amount       int64  `json:"amount"` // cents
	Currency     string `json:"currency"`
	BillingCycle string `json:"billingCycle"`
	Status       string `json:"status"`
	UserEmail    string `json:"userEmail,omitempty"`
}

// CreateCheckoutSessionRequest is the payload for creating a checkout session.
type CreateCheckoutSessionRequest struct {
	PlanName     string `json:"planName"`
	BillingCycle string `json:"billingCycle"`
	SuccessURL   string `json:"successUrl"`
	CancelURL    string `json:"cancelUrl"`
}

// Notification mirrors an in-app notification document.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api: %d %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}
