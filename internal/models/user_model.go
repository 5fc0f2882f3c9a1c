package models

import "time"

// Role is the application-level role of a user.
type Role string

const (
	RoleFreeUser Role = "free_user"
	RoleProUser  Role = "pro_user"
)

// Subscription status values as reported by the payment provider.
const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// Plan names exposed to clients. These map to Stripe price IDs in config.
const (
	PlanStarter = "Starter"
	PlanPro     = "Pro"
	PlanPremium = "Premium"
)

// User represents a user profile in the system.
type User struct {
	ID                      string            `json:"id" firestore:"-"` // Firebase Auth UID, used as the document ID
	Email                   string            `json:"email"`
	DisplayName             string            `json:"displayName,omitempty"`
	PhotoURL                string            `json:"photoURL,omitempty"`
	Role                    Role              `json:"role"`
	SubscriptionStatus      string            `json:"subscriptionStatus,omitempty"`
	SubscriptionPlan        string            `json:"subscriptionPlan,omitempty"`
	SubscriptionPeriodEnd   *time.Time        `json:"subscriptionPeriodEnd,omitempty"`
	StripeCustomerID        string            `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID    string            `json:"stripeSubscriptionId,omitempty"`
	Integrations            map[string]string `json:"integrations,omitempty"` // e.g. "youtube" -> channel ID
	CreatedAt               time.Time         `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt               time.Time         `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// UpdateProfileRequest is the payload for PUT /users/me. Pointer fields
// distinguish "not provided" from zero values; the service layer folds them
// into a full document replacement.
type UpdateProfileRequest struct {
	DisplayName  *string            `json:"displayName"`
	PhotoURL     *string            `json:"photoURL"`
	Integrations *map[string]string `json:"integrations"`
}

// SubscriptionState is the billing-owned slice of a user profile. The webhook
// path applies it as a unit so role, status and plan always change together.
type SubscriptionState struct {
	Role                 Role
	Status               string
	Plan                 string
	PeriodEnd            *time.Time
	StripeCustomerID     string
	StripeSubscriptionID string
}

// HasPaidAccess reports whether the user is entitled to paid-tier features.
// The three fields are checked together on purpose: a role or status left
// over from a previous billing state must never grant access on its own.
func (u *User) HasPaidAccess() bool {
	if u == nil {
		return false
	}
	if u.Role != RoleProUser || u.SubscriptionStatus != SubscriptionActive {
		return false
	}
	switch u.SubscriptionPlan {
	case PlanStarter, PlanPro, PlanPremium:
		return true
	}
	return false
}
