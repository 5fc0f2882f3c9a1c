package core

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/config"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/models"
)

const testWebhookSecret = "whsec_test_secret"

func newTestBillingService(users *fakeUserService, notifier *fakeNotifier) *billingService {
	cfg := &config.Config{
		StripeSecretKey:           "sk_test_123",
		StripeWebhookSecret:       testWebhookSecret,
		StripePriceStarterMonthly: "price_starter_m",
		StripePriceProMonthly:     "price_pro_m",
		StripePriceProYearly:      "price_pro_y",
		StripePricePremiumYearly:  "price_premium_y",
	}
	svc := NewBillingService(cfg, users, notifier, zap.NewNop())
	return svc.(*billingService)
}

// signWebhookPayload produces a Stripe-Signature header value for payload,
// using the same scheme as Stripe's webhook signing.
func signWebhookPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	svc := newTestBillingService(newFakeUserService(), &fakeNotifier{})

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)
	err := svc.HandleWebhook(context.Background(), "t=1,v1=deadbeef", payload)
	assert.ErrorIs(t, err, ErrWebhookSignature)
}

func TestHandleWebhookCheckoutCompletedUpgradesUser(t *testing.T) {
	users := newFakeUserService()
	notifier := &fakeNotifier{}
	svc := newTestBillingService(users, notifier)

	_, _, err := users.GetOrCreate(context.Background(), "uid-1", "a@b.c", "", "")
	require.NoError(t, err)

	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_123",
				"mode": "subscription",
				"customer": "cus_1",
				"subscription": "sub_1",
				"client_reference_id": "uid-1",
				"metadata": {"userId": "uid-1", "planName": "Pro", "billingCycle": "monthly"}
			}
		}
	}`)

	err = svc.HandleWebhook(context.Background(), signWebhookPayload(payload, testWebhookSecret), payload)
	require.NoError(t, err)

	applied := users.appliedStates()
	require.Len(t, applied, 1)
	assert.Equal(t, "uid-1", applied[0].userID)
	assert.Equal(t, models.RoleProUser, applied[0].state.Role)
	assert.Equal(t, models.SubscriptionActive, applied[0].state.Status)
	assert.Equal(t, models.PlanPro, applied[0].state.Plan)
	assert.Equal(t, "cus_1", applied[0].state.StripeCustomerID)
	assert.Equal(t, "sub_1", applied[0].state.StripeSubscriptionID)
	assert.Contains(t, notifier.notified(), "Pro plan activated")
}

func TestHandleWebhookIgnoresUnhandledTypes(t *testing.T) {
	users := newFakeUserService()
	svc := newTestBillingService(users, &fakeNotifier{})

	payload := []byte(`{"id":"evt_1","type":"customer.created","data":{"object":{}}}`)
	err := svc.HandleWebhook(context.Background(), signWebhookPayload(payload, testWebhookSecret), payload)
	require.NoError(t, err)
	assert.Empty(t, users.appliedStates())
}

func TestHandleCheckoutCompletedWithoutPlanMetadata(t *testing.T) {
	users := newFakeUserService()
	svc := newTestBillingService(users, &fakeNotifier{})

	_, _, err := users.GetOrCreate(context.Background(), "uid-1", "a@b.c", "", "")
	require.NoError(t, err)

	// A payload this app cannot attribute to a plan still activates the
	// purchase, on the lowest tier.
	err = svc.handleCheckoutCompleted(context.Background(), webhookCheckoutSession{
		ID:                "cs_123",
		Mode:              "subscription",
		Customer:          "cus_1",
		Subscription:      "sub_1",
		ClientReferenceID: "uid-1",
	})
	require.NoError(t, err)

	applied := users.appliedStates()
	require.Len(t, applied, 1)
	assert.Equal(t, models.PlanStarter, applied[0].state.Plan)
	assert.Equal(t, models.RoleProUser, applied[0].state.Role)
}

func TestHandleCheckoutCompletedWithoutUserReference(t *testing.T) {
	svc := newTestBillingService(newFakeUserService(), &fakeNotifier{})

	err := svc.handleCheckoutCompleted(context.Background(), webhookCheckoutSession{
		ID:   "cs_123",
		Mode: "subscription",
	})
	assert.ErrorIs(t, err, ErrWebhookProcessing)
}

func TestHandleSubscriptionUpdatedForUnknownCustomer(t *testing.T) {
	users := newFakeUserService()
	svc := newTestBillingService(users, &fakeNotifier{})

	// Customers created outside the app are not an error; there is just
	// nothing to reconcile.
	err := svc.handleSubscriptionUpdated(context.Background(), webhookSubscription{
		ID:       "sub_1",
		Customer: "cus_unknown",
		Status:   "active",
	})
	require.NoError(t, err)
	assert.Empty(t, users.appliedStates())
}

func TestHandleSubscriptionDeletedDowngradesUser(t *testing.T) {
	users := newFakeUserService()
	notifier := &fakeNotifier{}
	svc := newTestBillingService(users, notifier)

	_, _, err := users.GetOrCreate(context.Background(), "uid-1", "a@b.c", "", "")
	require.NoError(t, err)
	_, err = users.ApplySubscription(context.Background(), "uid-1", models.SubscriptionState{
		Role: models.RoleProUser, Status: models.SubscriptionActive, Plan: models.PlanPro,
		StripeCustomerID: "cus_1", StripeSubscriptionID: "sub_1",
	})
	require.NoError(t, err)

	err = svc.handleSubscriptionDeleted(context.Background(), webhookSubscription{
		ID:       "sub_1",
		Customer: "cus_1",
		Status:   "canceled",
	})
	require.NoError(t, err)

	applied := users.appliedStates()
	require.Len(t, applied, 2)
	assert.Equal(t, models.RoleFreeUser, applied[1].state.Role)
	assert.Equal(t, models.SubscriptionCanceled, applied[1].state.Status)
	assert.Empty(t, applied[1].state.Plan)
	assert.Contains(t, notifier.notified(), "Subscription ended")
}

func TestSubscriptionToState(t *testing.T) {
	svc := newTestBillingService(newFakeUserService(), &fakeNotifier{})

	periodEnd := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	makeSub := func(status, metaPlan, priceID string, end int64) webhookSubscription {
		sub := webhookSubscription{ID: "sub_1", Customer: "cus_1", Status: status}
		if metaPlan != "" {
			sub.Metadata = map[string]string{"planName": metaPlan}
		}
		if priceID != "" || end > 0 {
			sub.Items.Data = make([]struct {
				CurrentPeriodEnd int64 `json:"current_period_end"`
				Price            struct {
					ID string `json:"id"`
				} `json:"price"`
			}, 1)
			sub.Items.Data[0].CurrentPeriodEnd = end
			sub.Items.Data[0].Price.ID = priceID
		}
		return sub
	}

	t.Run("active with metadata plan", func(t *testing.T) {
		state := svc.subscriptionToState(makeSub("active", "Premium", "", 0))
		assert.Equal(t, models.RoleProUser, state.Role)
		assert.Equal(t, models.SubscriptionActive, state.Status)
		assert.Equal(t, models.PlanPremium, state.Plan)
	})

	t.Run("trialing counts as active", func(t *testing.T) {
		state := svc.subscriptionToState(makeSub("trialing", "Pro", "", 0))
		assert.Equal(t, models.RoleProUser, state.Role)
		assert.Equal(t, models.SubscriptionActive, state.Status)
	})

	t.Run("plan resolved from price ID", func(t *testing.T) {
		state := svc.subscriptionToState(makeSub("active", "", "price_pro_y", 0))
		assert.Equal(t, models.PlanPro, state.Plan)
	})

	t.Run("past_due keeps pro role", func(t *testing.T) {
		state := svc.subscriptionToState(makeSub("past_due", "Pro", "", 0))
		assert.Equal(t, models.RoleProUser, state.Role)
		assert.Equal(t, models.SubscriptionPastDue, state.Status)
	})

	t.Run("canceled clears plan", func(t *testing.T) {
		state := svc.subscriptionToState(makeSub("canceled", "Pro", "", 0))
		assert.Equal(t, models.RoleFreeUser, state.Role)
		assert.Equal(t, models.SubscriptionCanceled, state.Status)
		assert.Empty(t, state.Plan)
	})

	t.Run("unknown status means inactive free tier", func(t *testing.T) {
		state := svc.subscriptionToState(makeSub("incomplete_expired", "Pro", "", 0))
		assert.Equal(t, models.RoleFreeUser, state.Role)
		assert.Equal(t, models.SubscriptionInactive, state.Status)
		assert.Empty(t, state.Plan)
	})

	t.Run("period end from subscription item", func(t *testing.T) {
		state := svc.subscriptionToState(makeSub("active", "Pro", "", periodEnd.Unix()))
		require.NotNil(t, state.PeriodEnd)
		assert.True(t, periodEnd.Equal(*state.PeriodEnd))
	})
}
