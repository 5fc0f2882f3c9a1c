package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	"github.com/stripe/stripe-go/v82/charge"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/refund"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/config"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/models"
)

// Errors for billing operations.
var (
	ErrPlanNotFound        = errors.New("plan or price ID not found")
	ErrStripeClient        = errors.New("stripe client operation failed")
	ErrWebhookProcessing   = errors.New("stripe webhook processing failed")
	ErrWebhookSignature    = errors.New("stripe webhook signature verification failed")
	ErrUserStripeNotLinked = errors.New("user does not have a Stripe customer ID")
	ErrNoSubscription      = errors.New("user does not have an active subscription")
)

// billingService implements BillingService on top of the Stripe API.
type billingService struct {
	userService   UserService
	notifications NotificationService
	webhookSecret string
	appConfig     *config.Config
	planByPrice   map[string]planCycle
	logger        *zap.Logger
}

type planCycle struct {
	plan  string
	cycle string
}

// NewBillingService creates a billingService and sets the global Stripe key.
func NewBillingService(appConfig *config.Config, userService UserService, notifications NotificationService, logger *zap.Logger) BillingService {
	stripe.Key = appConfig.StripeSecretKey

	// Reverse index so webhook events carrying only a price ID can be
	// mapped back to a plan name and billing cycle.
	planByPrice := map[string]planCycle{}
	for _, pc := range []planCycle{
		{models.PlanStarter, "monthly"}, {models.PlanStarter, "yearly"},
		{models.PlanPro, "monthly"}, {models.PlanPro, "yearly"},
		{models.PlanPremium, "monthly"}, {models.PlanPremium, "yearly"},
	} {
		if priceID := appConfig.PriceID(pc.plan, pc.cycle); priceID != "" {
			planByPrice[priceID] = pc
		}
	}

	return &billingService{
		userService:   userService,
		notifications: notifications,
		webhookSecret: appConfig.StripeWebhookSecret,
		appConfig:     appConfig,
		planByPrice:   planByPrice,
		logger:        logger,
	}
}

// CreateCheckoutSession starts a hosted subscription checkout and returns its
// URL. The user ID travels as the client reference so the webhook can link
// the completed purchase back to the profile.
func (s *billingService) CreateCheckoutSession(ctx context.Context, userID, email, planName, billingCycle, successURL, cancelURL string) (string, error) {
	priceID := s.appConfig.PriceID(planName, billingCycle)
	if priceID == "" {
		return "", fmt.Errorf("%w: plan '%s' cycle '%s'", ErrPlanNotFound, planName, billingCycle)
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(userID),
		CustomerEmail:     stripe.String(email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"userId":       userID,
				"planName":     planName,
				"billingCycle": billingCycle,
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("userId", userID)
	params.AddMetadata("planName", planName)
	params.AddMetadata("billingCycle", billingCycle)

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: create checkout session: %v", ErrStripeClient, err)
	}
	return sess.URL, nil
}

// GetCheckoutSession fetches the detail of a completed checkout session for
// the post-purchase confirmation page.
func (s *billingService) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSessionDetail, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session ID", ErrStripeClient)
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: get checkout session '%s': %v", ErrStripeClient, sessionID, err)
	}

	detail := &CheckoutSessionDetail{
		SessionID:    sess.ID,
		PlanName:     sess.Metadata["planName"],
		BillingCycle: sess.Metadata["billingCycle"],
		Amount:       sess.AmountTotal,
		Currency:     string(sess.Currency),
		Status:       string(sess.Status),
	}
	if sess.CustomerDetails != nil {
		detail.UserEmail = sess.CustomerDetails.Email
	}
	return detail, nil
}

// CreatePortalSession opens the Stripe customer portal for the user.
func (s *billingService) CreatePortalSession(ctx context.Context, userID, returnURL string) (string, error) {
	user, err := s.userService.GetByID(ctx, userID, true)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID == "" {
		return "", fmt.Errorf("%w for user %s", ErrUserStripeNotLinked, userID)
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	ps, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: create portal session: %v", ErrStripeClient, err)
	}
	return ps.URL, nil
}

// CancelSubscription flags the user's subscription for cancellation at the
// end of the current billing period. Entitlement is revoked by the
// customer.subscription.deleted webhook when the period actually ends.
func (s *billingService) CancelSubscription(ctx context.Context, userID string) error {
	user, err := s.userService.GetByID(ctx, userID, true)
	if err != nil {
		return err
	}
	if user.StripeSubscriptionID == "" {
		return fmt.Errorf("%w for user %s", ErrNoSubscription, userID)
	}

	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx

	if _, err := subscription.Update(user.StripeSubscriptionID, params); err != nil {
		return fmt.Errorf("%w: cancel subscription: %v", ErrStripeClient, err)
	}

	if err := s.notifications.Notify(ctx, userID, models.NotificationSubscription,
		"Subscription cancellation scheduled",
		"Your plan stays active until the end of the current billing period."); err != nil {
		s.logger.Warn("Failed to record cancellation notification", zap.String("userID", userID), zap.Error(err))
	}
	return nil
}

// RequestRefund refunds the user's most recent charge.
func (s *billingService) RequestRefund(ctx context.Context, userID string) error {
	user, err := s.userService.GetByID(ctx, userID, true)
	if err != nil {
		return err
	}
	if user.StripeCustomerID == "" {
		return fmt.Errorf("%w for user %s", ErrUserStripeNotLinked, userID)
	}

	listParams := &stripe.ChargeListParams{
		Customer: stripe.String(user.StripeCustomerID),
	}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(1)

	iter := charge.List(listParams)
	if !iter.Next() {
		if err := iter.Err(); err != nil {
			return fmt.Errorf("%w: list charges: %v", ErrStripeClient, err)
		}
		return fmt.Errorf("%w: no charges found for user %s", ErrStripeClient, userID)
	}
	latest := iter.Charge()

	refundParams := &stripe.RefundParams{
		Charge: stripe.String(latest.ID),
	}
	refundParams.Context = ctx

	if _, err := refund.New(refundParams); err != nil {
		return fmt.Errorf("%w: create refund: %v", ErrStripeClient, err)
	}

	if err := s.notifications.Notify(ctx, userID, models.NotificationSubscription,
		"Refund requested",
		"Your refund has been submitted to the payment provider."); err != nil {
		s.logger.Warn("Failed to record refund notification", zap.String("userID", userID), zap.Error(err))
	}
	return nil
}

// Minimal webhook payload shapes. Decoding into local structs keeps the
// handler independent of Stripe API version churn in the full SDK types.

type webhookCheckoutSession struct {
	ID                string            `json:"id"`
	Mode              string            `json:"mode"`
	Customer          string            `json:"customer"`
	Subscription      string            `json:"subscription"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

type webhookSubscription struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	Items             struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
			Price            struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
	Metadata map[string]string `json:"metadata"`
}

type webhookInvoice struct {
	Customer string `json:"customer"`
}

// HandleWebhook verifies the Stripe signature and applies the event to the
// owning user's profile.
func (s *billingService) HandleWebhook(ctx context.Context, signature string, payload []byte) error {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess webhookCheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("%w: decode checkout.session: %v", ErrWebhookProcessing, err)
		}
		return s.handleCheckoutCompleted(ctx, sess)

	case "customer.subscription.updated":
		var sub webhookSubscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%w: decode subscription: %v", ErrWebhookProcessing, err)
		}
		return s.handleSubscriptionUpdated(ctx, sub)

	case "customer.subscription.deleted":
		var sub webhookSubscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%w: decode subscription: %v", ErrWebhookProcessing, err)
		}
		return s.handleSubscriptionDeleted(ctx, sub)

	case "invoice.payment_failed":
		var inv webhookInvoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("%w: decode invoice: %v", ErrWebhookProcessing, err)
		}
		return s.handlePaymentFailed(ctx, inv)

	default:
		s.logger.Info("Stripe webhook ignored (unhandled type)", zap.String("type", string(event.Type)))
		return nil
	}
}

func (s *billingService) handleCheckoutCompleted(ctx context.Context, sess webhookCheckoutSession) error {
	if sess.Mode != "" && sess.Mode != "subscription" {
		return nil
	}
	userID := strings.TrimSpace(sess.ClientReferenceID)
	if userID == "" {
		userID = sess.Metadata["userId"]
	}
	if userID == "" {
		return fmt.Errorf("%w: checkout session '%s' carries no user reference", ErrWebhookProcessing, sess.ID)
	}

	plan := sess.Metadata["planName"]
	if plan == "" {
		// Checkout sessions created by this app always carry planName
		// metadata; a payload without it cannot be attributed to a plan.
		s.logger.Warn("Checkout session completed without plan metadata; defaulting to Starter",
			zap.String("sessionID", sess.ID), zap.String("userID", userID))
		plan = models.PlanStarter
	}

	state := models.SubscriptionState{
		Role:                 models.RoleProUser,
		Status:               models.SubscriptionActive,
		Plan:                 plan,
		StripeCustomerID:     sess.Customer,
		StripeSubscriptionID: sess.Subscription,
	}
	if _, err := s.userService.ApplySubscription(ctx, userID, state); err != nil {
		return fmt.Errorf("%w: apply checkout for user '%s': %v", ErrWebhookProcessing, userID, err)
	}

	if err := s.notifications.Notify(ctx, userID, models.NotificationSubscription,
		fmt.Sprintf("%s plan activated", plan),
		"Your subscription is active. All pro features are unlocked."); err != nil {
		s.logger.Warn("Failed to record activation notification", zap.String("userID", userID), zap.Error(err))
	}
	return nil
}

func (s *billingService) handleSubscriptionUpdated(ctx context.Context, sub webhookSubscription) error {
	user, err := s.userService.GetByStripeCustomerID(ctx, sub.Customer)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Customer created outside this app; nothing to reconcile.
			s.logger.Warn("Subscription event for unknown customer", zap.String("customer", sub.Customer))
			return nil
		}
		return fmt.Errorf("%w: lookup customer '%s': %v", ErrWebhookProcessing, sub.Customer, err)
	}

	state := s.subscriptionToState(sub)
	if _, err := s.userService.ApplySubscription(ctx, user.ID, state); err != nil {
		return fmt.Errorf("%w: apply subscription update for user '%s': %v", ErrWebhookProcessing, user.ID, err)
	}
	return nil
}

func (s *billingService) handleSubscriptionDeleted(ctx context.Context, sub webhookSubscription) error {
	user, err := s.userService.GetByStripeCustomerID(ctx, sub.Customer)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("%w: lookup customer '%s': %v", ErrWebhookProcessing, sub.Customer, err)
	}

	state := models.SubscriptionState{
		Role:   models.RoleFreeUser,
		Status: models.SubscriptionCanceled,
		Plan:   "",
	}
	if _, err := s.userService.ApplySubscription(ctx, user.ID, state); err != nil {
		return fmt.Errorf("%w: apply subscription deletion for user '%s': %v", ErrWebhookProcessing, user.ID, err)
	}

	if err := s.notifications.Notify(ctx, user.ID, models.NotificationSubscription,
		"Subscription ended",
		"Your plan has ended. You are back on the free tier."); err != nil {
		s.logger.Warn("Failed to record deletion notification", zap.String("userID", user.ID), zap.Error(err))
	}
	return nil
}

func (s *billingService) handlePaymentFailed(ctx context.Context, inv webhookInvoice) error {
	user, err := s.userService.GetByStripeCustomerID(ctx, inv.Customer)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("%w: lookup customer '%s': %v", ErrWebhookProcessing, inv.Customer, err)
	}

	if err := s.notifications.Notify(ctx, user.ID, models.NotificationSubscription,
		"Payment failed",
		"We could not collect your latest payment. Please update your payment method in the billing portal."); err != nil {
		s.logger.Warn("Failed to record payment-failed notification", zap.String("userID", user.ID), zap.Error(err))
	}
	return nil
}

// subscriptionToState maps a Stripe subscription payload to the profile's
// billing fields. Anything other than an active or trialing subscription
// drops the user out of entitlement.
func (s *billingService) subscriptionToState(sub webhookSubscription) models.SubscriptionState {
	state := models.SubscriptionState{
		StripeCustomerID:     sub.Customer,
		StripeSubscriptionID: sub.ID,
	}

	switch sub.Status {
	case "active", "trialing":
		state.Role = models.RoleProUser
		state.Status = models.SubscriptionActive
	case "past_due", "unpaid":
		state.Role = models.RoleProUser
		state.Status = models.SubscriptionPastDue
	case "canceled":
		state.Role = models.RoleFreeUser
		state.Status = models.SubscriptionCanceled
	default:
		state.Role = models.RoleFreeUser
		state.Status = models.SubscriptionInactive
	}

	if plan := sub.Metadata["planName"]; plan != "" {
		state.Plan = plan
	} else if len(sub.Items.Data) > 0 {
		if pc, ok := s.planByPrice[sub.Items.Data[0].Price.ID]; ok {
			state.Plan = pc.plan
		}
	}
	if state.Role == models.RoleFreeUser {
		state.Plan = ""
	}

	if len(sub.Items.Data) > 0 && sub.Items.Data[0].CurrentPeriodEnd > 0 {
		end := time.Unix(sub.Items.Data[0].CurrentPeriodEnd, 0).UTC()
		state.PeriodEnd = &end
	}

	return state
}
