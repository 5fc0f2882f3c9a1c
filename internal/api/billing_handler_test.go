package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/core"
)

// stubBillingService returns canned results for handler tests.
type stubBillingService struct {
	checkoutURL string
	detail      *core.CheckoutSessionDetail
	portalURL   string
	err         error

	webhookSignature string
	webhookPayload   []byte
}

func (s *stubBillingService) CreateCheckoutSession(ctx context.Context, userID, email, planName, billingCycle, successURL, cancelURL string) (string, error) {
	return s.checkoutURL, s.err
}

func (s *stubBillingService) GetCheckoutSession(ctx context.Context, sessionID string) (*core.CheckoutSessionDetail, error) {
	return s.detail, s.err
}

func (s *stubBillingService) CreatePortalSession(ctx context.Context, userID, returnURL string) (string, error) {
	return s.portalURL, s.err
}

func (s *stubBillingService) CancelSubscription(ctx context.Context, userID string) error {
	return s.err
}

func (s *stubBillingService) RequestRefund(ctx context.Context, userID string) error {
	return s.err
}

func (s *stubBillingService) HandleWebhook(ctx context.Context, signature string, payload []byte) error {
	s.webhookSignature = signature
	s.webhookPayload = payload
	return s.err
}

func newBillingTestRouter(svc core.BillingService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewBillingHandler(svc, zap.NewNop())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userID", userID)
			c.Set("userEmail", "a@b.c")
		}
	})
	router.POST("/billing/create-checkout-session", handler.CreateCheckoutSession)
	router.GET("/billing/session/:sessionId", handler.GetCheckoutSession)
	router.POST("/billing/cancel-subscription", handler.CancelSubscription)
	router.POST("/billing/webhooks/stripe", handler.HandleStripeWebhook)
	return router
}

func TestCreateCheckoutSessionHandler(t *testing.T) {
	svc := &stubBillingService{checkoutURL: "https://checkout.stripe.com/pay/cs_123"}
	router := newBillingTestRouter(svc, "uid-1")

	body := `{"planName":"Pro","billingCycle":"monthly","successUrl":"https://x/s","cancelUrl":"https://x/c"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/billing/create-checkout-session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp CheckoutSessionURLResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", resp.URL)
}

func TestCreateCheckoutSessionHandlerRequiresAuth(t *testing.T) {
	router := newBillingTestRouter(&stubBillingService{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/billing/create-checkout-session", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetCheckoutSessionHandler(t *testing.T) {
	svc := &stubBillingService{detail: &core.CheckoutSessionDetail{
		SessionID: "cs_123",
		PlanName:  "Pro",
		Status:    "complete",
	}}
	router := newBillingTestRouter(svc, "uid-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/billing/session/cs_123", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var detail core.CheckoutSessionDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Pro", detail.PlanName)
}

func TestBillingErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"plan not found", core.ErrPlanNotFound, http.StatusNotFound},
		{"no subscription", core.ErrNoSubscription, http.StatusBadRequest},
		{"not linked", core.ErrUserStripeNotLinked, http.StatusBadRequest},
		{"stripe down", core.ErrStripeClient, http.StatusServiceUnavailable},
		{"user missing", core.ErrUserNotFound, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newBillingTestRouter(&stubBillingService{err: tt.err}, "uid-1")

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/billing/cancel-subscription", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestStripeWebhookHandler(t *testing.T) {
	svc := &stubBillingService{}
	router := newBillingTestRouter(svc, "")

	payload := `{"id":"evt_1","type":"checkout.session.completed"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/billing/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t=1,v1=abc", svc.webhookSignature)
	assert.JSONEq(t, payload, string(svc.webhookPayload))
}

func TestStripeWebhookHandlerMissingSignature(t *testing.T) {
	router := newBillingTestRouter(&stubBillingService{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/billing/webhooks/stripe", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
