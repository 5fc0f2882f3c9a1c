package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticTokens(token string) TokenSource {
	return TokenSourceFunc(func(ctx context.Context) (string, error) {
		return token, nil
	})
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL: srv.URL,
		Tokens:  staticTokens("test-token"),
	})
	require.NoError(t, err)
	return client, srv
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{Tokens: staticTokens("x")})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestGetProfileSendsAuthAndFreshParam(t *testing.T) {
	var gotAuth string
	var gotFresh []string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotFresh = append(gotFresh, r.URL.Query().Get("fresh"))
		json.NewEncoder(w).Encode(Profile{
			ID:                 "uid-1",
			Role:               "pro_user",
			SubscriptionStatus: "active",
			SubscriptionPlan:   "Pro",
		})
	}))

	profile, err := client.GetProfile(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", profile.ID)
	assert.Equal(t, "Bearer test-token", gotAuth)

	_, err = client.GetProfile(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "true"}, gotFresh)
}

func TestAPIErrorDecoding(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "Paid plan required",
			"details": "Upgrade to a paid plan.",
		})
	}))

	_, err := client.GetProfile(context.Background(), false)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Paid plan required", apiErr.Message)
	assert.Equal(t, "Upgrade to a paid plan.", apiErr.Details)
}

func TestGetCheckoutSession(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/billing/session/cs_123", r.URL.Path)
		json.NewEncoder(w).Encode(CheckoutSessionDetail{
			SessionID: "cs_123",
			PlanName:  "Pro",
			Amount:    2900,
			Currency:  "usd",
			Status:    "complete",
		})
	}))

	detail, err := client.GetCheckoutSession(context.Background(), "cs_123")
	require.NoError(t, err)
	assert.Equal(t, "Pro", detail.PlanName)
	assert.Equal(t, int64(2900), detail.Amount)

	_, err = client.GetCheckoutSession(context.Background(), "")
	assert.Error(t, err)
}

func TestCreateCheckoutSessionPostsPayload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/billing/create-checkout-session", r.URL.Path)

		var req CreateCheckoutSessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Pro", req.PlanName)
		assert.Equal(t, "monthly", req.BillingCycle)

		json.NewEncoder(w).Encode(map[string]string{"url": "https://checkout.stripe.com/pay/cs_123"})
	}))

	url, err := client.CreateCheckoutSession(context.Background(), CreateCheckoutSessionRequest{
		PlanName:     "Pro",
		BillingCycle: "monthly",
		SuccessURL:   "https://app.example.com/purchase-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:    "https://app.example.com/pricing",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", url)
}

func TestCancelSubscription(t *testing.T) {
	var called bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "/api/v1/billing/cancel-subscription", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))

	require.NoError(t, client.CancelSubscription(context.Background()))
	assert.True(t, called)
}
