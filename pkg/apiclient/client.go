// Package apiclient is a typed Go client for the creator-tracker HTTP API.
// It handles bearer-token auth and JSON decoding; pkg/session builds the
// subscription-state machinery on top of it.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// TokenSource supplies a fresh Firebase ID token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Config holds client settings.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.example.com". The client
	// appends "/api/v1/..." paths to it.
	BaseURL string
	// Tokens supplies auth tokens. Required.
	Tokens TokenSource
	// HTTPClient overrides the default HTTP client. Optional.
	HTTPClient *http.Client
}

// Client is a typed HTTP client for the backend API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("apiclient: BaseURL is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("apiclient: Tokens is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		tokens:     cfg.Tokens,
		httpClient: httpClient,
	}, nil
}

// do performs an authenticated JSON request and decodes the response into out
// when out is non-nil. Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("apiclient: obtain token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		var payload struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Details = payload.Details
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("apiclient: decode response: %w", err)
		}
	}
	return nil
}

// InitializeProfile ensures the backend profile exists for the signed-in user.
// Called once after login or signup.
func (c *Client) InitializeProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodPost, "/api/v1/users/initialize", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfile fetches the current user's profile. fresh forces the server to
// bypass its profile cache, used right after a subscription change.
func (c *Client) GetProfile(ctx context.Context, fresh bool) (*Profile, error) {
	path := "/api/v1/users/me"
	if fresh {
		path += "?fresh=true"
	}
	var profile Profile
	if err := c.do(ctx, http.MethodGet, path, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile updates the current user's profile.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodPut, "/api/v1/users/me", req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateCheckoutSession creates a Stripe checkout session and returns the
// hosted checkout URL to redirect the user to.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CreateCheckoutSessionRequest) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/billing/create-checkout-session", req, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// GetCheckoutSession fetches the details of a completed checkout session.
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSessionDetail, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("apiclient: sessionID is required")
	}
	var detail CheckoutSessionDetail
	path := "/api/v1/billing/session/" + url.PathEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreatePortalSession creates a Stripe billing portal session URL.
func (c *Client) CreatePortalSession(ctx context.Context, returnURL string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	body := map[string]string{"returnUrl": returnURL}
	if err := c.do(ctx, http.MethodPost, "/api/v1/billing/create-portal-session", body, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// CancelSubscription schedules the current subscription for cancellation at
// the end of the billing period.
func (c *Client) CancelSubscription(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/billing/cancel-subscription", nil, nil)
}

// RequestRefund requests a refund of the latest charge.
func (c *Client) RequestRefund(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/billing/request-refund", nil, nil)
}

// ListNotifications fetches the current user's notifications, newest first.
func (c *Client) ListNotifications(ctx context.Context) ([]Notification, error) {
	var list []Notification
	if err := c.do(ctx, http.MethodGet, "/api/v1/notifications", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkNotificationRead marks a notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	path := "/api/v1/notifications/" + url.PathEscape(notificationID) + "/read"
	return c.do(ctx, http.MethodPost, path, nil, nil)
}
