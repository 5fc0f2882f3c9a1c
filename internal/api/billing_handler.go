package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/core"
)

// BillingHandler handles billing-related API endpoints.
type BillingHandler struct {
	billingService core.BillingService
	logger         *zap.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: bs, logger: logger}
}

// mapBillingErrorToStatus maps errors from core.BillingService to HTTP
// status codes and an ErrorResponse payload.
func (h *BillingHandler) mapBillingErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrPlanNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Plan or price not found", Details: err.Error()}
	case errors.Is(err, core.ErrUserStripeNotLinked), errors.Is(err, core.ErrNoSubscription):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "No subscription on file", Details: err.Error()}
	case errors.Is(err, core.ErrWebhookSignature):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Webhook signature verification failed"}
	case errors.Is(err, core.ErrWebhookProcessing):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Webhook processing error"}
	case errors.Is(err, core.ErrStripeClient):
		// 503 points at the upstream payment provider rather than this API.
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: "Payment provider error", Details: "Could not complete the operation with the payment provider."}
		h.logger.Error("Stripe client error", zap.Error(err))
	default:
		h.logger.Error("Internal error in BillingHandler", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// CreateCheckoutSession handles POST /billing/create-checkout-session.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	var req CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	email := c.GetString("userEmail")
	url, err := h.billingService.CreateCheckoutSession(c.Request.Context(), userID, email,
		req.PlanName, req.BillingCycle, req.SuccessURL, req.CancelURL)
	if err != nil {
		h.mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckoutSessionURLResponse{URL: url})
}

// GetCheckoutSession handles GET /billing/session/:sessionId. The
// post-purchase confirmation page uses it to show what was bought.
func (h *BillingHandler) GetCheckoutSession(c *gin.Context) {
	if _, ok := contextUserID(c); !ok {
		return
	}

	sessionID := c.Param("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "sessionId is required"})
		return
	}

	detail, err := h.billingService.GetCheckoutSession(c.Request.Context(), sessionID)
	if err != nil {
		h.mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// CreatePortalSession handles POST /billing/create-portal-session.
func (h *BillingHandler) CreatePortalSession(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	var req CreatePortalSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	portalURL, err := h.billingService.CreatePortalSession(c.Request.Context(), userID, req.ReturnURL)
	if err != nil {
		h.mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, CreatePortalSessionResponse{URL: portalURL})
}

// CancelSubscription handles POST /billing/cancel-subscription.
func (h *BillingHandler) CancelSubscription(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	if err := h.billingService.CancelSubscription(c.Request.Context(), userID); err != nil {
		h.mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Subscription will be canceled at the end of the billing period"})
}

// RequestRefund handles POST /billing/request-refund.
func (h *BillingHandler) RequestRefund(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	if err := h.billingService.RequestRefund(c.Request.Context(), userID); err != nil {
		h.mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Refund requested"})
}

// HandleStripeWebhook handles POST /billing/webhooks/stripe. This endpoint
// is public; Stripe authenticates via the Stripe-Signature header.
func (h *BillingHandler) HandleStripeWebhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing Stripe-Signature header"})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read webhook payload"})
		return
	}

	if err := h.billingService.HandleWebhook(c.Request.Context(), signature, payload); err != nil {
		h.logger.Warn("Stripe webhook rejected", zap.Error(err))
		h.mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Webhook received successfully"})
}
