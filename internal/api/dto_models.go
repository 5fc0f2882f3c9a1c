package api

// ErrorResponse is the standardized error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is a simple acknowledgment payload.
type SuccessResponse struct {
	Message string `json:"message"`
}

// CreateCheckoutSessionRequest starts a hosted checkout for a plan.
type CreateCheckoutSessionRequest struct {
	PlanName     string `json:"planName" binding:"required"`
	BillingCycle string `json:"billingCycle" binding:"required"`
	SuccessURL   string `json:"successUrl" binding:"required"`
	CancelURL    string `json:"cancelUrl" binding:"required"`
}

// CheckoutSessionURLResponse returns the hosted checkout URL.
type CheckoutSessionURLResponse struct {
	URL string `json:"url"`
}

// CreatePortalSessionRequest opens the billing portal.
type CreatePortalSessionRequest struct {
	ReturnURL string `json:"returnUrl" binding:"required"`
}

// CreatePortalSessionResponse returns the portal URL.
type CreatePortalSessionResponse struct {
	URL string `json:"url"`
}

// AnalyzeContractRequest carries the contract text to analyze.
type AnalyzeContractRequest struct {
	ContractText string `json:"contractText" binding:"required"`
}

// DraftCaptionsRequest asks for social caption drafts.
type DraftCaptionsRequest struct {
	Topic string `json:"topic" binding:"required"`
	Tone  string `json:"tone"`
	Count int    `json:"count"`
}
