package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/core"
)

// AssistantHandler handles AI-assisted generation endpoints. The route group
// is pro-gated by middleware.RequirePaidPlan.
type AssistantHandler struct {
	assistantService core.AssistantService
	dealService      core.DealService
	logger           *zap.Logger
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(as core.AssistantService, ds core.DealService, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{assistantService: as, dealService: ds, logger: logger}
}

func (h *AssistantHandler) mapAssistantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrAssistantNotConfigured):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "AI assistant is not configured on this server"})
	case errors.Is(err, core.ErrAssistantProvider):
		h.logger.Error("Assistant provider error", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "AI provider error", Details: "The AI provider could not complete the request."})
	default:
		h.logger.Error("Internal error in AssistantHandler", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// AnalyzeContract handles POST /assistant/analyze-contract.
func (h *AssistantHandler) AnalyzeContract(c *gin.Context) {
	if _, ok := contextUserID(c); !ok {
		return
	}

	var req AnalyzeContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.assistantService.AnalyzeContract(c.Request.Context(), req.ContractText)
	if err != nil {
		h.mapAssistantError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RecommendPricing handles POST /assistant/recommend-pricing.
func (h *AssistantHandler) RecommendPricing(c *gin.Context) {
	if _, ok := contextUserID(c); !ok {
		return
	}

	var req core.PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.assistantService.RecommendPricing(c.Request.Context(), req)
	if err != nil {
		h.mapAssistantError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DealInsights handles GET /assistant/deal-insights. Pulls the caller's deal
// pipeline and asks the model for a summary.
func (h *AssistantHandler) DealInsights(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	deals, err := h.dealService.ListDeals(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load deals for insights", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load deals"})
		return
	}

	result, err := h.assistantService.DealInsights(c.Request.Context(), deals)
	if err != nil {
		h.mapAssistantError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DraftOutreachEmail handles POST /assistant/draft-email.
func (h *AssistantHandler) DraftOutreachEmail(c *gin.Context) {
	if _, ok := contextUserID(c); !ok {
		return
	}

	var req core.OutreachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.assistantService.DraftOutreachEmail(c.Request.Context(), req)
	if err != nil {
		h.mapAssistantError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DraftCaptions handles POST /assistant/draft-captions.
func (h *AssistantHandler) DraftCaptions(c *gin.Context) {
	if _, ok := contextUserID(c); !ok {
		return
	}

	var req DraftCaptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.assistantService.DraftCaptions(c.Request.Context(), req.Topic, req.Tone, req.Count)
	if err != nil {
		h.mapAssistantError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
