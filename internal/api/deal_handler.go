package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/core"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/models"
)

// DealHandler handles brand-deal CRM API endpoints.
type DealHandler struct {
	dealService core.DealService
	logger      *zap.Logger
}

// NewDealHandler creates a new DealHandler.
func NewDealHandler(ds core.DealService, logger *zap.Logger) *DealHandler {
	return &DealHandler{dealService: ds, logger: logger}
}

func (h *DealHandler) mapDealError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrDealNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Deal not found"})
	case errors.Is(err, core.ErrDealAccessDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Deal does not belong to you"})
	case errors.Is(err, core.ErrInvalidDealStatus):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid deal status", Details: err.Error()})
	default:
		h.logger.Error("Internal error in DealHandler", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// CreateDeal handles POST /deals.
func (h *DealHandler) CreateDeal(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	var req models.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	deal, err := h.dealService.CreateDeal(c.Request.Context(), userID, req)
	if err != nil {
		h.mapDealError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deal)
}

// ListDeals handles GET /deals.
func (h *DealHandler) ListDeals(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	deals, err := h.dealService.ListDeals(c.Request.Context(), userID)
	if err != nil {
		h.mapDealError(c, err)
		return
	}
	if deals == nil {
		deals = []*models.Deal{}
	}
	c.JSON(http.StatusOK, deals)
}

// GetDeal handles GET /deals/:dealId.
func (h *DealHandler) GetDeal(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	deal, err := h.dealService.GetDealByID(c.Request.Context(), userID, c.Param("dealId"))
	if err != nil {
		h.mapDealError(c, err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

// UpdateDeal handles PUT /deals/:dealId.
func (h *DealHandler) UpdateDeal(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	var req models.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	deal, err := h.dealService.UpdateDeal(c.Request.Context(), userID, c.Param("dealId"), req)
	if err != nil {
		h.mapDealError(c, err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

// DeleteDeal handles DELETE /deals/:dealId.
func (h *DealHandler) DeleteDeal(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		return
	}

	if err := h.dealService.DeleteDeal(c.Request.Context(), userID, c.Param("dealId")); err != nil {
		h.mapDealError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Deal deleted"})
}
