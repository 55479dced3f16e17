// internal/handlers/balance.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/playline/agency-backend/internal/services"
	"github.com/playline/agency-backend/internal/utils"
)

type BalanceHandler struct {
	balanceService *services.BalanceService
	payoutService  *services.PayoutService
}

func NewBalanceHandler(balanceService *services.BalanceService, payoutService *services.PayoutService) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
		payoutService:  payoutService,
	}
}

// GET /agents/:id/balance
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid agent ID", nil)
		return
	}

	balance, err := h.balanceService.GetAgentBalance(agentID)
	if err != nil {
		utils.NotFoundResponse(c, "Agent")
		return
	}

	utils.SuccessResponse(c, balance)
}

// POST /balances/adjust
func (h *BalanceHandler) Adjust(c *gin.Context) {
	operatorIDStr, exists := utils.GetAgentIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	operatorID, err := uuid.Parse(operatorIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid operator ID", nil)
		return
	}

	var req services.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	adjustment, err := h.balanceService.Adjust(&req, operatorID)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, adjustment)
}

// POST /payouts
func (h *BalanceHandler) RequestPayout(c *gin.Context) {
	var req services.RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	record, err := h.payoutService.RequestPayout(c.Request.Context(), &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, record)
}

// GET /agents/:id/payouts
func (h *BalanceHandler) GetPayoutHistory(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid agent ID", nil)
		return
	}

	payouts, err := h.payoutService.GetPayoutHistory(agentID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, payouts)
}
