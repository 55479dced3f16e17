// internal/handlers/commission.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/playline/agency-backend/internal/models"
	"github.com/playline/agency-backend/internal/services"
	"github.com/playline/agency-backend/internal/utils"
)

type CommissionHandler struct {
	commissionService *services.CommissionService
}

func NewCommissionHandler(commissionService *services.CommissionService) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
	}
}

// POST /webhooks/bets
//
// Called by the betting platform relay for every accepted bet. Delivery is
// at-least-once; duplicates come back with an empty entry list.
func (h *CommissionHandler) ProcessBet(c *gin.Context) {
	var req services.ProcessBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	entries, err := h.commissionService.ProcessBet(&req)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

// POST /webhooks/round-results
func (h *CommissionHandler) ProcessRoundResult(c *gin.Context) {
	var req services.ProcessRoundResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	entries, err := h.commissionService.ProcessRoundResult(&req)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

// GET /agents/:id/ledger?status=pending
func (h *CommissionHandler) ListLedgerEntries(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid agent ID", nil)
		return
	}

	status := models.LedgerStatus(c.Query("status"))
	params := utils.GetPaginationParams(c)

	entries, total, err := h.commissionService.ListLedgerEntries(agentID, status, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(entries, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /ledger/:id/cancel
func (h *CommissionHandler) CancelEntry(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ledger entry ID", nil)
		return
	}

	if err := h.commissionService.CancelEntry(entryID); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Ledger entry cancelled"})
}
