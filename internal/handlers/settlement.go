// internal/handlers/settlement.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/playline/agency-backend/internal/models"
	"github.com/playline/agency-backend/internal/services"
	"github.com/playline/agency-backend/internal/utils"
)

type SettlementHandler struct {
	settlementService *services.SettlementService
}

func NewSettlementHandler(settlementService *services.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

// GET /settlements/preview?agent_id=&start=&end=
func (h *SettlementHandler) Preview(c *gin.Context) {
	agentID, err := uuid.Parse(c.Query("agent_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid agent ID", nil)
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid start time, expected RFC3339", nil)
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid end time, expected RFC3339", nil)
		return
	}

	preview, err := h.settlementService.Preview(agentID, start, end)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, preview)
}

// POST /settlements
func (h *SettlementHandler) Create(c *gin.Context) {
	var req services.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	settlement, err := h.settlementService.Create(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, settlement)
}

// POST /settlements/:id/confirm
func (h *SettlementHandler) Confirm(c *gin.Context) {
	settlementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid settlement ID", nil)
		return
	}

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

	settlement, err := h.settlementService.Confirm(settlementID, operatorID)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, settlement)
}

// POST /settlements/:id/reject
func (h *SettlementHandler) Reject(c *gin.Context) {
	settlementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid settlement ID", nil)
		return
	}

	settlement, err := h.settlementService.Reject(settlementID)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, settlement)
}

// POST /settlements/:id/pay
func (h *SettlementHandler) Pay(c *gin.Context) {
	settlementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid settlement ID", nil)
		return
	}

	settlement, err := h.settlementService.Pay(settlementID)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, settlement)
}

// GET /settlements/:id
func (h *SettlementHandler) Get(c *gin.Context) {
	settlementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid settlement ID", nil)
		return
	}

	settlement, err := h.settlementService.GetSettlement(settlementID)
	if err != nil {
		utils.NotFoundResponse(c, "Settlement")
		return
	}

	utils.SuccessResponse(c, settlement)
}

// GET /settlements?agent_id=&status=
func (h *SettlementHandler) List(c *gin.Context) {
	var agentID *uuid.UUID
	if raw := c.Query("agent_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid agent ID", nil)
			return
		}
		agentID = &parsed
	}

	status := models.SettlementStatus(c.Query("status"))
	params := utils.GetPaginationParams(c)

	settlements, total, err := h.settlementService.ListSettlements(agentID, status, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(settlements, total, params)
	utils.PaginatedResponse(c, result)
}
