// internal/handlers/rate.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/playline/agency-backend/internal/models"
	"github.com/playline/agency-backend/internal/services"
	"github.com/playline/agency-backend/internal/utils"
)

type RateHandler struct {
	rateService *services.RateService
}

func NewRateHandler(rateService *services.RateService) *RateHandler {
	return &RateHandler{
		rateService: rateService,
	}
}

// PUT /rates
func (h *RateHandler) SetRate(c *gin.Context) {
	var req services.SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	rate, err := h.rateService.SetRate(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, rate)
}

// GET /agents/:id/rates
func (h *RateHandler) ListRates(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid agent ID", nil)
		return
	}

	rates, err := h.rateService.ListRates(agentID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, rates)
}

// GET /agents/:id/rates/:category/:type
func (h *RateHandler) GetRate(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid agent ID", nil)
		return
	}

	commissionType := models.CommissionType(c.Param("type"))
	if commissionType != models.CommissionTypeRolling && commissionType != models.CommissionTypeLosing {
		utils.BadRequestResponse(c, "Invalid commission type", nil)
		return
	}

	rate, err := h.rateService.GetRate(agentID, c.Param("category"), commissionType)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"agent_id":        agentID,
		"category":        c.Param("category"),
		"commission_type": commissionType,
		"rate_percent":    rate,
	})
}
