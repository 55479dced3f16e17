// internal/handlers/hierarchy.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/playline/agency-backend/internal/models"
	"github.com/playline/agency-backend/internal/services"
	"github.com/playline/agency-backend/internal/utils"
)

type HierarchyHandler struct {
	hierarchyService *services.HierarchyService
}

func NewHierarchyHandler(hierarchyService *services.HierarchyService) *HierarchyHandler {
	return &HierarchyHandler{
		hierarchyService: hierarchyService,
	}
}

// canViewAgent scopes tree reads: operators see everything, agents see only
// themselves and their own subtree.
func (h *HierarchyHandler) canViewAgent(c *gin.Context, targetID uuid.UUID) (bool, error) {
	role, _ := utils.GetAgentRoleFromContext(c)
	if role == string(models.AgentRoleOperator) {
		return true, nil
	}

	callerIDStr, exists := utils.GetAgentIDFromContext(c)
	if !exists {
		return false, nil
	}
	callerID, err := uuid.Parse(callerIDStr)
	if err != nil {
		return false, nil
	}
	if callerID == targetID {
		return true, nil
	}

	return h.hierarchyService.IsAgentAncestor(callerID, targetID)
}

// POST /agents
func (h *HierarchyHandler) CreateAgent(c *gin.Context) {
	var req services.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	agent, err := h.hierarchyService.CreateAgent(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, agent)
}

// POST /users
func (h *HierarchyHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	user, err := h.hierarchyService.CreateUser(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, user)
}

// GET /agents/:id/children
func (h *HierarchyHandler) GetChildren(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid agent ID", nil)
		return
	}

	allowed, err := h.canViewAgent(c, agentID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	if !allowed {
		utils.ForbiddenResponse(c, "")
		return
	}

	children, err := h.hierarchyService.AgentChildren(agentID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, children)
}

// GET /agents/:id/descendants?max_depth=N
func (h *HierarchyHandler) GetDescendants(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid agent ID", nil)
		return
	}

	allowed, err := h.canViewAgent(c, agentID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	if !allowed {
		utils.ForbiddenResponse(c, "")
		return
	}

	maxDepth, _ := strconv.Atoi(c.DefaultQuery("max_depth", "0"))

	descendants, err := h.hierarchyService.AgentDescendants(agentID, maxDepth)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	count, err := h.hierarchyService.AgentDescendantCount(agentID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponseWithMeta(c, descendants, gin.H{"total_descendants": count})
}

// GET /agents/:id/ancestors
func (h *HierarchyHandler) GetAncestors(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid agent ID", nil)
		return
	}

	allowed, err := h.canViewAgent(c, agentID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	if !allowed {
		utils.ForbiddenResponse(c, "")
		return
	}

	ancestors, err := h.hierarchyService.AgentAncestors(agentID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, ancestors)
}

// GET /users/:id/referrals
func (h *HierarchyHandler) GetUserReferrals(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	referrals, err := h.hierarchyService.UserReferrals(userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	count, err := h.hierarchyService.UserReferralCount(userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponseWithMeta(c, referrals, gin.H{"total_referrals": count})
}

type reparentRequest struct {
	NewParentID uuid.UUID `json:"new_parent_id" validate:"required"`
}

// PUT /agents/:id/parent
func (h *HierarchyHandler) ReparentAgent(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid agent ID", nil)
		return
	}

	var req reparentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.hierarchyService.ReparentAgent(agentID, req.NewParentID); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Agent moved successfully"})
}

// PUT /users/:id/referrer
func (h *HierarchyHandler) ReparentUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req reparentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.hierarchyService.ReparentUser(userID, req.NewParentID); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "User moved successfully"})
}
