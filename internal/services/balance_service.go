// internal/services/balance_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/playline/agency-backend/internal/database"
	"github.com/playline/agency-backend/internal/models"
)

type BalanceService struct {
	db *gorm.DB
}

type AdjustBalanceRequest struct {
	NodeID   uuid.UUID           `json:"node_id" validate:"required"`
	NodeType models.NodeType     `json:"node_type" validate:"required,oneof=agent user"`
	Field    models.BalanceField `json:"field" validate:"required,oneof=available pending"`
	Amount   decimal.Decimal     `json:"amount"`
	Reason   string              `json:"reason" validate:"required,max=1000"`
}

func NewBalanceService(db *gorm.DB) *BalanceService {
	return &BalanceService{db: db}
}

// Adjust applies a manual balance correction. The node row is locked for
// the duration so concurrent commission or settlement writes serialize
// against it, and the adjustment row commits with the balance delta.
func (s *BalanceService) Adjust(req *AdjustBalanceRequest, adjustedBy uuid.UUID) (*models.BalanceAdjustment, error) {
	if req.Amount.IsZero() {
		return nil, errors.New("adjustment amount cannot be zero")
	}

	column := "balance"
	if req.Field == models.BalanceFieldPending {
		column = "pending_balance"
	}

	table := "agents"
	if req.NodeType == models.NodeTypeUser {
		table = "users"
	}

	adjustment := &models.BalanceAdjustment{
		NodeID:     req.NodeID,
		NodeType:   req.NodeType,
		Field:      req.Field,
		Amount:     req.Amount,
		Reason:     req.Reason,
		AdjustedBy: adjustedBy,
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var row struct {
			Value decimal.Decimal
		}
		err := tx.Table(table).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select(column + " AS value").
			Where("id = ?", req.NodeID).
			Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%s %s not found", req.NodeType, req.NodeID)
			}
			return fmt.Errorf("failed to lock node: %w", err)
		}

		updated := row.Value.Add(req.Amount)
		if updated.IsNegative() {
			return fmt.Errorf("adjustment would leave %s balance negative (%s)", req.Field, updated)
		}

		err = tx.Table(table).
			Where("id = ?", req.NodeID).
			UpdateColumn(column, updated).Error
		if err != nil {
			return fmt.Errorf("failed to apply adjustment: %w", err)
		}

		return tx.Create(adjustment).Error
	})
	if err != nil {
		return nil, err
	}

	return adjustment, nil
}

// GetAgentBalance returns the current balance snapshot of an agent.
func (s *BalanceService) GetAgentBalance(agentID uuid.UUID) (map[string]interface{}, error) {
	var agent models.Agent
	if err := s.db.First(&agent, "id = ?", agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("agent %s not found", agentID)
		}
		return nil, fmt.Errorf("failed to fetch agent: %w", err)
	}

	return map[string]interface{}{
		"agent_id":          agent.ID,
		"pending_balance":   agent.PendingBalance,
		"available_balance": agent.Balance,
	}, nil
}
