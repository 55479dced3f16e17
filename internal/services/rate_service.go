// internal/services/rate_service.go
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

type RateService struct {
	db *gorm.DB
}

type SetRateRequest struct {
	AgentID        uuid.UUID             `json:"agent_id" validate:"required"`
	Category       string                `json:"category" validate:"required,category_code"`
	CommissionType models.CommissionType `json:"commission_type" validate:"required,oneof=rolling losing"`
	RatePercent    decimal.Decimal       `json:"rate_percent"`
}

func NewRateService(db *gorm.DB) *RateService {
	return &RateService{db: db}
}

// SetRate writes a rate after the two-sided monotonicity check: the new rate
// may not exceed the direct parent's rate, and may not drop below the
// highest rate already promised to a direct child. The check is deliberately
// limited to one generation in each direction.
func (s *RateService) SetRate(req *SetRateRequest) (*models.CommissionRate, error) {
	if req.RatePercent.IsNegative() {
		return nil, errors.New("rate cannot be negative")
	}

	var rate models.CommissionRate

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var agent models.Agent
		if err := tx.First(&agent, "id = ?", req.AgentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("agent %s not found", req.AgentID)
			}
			return err
		}

		if agent.ParentID != nil {
			parentRate, err := s.rateInTx(tx, *agent.ParentID, req.Category, req.CommissionType)
			if err != nil {
				return err
			}
			if req.RatePercent.GreaterThan(parentRate) {
				return fmt.Errorf(
					"rate %s%% exceeds the parent's rate of %s%% for %s/%s",
					req.RatePercent, parentRate, req.Category, req.CommissionType,
				)
			}
		}

		maxChildRate, err := s.maxChildRateInTx(tx, req.AgentID, req.Category, req.CommissionType)
		if err != nil {
			return err
		}
		if req.RatePercent.LessThan(maxChildRate) {
			return fmt.Errorf(
				"rate %s%% is below the %s%% already delegated to a child for %s/%s",
				req.RatePercent, maxChildRate, req.Category, req.CommissionType,
			)
		}

		rate = models.CommissionRate{
			AgentID:        req.AgentID,
			Category:       req.Category,
			CommissionType: req.CommissionType,
			RatePercent:    req.RatePercent,
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "agent_id"}, {Name: "category"}, {Name: "commission_type"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"rate_percent", "updated_at"}),
		}).Create(&rate).Error
	})
	if err != nil {
		return nil, err
	}

	return &rate, nil
}

// GetRate returns the rate for one (agent, category, type), zero if unset.
func (s *RateService) GetRate(agentID uuid.UUID, category string, commissionType models.CommissionType) (decimal.Decimal, error) {
	return s.rateInTx(s.db, agentID, category, commissionType)
}

// GetRatesBulk fetches the rates of several agents at once. Agents without a
// rate row are absent from the map; a map miss reads as decimal zero.
func (s *RateService) GetRatesBulk(agentIDs []uuid.UUID, category string, commissionType models.CommissionType) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []models.CommissionRate
	err := s.db.
		Where("agent_id IN ? AND category = ? AND commission_type = ?", agentIDs, category, commissionType).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}

	rates := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		rates[row.AgentID] = row.RatePercent
	}
	return rates, nil
}

// ListRates returns all rate rows for an agent.
func (s *RateService) ListRates(agentID uuid.UUID) ([]models.CommissionRate, error) {
	var rows []models.CommissionRate
	err := s.db.
		Where("agent_id = ?", agentID).
		Order("category ASC, commission_type ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	return rows, nil
}

func (s *RateService) rateInTx(tx *gorm.DB, agentID uuid.UUID, category string, commissionType models.CommissionType) (decimal.Decimal, error) {
	var rate models.CommissionRate
	err := tx.
		Where("agent_id = ? AND category = ? AND commission_type = ?", agentID, category, commissionType).
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to fetch rate: %w", err)
	}
	return rate.RatePercent, nil
}

func (s *RateService) maxChildRateInTx(tx *gorm.DB, agentID uuid.UUID, category string, commissionType models.CommissionType) (decimal.Decimal, error) {
	var childIDs []uuid.UUID
	err := tx.Model(&models.AgentClosure{}).
		Where("ancestor_id = ? AND depth = 1", agentID).
		Pluck("descendant_id", &childIDs).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch children: %w", err)
	}
	if len(childIDs) == 0 {
		return decimal.Zero, nil
	}

	var rows []models.CommissionRate
	err = tx.
		Where("agent_id IN ? AND category = ? AND commission_type = ?", childIDs, category, commissionType).
		Find(&rows).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch child rates: %w", err)
	}

	max := decimal.Zero
	for _, row := range rows {
		if row.RatePercent.GreaterThan(max) {
			max = row.RatePercent
		}
	}
	return max, nil
}
