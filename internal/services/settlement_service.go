// internal/services/settlement_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/playline/agency-backend/internal/database"
	"github.com/playline/agency-backend/internal/models"
	"github.com/playline/agency-backend/internal/utils"
)

type SettlementService struct {
	db         *gorm.DB
	statements *StatementService
}

type SettlementPreview struct {
	AgentID      uuid.UUID       `json:"agent_id"`
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
	RollingTotal decimal.Decimal `json:"rolling_total"`
	LosingTotal  decimal.Decimal `json:"losing_total"`
	GrossTotal   decimal.Decimal `json:"gross_total"`
	EntryCount   int64           `json:"entry_count"`
}

type CreateSettlementRequest struct {
	AgentID     uuid.UUID `json:"agent_id" validate:"required"`
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required"`
	Memo        string    `json:"memo" validate:"max=1000"`
}

func NewSettlementService(db *gorm.DB, statements *StatementService) *SettlementService {
	return &SettlementService{
		db:         db,
		statements: statements,
	}
}

// Preview sums the agent's settleable entries in the window without
// mutating anything.
func (s *SettlementService) Preview(agentID uuid.UUID, start, end time.Time) (*SettlementPreview, error) {
	if !end.After(start) {
		return nil, errors.New("period end must be after period start")
	}

	type typeSum struct {
		CommissionType models.CommissionType
		Total          decimal.Decimal
		Count          int64
	}

	var sums []typeSum
	err := s.db.Model(&models.CommissionLedger{}).
		Select("commission_type, COALESCE(SUM(commission_amount), 0) AS total, COUNT(*) AS count").
		Where("recipient_id = ? AND status = ? AND settlement_id IS NULL AND created_at >= ? AND created_at <= ?",
			agentID, models.LedgerStatusPending, start, end).
		Group("commission_type").
		Scan(&sums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate pending entries: %w", err)
	}

	preview := &SettlementPreview{
		AgentID:     agentID,
		PeriodStart: start,
		PeriodEnd:   end,
	}
	for _, row := range sums {
		switch row.CommissionType {
		case models.CommissionTypeRolling:
			preview.RollingTotal = row.Total
		case models.CommissionTypeLosing:
			preview.LosingTotal = row.Total
		}
		preview.EntryCount += row.Count
	}
	preview.GrossTotal = preview.RollingTotal.Add(preview.LosingTotal)

	return preview, nil
}

// Create locks the agent's settleable entries in the window, aggregates
// them into a draft settlement, and links the entries to it in one
// transaction, so no window exists where the rows are locked but unlinked.
func (s *SettlementService) Create(req *CreateSettlementRequest) (*models.Settlement, error) {
	if !req.PeriodEnd.After(req.PeriodStart) {
		return nil, errors.New("period end must be after period start")
	}

	var settlement *models.Settlement

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var agent models.Agent
		if err := tx.First(&agent, "id = ?", req.AgentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("agent %s not found", req.AgentID)
			}
			return err
		}

		// An active settlement overlapping the window would double-book the
		// same commission.
		var overlapping int64
		err := tx.Model(&models.Settlement{}).
			Where("agent_id = ? AND status IN ? AND period_start <= ? AND period_end >= ?",
				req.AgentID,
				[]models.SettlementStatus{models.SettlementStatusDraft, models.SettlementStatusConfirmed},
				req.PeriodEnd, req.PeriodStart).
			Count(&overlapping).Error
		if err != nil {
			return fmt.Errorf("failed to check for overlapping settlements: %w", err)
		}
		if overlapping > 0 {
			return errors.New("an active settlement already covers part of this period")
		}

		// Row-lock the entries so a concurrent settlement or commission
		// write cannot race on them.
		var entries []models.CommissionLedger
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("recipient_id = ? AND status = ? AND settlement_id IS NULL AND created_at >= ? AND created_at <= ?",
				req.AgentID, models.LedgerStatusPending, req.PeriodStart, req.PeriodEnd).
			Find(&entries).Error
		if err != nil {
			return fmt.Errorf("failed to lock pending entries: %w", err)
		}
		if len(entries) == 0 {
			return errors.New("no pending commission entries in this period")
		}

		rolling, losing := decimal.Zero, decimal.Zero
		entryIDs := make([]uuid.UUID, len(entries))
		for i, entry := range entries {
			entryIDs[i] = entry.ID
			switch entry.CommissionType {
			case models.CommissionTypeRolling:
				rolling = rolling.Add(entry.CommissionAmount)
			case models.CommissionTypeLosing:
				losing = losing.Add(entry.CommissionAmount)
			}
		}
		gross := rolling.Add(losing)

		settlement = &models.Settlement{
			AgentID:      req.AgentID,
			PeriodStart:  req.PeriodStart,
			PeriodEnd:    req.PeriodEnd,
			RollingTotal: rolling,
			LosingTotal:  losing,
			GrossTotal:   gross,
			NetTotal:     gross,
			EntryCount:   int64(len(entries)),
			Status:       models.SettlementStatusDraft,
			Memo:         req.Memo,
		}
		if err := tx.Create(settlement).Error; err != nil {
			return fmt.Errorf("failed to create settlement: %w", err)
		}

		return tx.Model(&models.CommissionLedger{}).
			Where("id IN ?", entryIDs).
			Update("settlement_id", settlement.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return settlement, nil
}

// Confirm moves a draft settlement to confirmed and stamps the audit fields.
func (s *SettlementService) Confirm(settlementID, confirmedBy uuid.UUID) (*models.Settlement, error) {
	var settlement models.Settlement

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := s.lockSettlement(tx, settlementID, &settlement); err != nil {
			return err
		}

		if !settlement.CanTransitionTo(models.SettlementStatusConfirmed) {
			return fmt.Errorf("cannot confirm settlement in status %s", settlement.Status)
		}

		now := time.Now()
		settlement.Status = models.SettlementStatusConfirmed
		settlement.ConfirmedBy = &confirmedBy
		settlement.ConfirmedAt = &now

		return tx.Save(&settlement).Error
	})
	if err != nil {
		return nil, err
	}

	return &settlement, nil
}

// Reject moves a draft settlement to rejected and unlinks its entries so
// they stay eligible for a future settlement.
func (s *SettlementService) Reject(settlementID uuid.UUID) (*models.Settlement, error) {
	var settlement models.Settlement

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := s.lockSettlement(tx, settlementID, &settlement); err != nil {
			return err
		}

		if !settlement.CanTransitionTo(models.SettlementStatusRejected) {
			return fmt.Errorf("cannot reject settlement in status %s", settlement.Status)
		}

		err := tx.Model(&models.CommissionLedger{}).
			Where("settlement_id = ?", settlement.ID).
			Update("settlement_id", nil).Error
		if err != nil {
			return fmt.Errorf("failed to unlink entries: %w", err)
		}

		settlement.Status = models.SettlementStatusRejected
		return tx.Save(&settlement).Error
	})
	if err != nil {
		return nil, err
	}

	return &settlement, nil
}

// Pay settles a confirmed settlement: every linked entry becomes settled,
// the agent's available balance is credited by the net total and its
// pending balance debited by the same amount, floored at zero to tolerate
// rounding drift. One transaction covers all of it.
func (s *SettlementService) Pay(settlementID uuid.UUID) (*models.Settlement, error) {
	var settlement models.Settlement

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := s.lockSettlement(tx, settlementID, &settlement); err != nil {
			return err
		}

		if !settlement.CanTransitionTo(models.SettlementStatusPaid) {
			return fmt.Errorf("cannot pay settlement in status %s", settlement.Status)
		}

		now := time.Now()
		err := tx.Model(&models.CommissionLedger{}).
			Where("settlement_id = ?", settlement.ID).
			Updates(map[string]interface{}{
				"status":     models.LedgerStatusSettled,
				"settled_at": now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to settle entries: %w", err)
		}

		var agent models.Agent
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&agent, "id = ?", settlement.AgentID).Error
		if err != nil {
			return fmt.Errorf("failed to lock recipient: %w", err)
		}

		pending := agent.PendingBalance.Sub(settlement.NetTotal)
		if pending.IsNegative() {
			pending = decimal.Zero
		}

		err = tx.Model(&agent).Updates(map[string]interface{}{
			"balance":         agent.Balance.Add(settlement.NetTotal),
			"pending_balance": pending,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to credit recipient: %w", err)
		}

		settlement.Status = models.SettlementStatusPaid
		settlement.PaidAt = &now
		return tx.Save(&settlement).Error
	})
	if err != nil {
		return nil, err
	}

	// Statement upload is best-effort; payment has already committed.
	if s.statements != nil {
		if url, err := s.statements.UploadStatement(&settlement); err != nil {
			logrus.WithError(err).WithField("settlement_id", settlement.ID).
				Warn("Failed to upload settlement statement")
		} else if url != "" {
			settlement.StatementURL = url
			if err := s.db.Model(&settlement).Update("statement_url", url).Error; err != nil {
				logrus.WithError(err).Warn("Failed to record statement URL")
			}
		}
	}

	return &settlement, nil
}

// GetSettlement loads a settlement with its linked entries.
func (s *SettlementService) GetSettlement(settlementID uuid.UUID) (*models.Settlement, error) {
	var settlement models.Settlement
	err := s.db.Preload("Entries").First(&settlement, "id = ?", settlementID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("settlement %s not found", settlementID)
		}
		return nil, fmt.Errorf("failed to fetch settlement: %w", err)
	}
	return &settlement, nil
}

// ListSettlements returns settlements, optionally filtered by agent and
// status, newest first.
func (s *SettlementService) ListSettlements(agentID *uuid.UUID, status models.SettlementStatus, params utils.PaginationParams) ([]models.Settlement, int64, error) {
	query := s.db.Model(&models.Settlement{})
	if agentID != nil {
		query = query.Where("agent_id = ?", *agentID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count settlements: %w", err)
	}

	allowedSortFields := []string{"created_at", "gross_total", "period_start"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var settlements []models.Settlement
	if err := query.Find(&settlements).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch settlements: %w", err)
	}

	return settlements, total, nil
}

func (s *SettlementService) lockSettlement(tx *gorm.DB, settlementID uuid.UUID, out *models.Settlement) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(out, "id = ?", settlementID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("settlement %s not found", settlementID)
		}
		return err
	}
	return nil
}
