// internal/services/commission_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/playline/agency-backend/internal/config"
	"github.com/playline/agency-backend/internal/database"
	"github.com/playline/agency-backend/internal/models"
	"github.com/playline/agency-backend/internal/utils"
)

type CommissionService struct {
	db        *gorm.DB
	config    *config.Config
	hierarchy *HierarchyService
	rates     *RateService
}

type ProcessBetRequest struct {
	AgentID   uuid.UUID       `json:"agent_id" validate:"required"`
	BettorID  uuid.UUID       `json:"bettor_id" validate:"required"`
	Category  string          `json:"category" validate:"required,category_code"`
	BetAmount decimal.Decimal `json:"bet_amount"`
	RoundID   string          `json:"round_id" validate:"required,max=100"`
}

type ProcessRoundResultRequest struct {
	AgentID   uuid.UUID       `json:"agent_id" validate:"required"`
	BettorID  uuid.UUID       `json:"bettor_id" validate:"required"`
	Category  string          `json:"category" validate:"required,category_code"`
	BetAmount decimal.Decimal `json:"bet_amount"`
	WinAmount decimal.Decimal `json:"win_amount"`
	RoundID   string          `json:"round_id" validate:"required,max=100"`
}

func NewCommissionService(db *gorm.DB, cfg *config.Config, hierarchy *HierarchyService, rates *RateService) *CommissionService {
	return &CommissionService{
		db:        db,
		config:    cfg,
		hierarchy: hierarchy,
		rates:     rates,
	}
}

// ratedLevel is one chain position paired with its promised rate.
type ratedLevel struct {
	AgentID uuid.UUID
	Rate    decimal.Decimal
}

// levelAward is one computed waterfall payout.
type levelAward struct {
	AgentID       uuid.UUID
	Level         int
	EffectiveRate decimal.Decimal
	Amount        decimal.Decimal
}

// ProcessBet awards rolling commission for one reported bet. Duplicate
// deliveries and disqualified bets return an empty entry list, never an
// error, so the relay can retry blindly.
func (s *CommissionService) ProcessBet(req *ProcessBetRequest) ([]models.CommissionLedger, error) {
	return s.processEvent(eventParams{
		agentID:        req.AgentID,
		bettorID:       req.BettorID,
		category:       req.Category,
		betAmount:      req.BetAmount,
		sourceAmount:   req.BetAmount,
		roundID:        req.RoundID,
		commissionType: models.CommissionTypeRolling,
		referenceType:  models.ReferenceTypeBet,
	})
}

// ProcessRoundResult awards losing commission for one settled round. The
// source amount is the bettor's loss; a win or push is a no-op.
func (s *CommissionService) ProcessRoundResult(req *ProcessRoundResultRequest) ([]models.CommissionLedger, error) {
	loss := req.BetAmount.Sub(req.WinAmount)
	if loss.LessThanOrEqual(decimal.Zero) {
		return nil, nil
	}

	return s.processEvent(eventParams{
		agentID:        req.AgentID,
		bettorID:       req.BettorID,
		category:       req.Category,
		betAmount:      req.BetAmount,
		sourceAmount:   loss,
		roundID:        req.RoundID,
		commissionType: models.CommissionTypeLosing,
		referenceType:  models.ReferenceTypeRoundResult,
	})
}

type eventParams struct {
	agentID        uuid.UUID
	bettorID       uuid.UUID
	category       string
	betAmount      decimal.Decimal
	sourceAmount   decimal.Decimal
	roundID        string
	commissionType models.CommissionType
	referenceType  models.ReferenceType
}

// processEvent is the shared waterfall routine. The two commission types
// differ only in their source-amount formula and disqualification predicate,
// both resolved by the caller.
func (s *CommissionService) processEvent(p eventParams) ([]models.CommissionLedger, error) {
	// Disqualification checks: all of these are expected production traffic
	// and return an empty result rather than an error.
	var bettor models.User
	if err := s.db.First(&bettor, "id = ?", p.bettorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch bettor: %w", err)
	}
	if !bettor.CommissionEnabled || bettor.CommissionType != p.commissionType {
		return nil, nil
	}

	policy, err := s.lookupPolicy(p.commissionType, p.category)
	if err != nil {
		return nil, err
	}
	if !policy.Enabled || p.betAmount.LessThan(policy.MinBetAmount) {
		return nil, nil
	}

	// Idempotency pre-check; the unique index catches the race this read
	// cannot see.
	var existing int64
	err = s.db.Model(&models.CommissionLedger{}).
		Where("reference_id = ? AND bettor_id = ? AND commission_type = ?",
			p.roundID, p.bettorID, p.commissionType).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate event: %w", err)
	}
	if existing > 0 {
		return nil, nil
	}

	chain, err := s.buildChain(p.agentID)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, nil
	}

	agentIDs := make([]uuid.UUID, len(chain))
	for i, level := range chain {
		agentIDs[i] = level.AgentID
	}
	rates, err := s.rates.GetRatesBulk(agentIDs, p.category, p.commissionType)
	if err != nil {
		return nil, err
	}
	for i := range chain {
		chain[i].Rate = rates[chain[i].AgentID]
	}

	awards := waterfallLevels(chain, p.sourceAmount)
	if len(awards) == 0 {
		return nil, nil
	}

	entries := make([]models.CommissionLedger, 0, len(awards))
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		for _, award := range awards {
			entry := models.CommissionLedger{
				RecipientID:      award.AgentID,
				BettorID:         p.bettorID,
				Category:         p.category,
				CommissionType:   p.commissionType,
				Level:            award.Level,
				SourceAmount:     p.sourceAmount,
				EffectiveRate:    award.EffectiveRate,
				CommissionAmount: award.Amount,
				Status:           models.LedgerStatusPending,
				ReferenceType:    p.referenceType,
				ReferenceID:      p.roundID,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}

			// The pending-balance delta commits with the entry insert so the
			// two can never diverge on a partial failure.
			err := tx.Model(&models.Agent{}).
				Where("id = ?", award.AgentID).
				UpdateColumn("pending_balance", gorm.Expr("pending_balance + ?", award.Amount)).Error
			if err != nil {
				return err
			}

			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent delivery of the same round won the race.
			logrus.WithFields(logrus.Fields{
				"round_id":  p.roundID,
				"bettor_id": p.bettorID,
				"type":      p.commissionType,
			}).Info("Duplicate commission event ignored")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to process commission event: %w", err)
	}

	return entries, nil
}

// buildChain returns the origin agent followed by its active ancestors,
// closest first. An inactive or missing origin yields an empty chain.
func (s *CommissionService) buildChain(agentID uuid.UUID) ([]ratedLevel, error) {
	agents, err := s.hierarchy.AgentChain(agentID)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 || agents[0].ID != agentID || !agents[0].IsActive() {
		return nil, nil
	}

	chain := make([]ratedLevel, 0, len(agents))
	chain = append(chain, ratedLevel{AgentID: agents[0].ID})
	for _, ancestor := range agents[1:] {
		if !ancestor.IsActive() {
			continue
		}
		chain = append(chain, ratedLevel{AgentID: ancestor.ID})
		if len(chain) >= s.config.Commission.MaxChainLength {
			break
		}
	}
	return chain, nil
}

func (s *CommissionService) lookupPolicy(commissionType models.CommissionType, category string) (*models.CommissionPolicy, error) {
	var policy models.CommissionPolicy
	err := s.db.
		Where("commission_type = ? AND category = ?", commissionType, category).
		First(&policy).Error
	if err == nil {
		return &policy, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch policy: %w", err)
	}

	// Fall back to the category-agnostic default.
	err = s.db.
		Where("commission_type = ? AND category = ''", commissionType).
		First(&policy).Error
	if err == nil {
		return &policy, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch default policy: %w", err)
	}

	// No policy rows at all: process with the configured minimum.
	return &models.CommissionPolicy{
		CommissionType: commissionType,
		Enabled:        true,
		MinBetAmount:   decimal.NewFromFloat(s.config.Commission.DefaultMinBet),
	}, nil
}

// ListLedgerEntries returns an agent's ledger entries, newest first.
func (s *CommissionService) ListLedgerEntries(agentID uuid.UUID, status models.LedgerStatus, params utils.PaginationParams) ([]models.CommissionLedger, int64, error) {
	query := s.db.Model(&models.CommissionLedger{}).Where("recipient_id = ?", agentID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	allowedSortFields := []string{"created_at", "commission_amount", "level"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var entries []models.CommissionLedger
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch ledger entries: %w", err)
	}

	return entries, total, nil
}

// CancelEntry administratively cancels a pending entry and reverses its
// pending-balance contribution.
func (s *CommissionService) CancelEntry(entryID uuid.UUID) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var entry models.CommissionLedger
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&entry, "id = ?", entryID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("ledger entry %s not found", entryID)
			}
			return err
		}

		if entry.Status != models.LedgerStatusPending {
			return fmt.Errorf("cannot cancel ledger entry in status %s", entry.Status)
		}
		if entry.SettlementID != nil {
			return errors.New("cannot cancel a ledger entry linked to a settlement")
		}

		if err := tx.Model(&entry).Update("status", models.LedgerStatusCancelled).Error; err != nil {
			return err
		}

		return tx.Model(&models.Agent{}).
			Where("id = ?", entry.RecipientID).
			UpdateColumn("pending_balance", gorm.Expr("GREATEST(pending_balance - ?, 0)", entry.CommissionAmount)).Error
	})
}

// waterfallLevels computes the marginal payout for each chain position.
// Position i earns rate[i] minus rate[i-1] (the node one step closer to the
// bettor); non-positive margins and amounts that round to zero are skipped.
func waterfallLevels(chain []ratedLevel, source decimal.Decimal) []levelAward {
	hundred := decimal.NewFromInt(100)
	awards := make([]levelAward, 0, len(chain))

	downstream := decimal.Zero
	for i, level := range chain {
		effective := level.Rate.Sub(downstream)
		downstream = level.Rate

		if effective.LessThanOrEqual(decimal.Zero) {
			continue
		}

		amount := source.Mul(effective).Div(hundred).Round(2)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		awards = append(awards, levelAward{
			AgentID:       level.AgentID,
			Level:         i + 1,
			EffectiveRate: effective,
			Amount:        amount,
		})
	}

	return awards
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
