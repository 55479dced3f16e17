// internal/services/payout_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/payout"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/playline/agency-backend/internal/config"
	"github.com/playline/agency-backend/internal/database"
	"github.com/playline/agency-backend/internal/models"
)

type PayoutService struct {
	db      *gorm.DB
	config  *config.Config
	limiter *rate.Limiter
}

type RequestPayoutRequest struct {
	AgentID uuid.UUID       `json:"agent_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

func NewPayoutService(db *gorm.DB, cfg *config.Config) *PayoutService {
	// Initialize Stripe
	stripe.Key = cfg.Payout.StripeSecretKey

	return &PayoutService{
		db:      db,
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.Payout.RequestsPerSec), 1),
	}
}

// RequestPayout debits the agent's available balance and pushes the payout
// through the payment provider. The debit and the payout record commit
// together; the provider call happens after, and a failure there refunds
// the balance.
func (s *PayoutService) RequestPayout(ctx context.Context, req *RequestPayoutRequest) (*models.Payout, error) {
	minimum := decimal.NewFromFloat(s.config.Payout.MinimumPayout)
	if req.Amount.LessThan(minimum) {
		return nil, fmt.Errorf("minimum payout amount is %s", minimum)
	}

	record := &models.Payout{
		AgentID:  req.AgentID,
		Amount:   req.Amount,
		Currency: s.config.Payout.Currency,
		Status:   models.PayoutStatusPending,
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var agent models.Agent
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&agent, "id = ?", req.AgentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("agent %s not found", req.AgentID)
			}
			return err
		}

		if req.Amount.GreaterThan(agent.Balance) {
			return errors.New("insufficient available balance for payout")
		}

		err = tx.Model(&agent).
			UpdateColumn("balance", gorm.Expr("balance - ?", req.Amount)).Error
		if err != nil {
			return fmt.Errorf("failed to debit balance: %w", err)
		}

		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}

	reference, err := s.sendPayout(ctx, record)
	now := time.Now()
	if err != nil {
		logrus.WithError(err).WithField("payout_id", record.ID).Error("Payout failed, refunding balance")
		reason := err.Error()

		refundErr := database.WithTransaction(s.db, func(tx *gorm.DB) error {
			err := tx.Model(&models.Agent{}).
				Where("id = ?", req.AgentID).
				UpdateColumn("balance", gorm.Expr("balance + ?", req.Amount)).Error
			if err != nil {
				return err
			}
			return tx.Model(record).Updates(map[string]interface{}{
				"status":         models.PayoutStatusFailed,
				"failure_reason": reason,
				"processed_at":   now,
			}).Error
		})
		if refundErr != nil {
			return nil, fmt.Errorf("payout failed and refund failed: %w", refundErr)
		}

		record.Status = models.PayoutStatusFailed
		return record, fmt.Errorf("payout failed: %w", err)
	}

	err = s.db.Model(record).Updates(map[string]interface{}{
		"status":            models.PayoutStatusCompleted,
		"payment_reference": reference,
		"processed_at":      now,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to record payout completion: %w", err)
	}

	record.Status = models.PayoutStatusCompleted
	record.PaymentReference = reference
	record.ProcessedAt = &now
	return record, nil
}

// GetPayoutHistory lists an agent's payouts, newest first.
func (s *PayoutService) GetPayoutHistory(agentID uuid.UUID) ([]models.Payout, error) {
	var payouts []models.Payout
	err := s.db.
		Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Find(&payouts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payouts: %w", err)
	}
	return payouts, nil
}

func (s *PayoutService) sendPayout(ctx context.Context, record *models.Payout) (string, error) {
	if s.config.Payout.StripeSecretKey == "" {
		// Local development: no provider configured, settle manually.
		return "manual", nil
	}

	// Pace provider calls so a settlement batch cannot trip the API limits.
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	// Stripe amounts are integer cents.
	amountInCents := record.Amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.PayoutParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(record.Currency),
	}
	params.AddMetadata("agent_id", record.AgentID.String())
	params.AddMetadata("payout_id", record.ID.String())

	p, err := payout.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payout: %w", err)
	}

	return p.ID, nil
}
