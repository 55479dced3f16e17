// internal/models/payout.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payout records a withdrawal of available balance to an external account.
type Payout struct {
	BaseModel
	AgentID          uuid.UUID       `json:"agent_id" gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Currency         string          `json:"currency" gorm:"size:8;not null;default:'usd'"`
	Status           PayoutStatus    `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentReference string          `json:"payment_reference" gorm:"size:255"`
	FailureReason    string          `json:"failure_reason,omitempty" gorm:"type:text"`
	ProcessedAt      *time.Time      `json:"processed_at"`

	// Relationships
	Agent Agent `json:"agent,omitempty" gorm:"foreignKey:AgentID"`
}

func (Payout) TableName() string {
	return "payouts"
}
