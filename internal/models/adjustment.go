// internal/models/adjustment.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BalanceField string

const (
	BalanceFieldAvailable BalanceField = "available"
	BalanceFieldPending   BalanceField = "pending"
)

// BalanceAdjustment records one manual balance correction so every balance
// delta stays traceable to a row.
type BalanceAdjustment struct {
	BaseModel
	NodeID     uuid.UUID       `json:"node_id" gorm:"type:uuid;not null;index"`
	NodeType   NodeType        `json:"node_type" gorm:"type:varchar(20);not null"`
	Field      BalanceField    `json:"field" gorm:"type:varchar(20);not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Reason     string          `json:"reason" gorm:"type:text;not null"`
	AdjustedBy uuid.UUID       `json:"adjusted_by" gorm:"type:uuid;not null"`
}

func (BalanceAdjustment) TableName() string {
	return "balance_adjustments"
}
