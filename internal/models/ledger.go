// internal/models/ledger.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionLedger is one immutable commission award. The compound unique
// index on (reference_id, bettor_id, commission_type, recipient_id) is the
// idempotency key for event processing; amounts are never edited after
// creation, only status and settlement linkage change.
type CommissionLedger struct {
	BaseModel
	RecipientID      uuid.UUID       `json:"recipient_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_ledger_idempotency"`
	BettorID         uuid.UUID       `json:"bettor_id" gorm:"type:uuid;not null;uniqueIndex:idx_ledger_idempotency"`
	Category         string          `json:"category" gorm:"size:50;not null"`
	CommissionType   CommissionType  `json:"commission_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_ledger_idempotency"`
	Level            int             `json:"level" gorm:"not null"`
	SourceAmount     decimal.Decimal `json:"source_amount" gorm:"type:decimal(20,2);not null"`
	EffectiveRate    decimal.Decimal `json:"effective_rate" gorm:"type:decimal(10,2);not null"`
	CommissionAmount decimal.Decimal `json:"commission_amount" gorm:"type:decimal(20,2);not null"`
	Status           LedgerStatus    `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ReferenceType    ReferenceType   `json:"reference_type" gorm:"type:varchar(20);not null"`
	ReferenceID      string          `json:"reference_id" gorm:"size:100;not null;uniqueIndex:idx_ledger_idempotency"`
	SettlementID     *uuid.UUID      `json:"settlement_id" gorm:"type:uuid;index"`
	SettledAt        *time.Time      `json:"settled_at"`

	// Relationships
	Recipient  Agent       `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
	Bettor     User        `json:"bettor,omitempty" gorm:"foreignKey:BettorID"`
	Settlement *Settlement `json:"settlement,omitempty" gorm:"foreignKey:SettlementID"`
}

func (CommissionLedger) TableName() string {
	return "commission_ledgers"
}
