// internal/models/settlement.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settlement aggregates one agent's pending ledger entries for a period and
// walks the draft -> confirmed -> paid state machine (draft -> rejected is
// the only other transition). Never physically deleted.
type Settlement struct {
	BaseModel
	AgentID      uuid.UUID        `json:"agent_id" gorm:"type:uuid;not null;index"`
	PeriodStart  time.Time        `json:"period_start" gorm:"not null"`
	PeriodEnd    time.Time        `json:"period_end" gorm:"not null"`
	RollingTotal decimal.Decimal  `json:"rolling_total" gorm:"type:decimal(20,2);not null;default:0"`
	LosingTotal  decimal.Decimal  `json:"losing_total" gorm:"type:decimal(20,2);not null;default:0"`
	GrossTotal   decimal.Decimal  `json:"gross_total" gorm:"type:decimal(20,2);not null;default:0"`
	NetTotal     decimal.Decimal  `json:"net_total" gorm:"type:decimal(20,2);not null;default:0"`
	EntryCount   int64            `json:"entry_count" gorm:"not null;default:0"`
	Status       SettlementStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	Memo         string           `json:"memo" gorm:"type:text"`
	ConfirmedBy  *uuid.UUID       `json:"confirmed_by" gorm:"type:uuid"`
	ConfirmedAt  *time.Time       `json:"confirmed_at"`
	PaidAt       *time.Time       `json:"paid_at"`
	StatementURL string           `json:"statement_url" gorm:"size:500"`

	// Relationships
	Agent   Agent              `json:"agent,omitempty" gorm:"foreignKey:AgentID"`
	Entries []CommissionLedger `json:"entries,omitempty" gorm:"foreignKey:SettlementID"`
}

// CanTransitionTo reports whether the state machine allows moving from the
// current status to target.
func (s *Settlement) CanTransitionTo(target SettlementStatus) bool {
	switch s.Status {
	case SettlementStatusDraft:
		return target == SettlementStatusConfirmed || target == SettlementStatusRejected
	case SettlementStatusConfirmed:
		return target == SettlementStatusPaid
	default:
		return false
	}
}

// IsActive reports whether the settlement still books its period. Draft and
// confirmed settlements block overlapping settlements for the same agent.
func (s *Settlement) IsActive() bool {
	return s.Status == SettlementStatusDraft || s.Status == SettlementStatusConfirmed
}
