// internal/models/rate.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionRate is the promised percentage for one (agent, category, type).
// Absence of a row means rate 0.
type CommissionRate struct {
	BaseModel
	AgentID        uuid.UUID       `json:"agent_id" gorm:"type:uuid;not null;uniqueIndex:idx_rates_agent_cat_type"`
	Category       string          `json:"category" gorm:"size:50;not null;uniqueIndex:idx_rates_agent_cat_type"`
	CommissionType CommissionType  `json:"commission_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_rates_agent_cat_type"`
	RatePercent    decimal.Decimal `json:"rate_percent" gorm:"type:decimal(10,2);not null;default:0"`

	// Relationships
	Agent Agent `json:"agent,omitempty" gorm:"foreignKey:AgentID"`
}

func (CommissionRate) TableName() string {
	return "commission_rates"
}
