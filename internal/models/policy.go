// internal/models/policy.go
package models

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CommissionPolicy gates commission processing per (type, category).
// A row with an empty Category is the category-agnostic default.
type CommissionPolicy struct {
	BaseModel
	CommissionType CommissionType  `json:"commission_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_policies_type_cat"`
	Category       string          `json:"category" gorm:"size:50;not null;default:'';uniqueIndex:idx_policies_type_cat"`
	MinBetAmount   decimal.Decimal `json:"min_bet_amount" gorm:"type:decimal(20,2);not null;default:0"`
	Enabled        bool            `json:"enabled" gorm:"default:true"`
	GameCodes      pq.StringArray  `json:"game_codes" gorm:"type:text[]"`
	Description    string          `json:"description" gorm:"type:text"`
}

func (CommissionPolicy) TableName() string {
	return "commission_policies"
}
