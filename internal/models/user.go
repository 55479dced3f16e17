// internal/models/user.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is a betting user. Users form their own referral tree (user_closures)
// while AgentID ties the user into the agency tree for commission purposes.
type User struct {
	BaseModel
	Username          string          `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Status            NodeStatus      `json:"status" gorm:"type:varchar(20);default:'active';index"`
	AgentID           uuid.UUID       `json:"agent_id" gorm:"type:uuid;not null;index"`
	ReferrerID        *uuid.UUID      `json:"referrer_id" gorm:"type:uuid;index"`
	Depth             int             `json:"depth" gorm:"not null;default:0"`
	CommissionEnabled bool            `json:"commission_enabled" gorm:"default:false"`
	CommissionType    CommissionType  `json:"commission_type" gorm:"type:varchar(20);default:'rolling'"`
	PendingBalance    decimal.Decimal `json:"pending_balance" gorm:"type:decimal(20,2);not null;default:0"`
	Balance           decimal.Decimal `json:"balance" gorm:"type:decimal(20,2);not null;default:0"`

	// Relationships
	Agent    Agent `json:"agent,omitempty" gorm:"foreignKey:AgentID"`
	Referrer *User `json:"referrer,omitempty" gorm:"foreignKey:ReferrerID"`
}

func (u *User) IsActive() bool {
	return u.Status == NodeStatusActive
}
