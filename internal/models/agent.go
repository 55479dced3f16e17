// internal/models/agent.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Agent is a node in the agency tree. ParentID and Depth are caches derived
// from the closure table, which stays the authority for ancestry queries.
type Agent struct {
	BaseModel
	Code           string          `json:"code" gorm:"uniqueIndex;size:50;not null"`
	Name           string          `json:"name" gorm:"size:100;not null"`
	PasswordHash   string          `json:"-" gorm:"size:255;not null"`
	Role           AgentRole       `json:"role" gorm:"type:varchar(20);default:'agent'"`
	Status         NodeStatus      `json:"status" gorm:"type:varchar(20);default:'active';index"`
	ParentID       *uuid.UUID      `json:"parent_id" gorm:"type:uuid;index"`
	Depth          int             `json:"depth" gorm:"not null;default:0"`
	PendingBalance decimal.Decimal `json:"pending_balance" gorm:"type:decimal(20,2);not null;default:0"`
	Balance        decimal.Decimal `json:"balance" gorm:"type:decimal(20,2);not null;default:0"`
	ProfileData    JSONB           `json:"profile_data" gorm:"type:jsonb"`
	LastLoginAt    *time.Time      `json:"last_login_at"`

	// Relationships
	Parent *Agent `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
}

func (a *Agent) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hashedPassword)
	return nil
}

func (a *Agent) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
}

func (a *Agent) IsActive() bool {
	return a.Status == NodeStatusActive
}
