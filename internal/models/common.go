// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type NodeStatus string

const (
	NodeStatusActive    NodeStatus = "active"
	NodeStatusSuspended NodeStatus = "suspended"
	NodeStatusBanned    NodeStatus = "banned"
)

type NodeType string

const (
	NodeTypeAgent NodeType = "agent"
	NodeTypeUser  NodeType = "user"
)

type AgentRole string

const (
	AgentRoleOperator AgentRole = "operator"
	AgentRoleAgent    AgentRole = "agent"
)

type CommissionType string

const (
	CommissionTypeRolling CommissionType = "rolling"
	CommissionTypeLosing  CommissionType = "losing"
)

type LedgerStatus string

const (
	LedgerStatusPending   LedgerStatus = "pending"
	LedgerStatusSettled   LedgerStatus = "settled"
	LedgerStatusCancelled LedgerStatus = "cancelled"
)

type ReferenceType string

const (
	ReferenceTypeBet         ReferenceType = "bet"
	ReferenceTypeRoundResult ReferenceType = "round_result"
)

type SettlementStatus string

const (
	SettlementStatusDraft     SettlementStatus = "draft"
	SettlementStatusConfirmed SettlementStatus = "confirmed"
	SettlementStatusPaid      SettlementStatus = "paid"
	SettlementStatusRejected  SettlementStatus = "rejected"
)

type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusCompleted PayoutStatus = "completed"
	PayoutStatusFailed    PayoutStatus = "failed"
)
