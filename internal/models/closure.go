// internal/models/closure.go
package models

import (
	"github.com/google/uuid"
)

// AgentClosure stores one row per ancestor/descendant pair in the agency
// tree, including the self pair at depth 0. Every ancestry query goes
// through this table; Agent.ParentID/Depth are derived caches.
type AgentClosure struct {
	AncestorID   uuid.UUID `json:"ancestor_id" gorm:"type:uuid;primaryKey"`
	DescendantID uuid.UUID `json:"descendant_id" gorm:"type:uuid;primaryKey;index"`
	Depth        int       `json:"depth" gorm:"not null"`
}

func (AgentClosure) TableName() string {
	return "agent_closures"
}

// UserClosure is the same structure for the user referral tree.
type UserClosure struct {
	AncestorID   uuid.UUID `json:"ancestor_id" gorm:"type:uuid;primaryKey"`
	DescendantID uuid.UUID `json:"descendant_id" gorm:"type:uuid;primaryKey;index"`
	Depth        int       `json:"depth" gorm:"not null"`
}

func (UserClosure) TableName() string {
	return "user_closures"
}

// ClosureRow is the table-agnostic shape the hierarchy service works with.
type ClosureRow struct {
	AncestorID   uuid.UUID `json:"ancestor_id"`
	DescendantID uuid.UUID `json:"descendant_id"`
	Depth        int       `json:"depth"`
}
