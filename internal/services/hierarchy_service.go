// internal/services/hierarchy_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/playline/agency-backend/internal/database"
	"github.com/playline/agency-backend/internal/models"
)

// treeSpec binds the generic closure-table operations to one of the two
// trees (agents, users). The trees differ only in table and parent column
// names; the closure algebra is identical.
type treeSpec struct {
	nodeTable    string
	closureTable string
	parentColumn string
}

var (
	agentTree = treeSpec{nodeTable: "agents", closureTable: "agent_closures", parentColumn: "parent_id"}
	userTree  = treeSpec{nodeTable: "users", closureTable: "user_closures", parentColumn: "referrer_id"}
)

type HierarchyService struct {
	db *gorm.DB
}

type CreateAgentRequest struct {
	Code     string     `json:"code" validate:"required,agent_code"`
	Name     string     `json:"name" validate:"required,max=100"`
	Password string     `json:"password" validate:"required,min=8"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

type CreateUserRequest struct {
	Username          string                `json:"username" validate:"required,min=3,max=50"`
	AgentID           uuid.UUID             `json:"agent_id" validate:"required"`
	ReferrerID        *uuid.UUID            `json:"referrer_id,omitempty"`
	CommissionEnabled bool                  `json:"commission_enabled"`
	CommissionType    models.CommissionType `json:"commission_type" validate:"omitempty,oneof=rolling losing"`
}

func NewHierarchyService(db *gorm.DB) *HierarchyService {
	return &HierarchyService{db: db}
}

// nodeRef is the minimal projection the generic tree operations need from a
// node row.
type nodeRef struct {
	ID    uuid.UUID
	Depth int
}

// CreateAgent creates an agent node and its closure rows in one transaction.
func (s *HierarchyService) CreateAgent(req *CreateAgentRequest) (*models.Agent, error) {
	agent := &models.Agent{
		Code:     req.Code,
		Name:     req.Name,
		Status:   models.NodeStatusActive,
		ParentID: req.ParentID,
	}

	if err := agent.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if req.ParentID != nil {
			// Lock the parent row so a concurrent reparent or status change
			// cannot race with depth assignment.
			var parent models.Agent
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&parent, "id = ?", *req.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("parent agent %s not found", *req.ParentID)
				}
				return err
			}
			agent.Depth = parent.Depth + 1
		}

		if err := tx.Create(agent).Error; err != nil {
			return fmt.Errorf("failed to create agent: %w", err)
		}

		return s.insertClosure(tx, agentTree, agent.ID, req.ParentID)
	})
	if err != nil {
		return nil, err
	}

	return agent, nil
}

// CreateUser creates a betting user and its referral-tree closure rows.
func (s *HierarchyService) CreateUser(req *CreateUserRequest) (*models.User, error) {
	commissionType := req.CommissionType
	if commissionType == "" {
		commissionType = models.CommissionTypeRolling
	}

	user := &models.User{
		Username:          req.Username,
		Status:            models.NodeStatusActive,
		AgentID:           req.AgentID,
		ReferrerID:        req.ReferrerID,
		CommissionEnabled: req.CommissionEnabled,
		CommissionType:    commissionType,
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var agent models.Agent
		if err := tx.First(&agent, "id = ?", req.AgentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("agent %s not found", req.AgentID)
			}
			return err
		}

		if req.ReferrerID != nil {
			var referrer models.User
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&referrer, "id = ?", *req.ReferrerID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("referrer %s not found", *req.ReferrerID)
				}
				return err
			}
			user.Depth = referrer.Depth + 1
		}

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		return s.insertClosure(tx, userTree, user.ID, req.ReferrerID)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// insertClosure writes the self row, then copies every closure row whose
// descendant is the parent into a new row pointing at the node at depth+1.
func (s *HierarchyService) insertClosure(tx *gorm.DB, spec treeSpec, nodeID uuid.UUID, parentID *uuid.UUID) error {
	selfRow := fmt.Sprintf(
		"INSERT INTO %s (ancestor_id, descendant_id, depth) VALUES (?, ?, 0)",
		spec.closureTable,
	)
	if err := tx.Exec(selfRow, nodeID, nodeID).Error; err != nil {
		return fmt.Errorf("failed to insert self closure row: %w", err)
	}

	if parentID == nil {
		return nil
	}

	copyRows := fmt.Sprintf(
		"INSERT INTO %s (ancestor_id, descendant_id, depth) "+
			"SELECT ancestor_id, ?, depth + 1 FROM %s WHERE descendant_id = ?",
		spec.closureTable, spec.closureTable,
	)
	if err := tx.Exec(copyRows, nodeID, *parentID).Error; err != nil {
		return fmt.Errorf("failed to insert ancestor closure rows: %w", err)
	}

	return nil
}

// AgentChildren returns the direct children of an agent.
func (s *HierarchyService) AgentChildren(agentID uuid.UUID) ([]models.Agent, error) {
	var agents []models.Agent
	err := s.db.
		Joins("JOIN agent_closures c ON c.descendant_id = agents.id").
		Where("c.ancestor_id = ? AND c.depth = 1", agentID).
		Order("agents.created_at ASC").
		Find(&agents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch children: %w", err)
	}
	return agents, nil
}

// AgentDescendants returns every descendant, optionally bounded by maxDepth
// (0 means unbounded).
func (s *HierarchyService) AgentDescendants(agentID uuid.UUID, maxDepth int) ([]models.Agent, error) {
	query := s.db.
		Joins("JOIN agent_closures c ON c.descendant_id = agents.id").
		Where("c.ancestor_id = ? AND c.depth > 0", agentID)
	if maxDepth > 0 {
		query = query.Where("c.depth <= ?", maxDepth)
	}

	var agents []models.Agent
	if err := query.Order("c.depth ASC, agents.created_at ASC").Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch descendants: %w", err)
	}
	return agents, nil
}

// AgentAncestors returns the ancestors of an agent ordered closest first.
func (s *HierarchyService) AgentAncestors(agentID uuid.UUID) ([]models.Agent, error) {
	var agents []models.Agent
	err := s.db.
		Joins("JOIN agent_closures c ON c.ancestor_id = agents.id").
		Where("c.descendant_id = ? AND c.depth > 0", agentID).
		Order("c.depth ASC").
		Find(&agents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ancestors: %w", err)
	}
	return agents, nil
}

// AgentChain returns the agent itself followed by its ancestors, closest
// first, root last. This is the commission waterfall walk order.
func (s *HierarchyService) AgentChain(agentID uuid.UUID) ([]models.Agent, error) {
	var agents []models.Agent
	err := s.db.
		Joins("JOIN agent_closures c ON c.ancestor_id = agents.id").
		Where("c.descendant_id = ?", agentID).
		Order("c.depth ASC").
		Find(&agents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch agent chain: %w", err)
	}
	return agents, nil
}

func (s *HierarchyService) AgentDescendantCount(agentID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.AgentClosure{}).
		Where("ancestor_id = ? AND depth > 0", agentID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count descendants: %w", err)
	}
	return count, nil
}

func (s *HierarchyService) IsAgentAncestor(ancestorID, descendantID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.AgentClosure{}).
		Where("ancestor_id = ? AND descendant_id = ? AND depth > 0", ancestorID, descendantID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check ancestry: %w", err)
	}
	return count > 0, nil
}

// UserReferrals returns the direct referrals of a user.
func (s *HierarchyService) UserReferrals(userID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := s.db.
		Joins("JOIN user_closures c ON c.descendant_id = users.id").
		Where("c.ancestor_id = ? AND c.depth = 1", userID).
		Order("users.created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch referrals: %w", err)
	}
	return users, nil
}

// UserReferralCount counts all downline referrals of a user.
func (s *HierarchyService) UserReferralCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.UserClosure{}).
		Where("ancestor_id = ? AND depth > 0", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}
	return count, nil
}

// ReparentAgent moves an agent and its entire subtree under a new parent.
func (s *HierarchyService) ReparentAgent(agentID, newParentID uuid.UUID) error {
	return s.reparent(agentTree, agentID, newParentID)
}

// ReparentUser moves a user and its referral subtree under a new referrer.
func (s *HierarchyService) ReparentUser(userID, newReferrerID uuid.UUID) error {
	return s.reparent(userTree, userID, newReferrerID)
}

func (s *HierarchyService) reparent(spec treeSpec, nodeID, newParentID uuid.UUID) error {
	if nodeID == newParentID {
		return errors.New("cannot move a node under itself")
	}

	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var node, newParent nodeRef
		if err := tx.Table(spec.nodeTable).Select("id, depth").
			Where("id = ?", nodeID).Take(&node).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("node %s not found", nodeID)
			}
			return err
		}
		if err := tx.Table(spec.nodeTable).Select("id, depth").
			Where("id = ?", newParentID).Take(&newParent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("new parent %s not found", newParentID)
			}
			return err
		}

		// The subtree as seen from the moved node: (nodeID, member, depth)
		// for every member including the node itself at depth 0.
		var subtree []models.ClosureRow
		if err := tx.Table(spec.closureTable).
			Where("ancestor_id = ?", nodeID).
			Order("depth ASC").
			Find(&subtree).Error; err != nil {
			return fmt.Errorf("failed to fetch subtree: %w", err)
		}

		subtreeIDs := make([]uuid.UUID, 0, len(subtree))
		for _, row := range subtree {
			if row.DescendantID == newParentID {
				return errors.New("cannot move a node under its own descendant")
			}
			subtreeIDs = append(subtreeIDs, row.DescendantID)
		}

		// Sever every link from an outside ancestor into the subtree. Links
		// internal to the subtree are untouched: its shape does not change.
		sever := fmt.Sprintf(
			"DELETE FROM %s WHERE descendant_id IN ? AND ancestor_id NOT IN ?",
			spec.closureTable,
		)
		if err := tx.Exec(sever, subtreeIDs, subtreeIDs).Error; err != nil {
			return fmt.Errorf("failed to sever old ancestry: %w", err)
		}

		// The new parent's ancestor chain, including its self row at depth 0.
		var parentChain []models.ClosureRow
		if err := tx.Table(spec.closureTable).
			Where("descendant_id = ?", newParentID).
			Order("depth ASC").
			Find(&parentChain).Error; err != nil {
			return fmt.Errorf("failed to fetch new parent chain: %w", err)
		}

		newRows := buildReparentRows(parentChain, subtree)
		if len(newRows) > 0 {
			if err := tx.Table(spec.closureTable).Create(&newRows).Error; err != nil {
				return fmt.Errorf("failed to reconnect subtree: %w", err)
			}
		}

		// Refresh the cached parent/depth fields on the moved node and
		// propagate the depth delta across the subtree.
		newDepth := newParent.Depth + 1
		delta := newDepth - node.Depth

		err := tx.Table(spec.nodeTable).
			Where("id = ?", nodeID).
			Updates(map[string]interface{}{
				spec.parentColumn: newParentID,
				"depth":           newDepth,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update moved node: %w", err)
		}

		if delta != 0 && len(subtreeIDs) > 1 {
			propagate := fmt.Sprintf(
				"UPDATE %s SET depth = depth + ? WHERE id IN ? AND id <> ?",
				spec.nodeTable,
			)
			if err := tx.Exec(propagate, delta, subtreeIDs, nodeID).Error; err != nil {
				return fmt.Errorf("failed to propagate depth change: %w", err)
			}
		}

		return nil
	})
}

// buildReparentRows computes the cross product that reconnects a moved
// subtree to its new lineage: one row per (ancestor of the new parent,
// subtree member) pair at depth d(ancestor->parent) + 1 + d(node->member).
func buildReparentRows(parentChain, subtree []models.ClosureRow) []models.ClosureRow {
	rows := make([]models.ClosureRow, 0, len(parentChain)*len(subtree))
	for _, p := range parentChain {
		for _, m := range subtree {
			rows = append(rows, models.ClosureRow{
				AncestorID:   p.AncestorID,
				DescendantID: m.DescendantID,
				Depth:        p.Depth + 1 + m.Depth,
			})
		}
	}
	return rows
}
