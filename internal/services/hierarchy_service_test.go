// internal/services/hierarchy_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playline/agency-backend/internal/models"
)

func closureKey(ancestor, descendant uuid.UUID) [2]uuid.UUID {
	return [2]uuid.UUID{ancestor, descendant}
}

func TestBuildReparentRowsCrossProduct(t *testing.T) {
	root := uuid.New()
	newParent := uuid.New()
	moved := uuid.New()
	child := uuid.New()
	grandchild := uuid.New()

	// Self-or-ancestor rows of the new parent, as read back from the
	// closure table (depth relative to the new parent).
	parentChain := []models.ClosureRow{
		{AncestorID: newParent, DescendantID: newParent, Depth: 0},
		{AncestorID: root, DescendantID: newParent, Depth: 1},
	}

	// Rows keyed on the moved node as ancestor: the subtree including
	// the node itself (depth relative to the moved node).
	subtree := []models.ClosureRow{
		{AncestorID: moved, DescendantID: moved, Depth: 0},
		{AncestorID: moved, DescendantID: child, Depth: 1},
		{AncestorID: moved, DescendantID: grandchild, Depth: 2},
	}

	rows := buildReparentRows(parentChain, subtree)
	require.Len(t, rows, 6)

	depths := make(map[[2]uuid.UUID]int, len(rows))
	for _, row := range rows {
		depths[closureKey(row.AncestorID, row.DescendantID)] = row.Depth
	}

	assert.Equal(t, 1, depths[closureKey(newParent, moved)])
	assert.Equal(t, 2, depths[closureKey(newParent, child)])
	assert.Equal(t, 3, depths[closureKey(newParent, grandchild)])
	assert.Equal(t, 2, depths[closureKey(root, moved)])
	assert.Equal(t, 3, depths[closureKey(root, child)])
	assert.Equal(t, 4, depths[closureKey(root, grandchild)])
}

func TestBuildReparentRowsSingleNodeUnderRoot(t *testing.T) {
	root := uuid.New()
	moved := uuid.New()

	parentChain := []models.ClosureRow{
		{AncestorID: root, DescendantID: root, Depth: 0},
	}
	subtree := []models.ClosureRow{
		{AncestorID: moved, DescendantID: moved, Depth: 0},
	}

	rows := buildReparentRows(parentChain, subtree)
	require.Len(t, rows, 1)
	assert.Equal(t, root, rows[0].AncestorID)
	assert.Equal(t, moved, rows[0].DescendantID)
	assert.Equal(t, 1, rows[0].Depth)
}

func TestBuildReparentRowsEmptyInputs(t *testing.T) {
	assert.Empty(t, buildReparentRows(nil, nil))
	assert.Empty(t, buildReparentRows([]models.ClosureRow{{Depth: 0}}, nil))
}
