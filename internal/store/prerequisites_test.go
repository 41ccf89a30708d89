// ABOUTME: Tests for prerequisite edge store methods
// ABOUTME: Covers edge uniqueness, direction, and listing

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrerequisiteStore_AddAndList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	forestID := mustCreateForest(t, s, "Math")
	addition := mustCreateMilestone(t, s, forestID, "Addition")
	subtraction := mustCreateMilestone(t, s, forestID, "Subtraction")

	require.NoError(t, s.AddPrerequisite(ctx, &Prerequisite{
		MilestoneID:    subtraction,
		PrerequisiteID: addition,
		AddedAt:        3,
	}))

	edges, err := s.ListPrerequisites(ctx, subtraction)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, subtraction, edges[0].MilestoneID)
	assert.Equal(t, addition, edges[0].PrerequisiteID)
	assert.Equal(t, uint64(3), edges[0].AddedAt)

	// The edge is directed: the prerequisite side has no edges of its own
	reverse, err := s.ListPrerequisites(ctx, addition)
	require.NoError(t, err)
	assert.Empty(t, reverse)
}

func TestPrerequisiteStore_Add_Duplicate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	forestID := mustCreateForest(t, s, "Math")
	addition := mustCreateMilestone(t, s, forestID, "Addition")
	subtraction := mustCreateMilestone(t, s, forestID, "Subtraction")

	edge := &Prerequisite{MilestoneID: subtraction, PrerequisiteID: addition, AddedAt: 1}
	require.NoError(t, s.AddPrerequisite(ctx, edge))

	err := s.AddPrerequisite(ctx, &Prerequisite{MilestoneID: subtraction, PrerequisiteID: addition, AddedAt: 2})
	assert.ErrorIs(t, err, ErrDuplicatePrerequisite)
}

func TestPrerequisiteStore_BothDirectionsAllowed(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	forestID := mustCreateForest(t, s, "Math")
	a := mustCreateMilestone(t, s, forestID, "A")
	b := mustCreateMilestone(t, s, forestID, "B")

	// Nothing stops the edge set from forming a cycle
	require.NoError(t, s.AddPrerequisite(ctx, &Prerequisite{MilestoneID: a, PrerequisiteID: b, AddedAt: 1}))
	require.NoError(t, s.AddPrerequisite(ctx, &Prerequisite{MilestoneID: b, PrerequisiteID: a, AddedAt: 2}))
}
