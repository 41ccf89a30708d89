// ABOUTME: Tests for forest, milestone, and prerequisite catalog operations
// ABOUTME: Covers id allocation, referential checks, check precedence, and edge uniqueness

package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- CreateForest Tests ---

func TestCreateForest_Success(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	clk.Set(300)
	forest, err := svc.CreateForest(ctx, "user-a", "Math", "arithmetic and beyond")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), forest.ID)
	assert.Equal(t, "Math", forest.Name)
	assert.Equal(t, "arithmetic and beyond", forest.Description)
	assert.Equal(t, "user-a", forest.CreatedBy)
	assert.Equal(t, uint64(300), forest.CreatedAt)

	got, err := svc.GetForest(ctx, forest.ID)
	require.NoError(t, err)
	assert.Equal(t, forest, got)
}

func TestCreateForest_SequentialIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		forest, err := svc.CreateForest(ctx, "user-a", fmt.Sprintf("Forest %d", want), "")
		require.NoError(t, err)
		assert.Equal(t, want, forest.ID)
	}
}

func TestCreateForest_NoRegistrationRequired(t *testing.T) {
	// Content creation has no existence preconditions: an unregistered caller
	// may create forests.
	svc, _ := newTestService(t)

	forest, err := svc.CreateForest(context.Background(), "ghost", "Orphans", "")
	require.NoError(t, err)
	assert.Equal(t, "ghost", forest.CreatedBy)
}

func TestGetForest_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetForest(context.Background(), 42)
	assert.ErrorIs(t, err, ErrForestNotFound)
}

func TestListForests(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	forests, err := svc.ListForests(ctx)
	require.NoError(t, err)
	assert.Empty(t, forests)

	createTestForest(t, svc, "user-a", "Math")
	createTestForest(t, svc, "user-a", "Reading")

	forests, err = svc.ListForests(ctx)
	require.NoError(t, err)
	require.Len(t, forests, 2)
	assert.Equal(t, "Math", forests[0].Name)
	assert.Equal(t, "Reading", forests[1].Name)
}

// --- CreateMilestone Tests ---

func TestCreateMilestone_Success(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	forest := createTestForest(t, svc, "user-a", "Math")

	clk.Set(400)
	milestone, err := svc.CreateMilestone(ctx, "user-a", MilestoneParams{
		Title:       "Addition",
		Description: "single digit sums",
		Category:    "arithmetic",
		Difficulty:  2,
		ForestID:    forest.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), milestone.ID)
	assert.Equal(t, "Addition", milestone.Title)
	assert.Equal(t, 2, milestone.Difficulty)
	assert.Equal(t, forest.ID, milestone.ForestID)
	assert.Nil(t, milestone.ParentID)
	assert.Equal(t, "user-a", milestone.CreatedBy)
	assert.Equal(t, uint64(400), milestone.CreatedAt)

	got, err := svc.GetMilestone(ctx, milestone.ID)
	require.NoError(t, err)
	assert.Equal(t, milestone, got)
}

func TestCreateMilestone_WithParent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	forest := createTestForest(t, svc, "user-a", "Math")
	parent := createTestMilestone(t, svc, "user-a", forest.ID, "Arithmetic")

	child, err := svc.CreateMilestone(ctx, "user-a", MilestoneParams{
		Title:      "Addition",
		Difficulty: 1,
		ForestID:   forest.ID,
		ParentID:   &parent.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)
}

func TestCreateMilestone_ForestNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateMilestone(context.Background(), "user-a", MilestoneParams{
		Title:      "Addition",
		Difficulty: 1,
		ForestID:   99,
	})
	assert.ErrorIs(t, err, ErrForestNotFound)
}

func TestCreateMilestone_InvalidDifficulty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	forest := createTestForest(t, svc, "user-a", "Math")

	for _, difficulty := range []int{0, 6, -1, 100} {
		t.Run(fmt.Sprintf("difficulty_%d", difficulty), func(t *testing.T) {
			_, err := svc.CreateMilestone(ctx, "user-a", MilestoneParams{
				Title:      "Addition",
				Difficulty: difficulty,
				ForestID:   forest.ID,
			})
			assert.ErrorIs(t, err, ErrInvalidParameters)
		})
	}

	// Bounds are inclusive on both ends.
	for _, difficulty := range []int{1, 5} {
		_, err := svc.CreateMilestone(ctx, "user-a", MilestoneParams{
			Title:      fmt.Sprintf("Difficulty %d", difficulty),
			Difficulty: difficulty,
			ForestID:   forest.ID,
		})
		assert.NoError(t, err)
	}
}

func TestCreateMilestone_ForestCheckedBeforeDifficulty(t *testing.T) {
	// Both preconditions are violated; the forest lookup is reported first.
	svc, _ := newTestService(t)

	_, err := svc.CreateMilestone(context.Background(), "user-a", MilestoneParams{
		Title:      "Addition",
		Difficulty: 9,
		ForestID:   99,
	})
	assert.ErrorIs(t, err, ErrForestNotFound)
}

func TestCreateMilestone_ParentNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	forest := createTestForest(t, svc, "user-a", "Math")

	missing := uint64(77)
	_, err := svc.CreateMilestone(context.Background(), "user-a", MilestoneParams{
		Title:      "Addition",
		Difficulty: 1,
		ForestID:   forest.ID,
		ParentID:   &missing,
	})
	assert.ErrorIs(t, err, ErrParentMilestoneNotFound)
}

func TestCreateMilestone_FailedCreateDoesNotConsumeID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	forest := createTestForest(t, svc, "user-a", "Math")

	first := createTestMilestone(t, svc, "user-a", forest.ID, "Addition")
	assert.Equal(t, uint64(1), first.ID)

	_, err := svc.CreateMilestone(ctx, "user-a", MilestoneParams{
		Title:      "Broken",
		Difficulty: 0,
		ForestID:   forest.ID,
	})
	require.ErrorIs(t, err, ErrInvalidParameters)

	second := createTestMilestone(t, svc, "user-a", forest.ID, "Subtraction")
	assert.Equal(t, uint64(2), second.ID)
}

func TestGetMilestone_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetMilestone(context.Background(), 42)
	assert.ErrorIs(t, err, ErrMilestoneNotFound)
}

func TestListMilestones(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	math := createTestForest(t, svc, "user-a", "Math")
	reading := createTestForest(t, svc, "user-a", "Reading")

	createTestMilestone(t, svc, "user-a", math.ID, "Addition")
	createTestMilestone(t, svc, "user-a", math.ID, "Subtraction")
	createTestMilestone(t, svc, "user-a", reading.ID, "Phonics")

	milestones, err := svc.ListMilestones(ctx, math.ID)
	require.NoError(t, err)
	assert.Len(t, milestones, 2)

	_, err = svc.ListMilestones(ctx, 99)
	assert.ErrorIs(t, err, ErrForestNotFound)
}

// --- AddPrerequisite Tests ---

func TestAddPrerequisite_Success(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	forest := createTestForest(t, svc, "user-a", "Math")
	addition := createTestMilestone(t, svc, "user-a", forest.ID, "Addition")
	subtraction := createTestMilestone(t, svc, "user-a", forest.ID, "Subtraction")

	clk.Set(600)
	edge, err := svc.AddPrerequisite(ctx, "user-a", subtraction.ID, addition.ID)
	require.NoError(t, err)
	assert.Equal(t, subtraction.ID, edge.MilestoneID)
	assert.Equal(t, addition.ID, edge.PrerequisiteID)
	assert.Equal(t, uint64(600), edge.AddedAt)

	edges, err := svc.ListPrerequisites(ctx, subtraction.ID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, addition.ID, edges[0].PrerequisiteID)
}

func TestAddPrerequisite_MilestoneNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	forest := createTestForest(t, svc, "user-a", "Math")
	addition := createTestMilestone(t, svc, "user-a", forest.ID, "Addition")

	_, err := svc.AddPrerequisite(context.Background(), "user-a", 99, addition.ID)
	assert.ErrorIs(t, err, ErrMilestoneNotFound)
}

func TestAddPrerequisite_PrerequisiteNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	forest := createTestForest(t, svc, "user-a", "Math")
	addition := createTestMilestone(t, svc, "user-a", forest.ID, "Addition")

	_, err := svc.AddPrerequisite(context.Background(), "user-a", addition.ID, 99)
	assert.ErrorIs(t, err, ErrPrerequisiteNotFound)
}

func TestAddPrerequisite_Duplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	forest := createTestForest(t, svc, "user-a", "Math")
	addition := createTestMilestone(t, svc, "user-a", forest.ID, "Addition")
	subtraction := createTestMilestone(t, svc, "user-a", forest.ID, "Subtraction")

	_, err := svc.AddPrerequisite(ctx, "user-a", subtraction.ID, addition.ID)
	require.NoError(t, err)
	_, err = svc.AddPrerequisite(ctx, "user-a", subtraction.ID, addition.ID)
	assert.ErrorIs(t, err, ErrDuplicateRelationship)
}

func TestAddPrerequisite_NoCycleDetection(t *testing.T) {
	// Opposite edges are accepted; the pair becomes permanently uncompletable.
	svc, _ := newTestService(t)
	ctx := context.Background()
	forest := createTestForest(t, svc, "user-a", "Math")
	a := createTestMilestone(t, svc, "user-a", forest.ID, "A")
	b := createTestMilestone(t, svc, "user-a", forest.ID, "B")

	_, err := svc.AddPrerequisite(ctx, "user-a", a.ID, b.ID)
	require.NoError(t, err)
	_, err = svc.AddPrerequisite(ctx, "user-a", b.ID, a.ID)
	require.NoError(t, err)

	_, err = svc.SelfCompleteMilestone(ctx, "user-a", a.ID, "")
	assert.ErrorIs(t, err, ErrPrerequisitesNotCompleted)
	_, err = svc.SelfCompleteMilestone(ctx, "user-a", b.ID, "")
	assert.ErrorIs(t, err, ErrPrerequisitesNotCompleted)
}

func TestAddPrerequisite_SelfEdgeAllowed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	forest := createTestForest(t, svc, "user-a", "Math")
	addition := createTestMilestone(t, svc, "user-a", forest.ID, "Addition")

	_, err := svc.AddPrerequisite(ctx, "user-a", addition.ID, addition.ID)
	require.NoError(t, err)

	// A self-edge is a one-milestone cycle.
	_, err = svc.SelfCompleteMilestone(ctx, "user-a", addition.ID, "")
	assert.ErrorIs(t, err, ErrPrerequisitesNotCompleted)
}

func TestListPrerequisites_MilestoneNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ListPrerequisites(context.Background(), 42)
	assert.ErrorIs(t, err, ErrMilestoneNotFound)
}
