// ABOUTME: Tests for delegated-authority relationship creation and lookup
// ABOUTME: Covers kind validation, registration preconditions, and pair uniqueness

package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovehq/grove-ledger/internal/store"
)

// --- CreateRelationship Tests ---

func TestCreateRelationship_Success(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, svc, "parent-a", "Pat", store.RoleParent)
	registerTestUser(t, svc, "child-b", "Billie", store.RoleChild)

	clk.Set(200)
	rel, err := svc.CreateRelationship(ctx, "parent-a", "child-b", store.RelationshipParentChild)
	require.NoError(t, err)
	assert.Equal(t, "parent-a", rel.ManagerID)
	assert.Equal(t, "child-b", rel.SubjectID)
	assert.Equal(t, store.RelationshipParentChild, rel.Kind)
	assert.Equal(t, uint64(200), rel.CreatedAt)

	got, found, err := svc.GetRelationship(ctx, "parent-a", "child-b")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rel, got)
}

func TestCreateRelationship_InvalidKind(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, svc, "user-a", "Alice", store.RoleEducator)
	registerTestUser(t, svc, "user-b", "Billie", store.RoleChild)

	for _, kind := range []store.RelationshipKind{"sibling", "", "PARENT-CHILD", "educator_child"} {
		_, err := svc.CreateRelationship(ctx, "user-a", "user-b", kind)
		assert.ErrorIs(t, err, ErrInvalidParameters, "kind %q", kind)
	}
}

func TestCreateRelationship_KindCheckedBeforeLookups(t *testing.T) {
	// Neither identity is registered; the kind violation is still the one
	// reported.
	svc, _ := newTestService(t)

	_, err := svc.CreateRelationship(context.Background(), "ghost-a", "ghost-b", "sibling")
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestCreateRelationship_CallerNotRegistered(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, svc, "child-b", "Billie", store.RoleChild)

	_, err := svc.CreateRelationship(ctx, "ghost", "child-b", store.RelationshipParentChild)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateRelationship_SubjectNotRegistered(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, svc, "parent-a", "Pat", store.RoleParent)

	_, err := svc.CreateRelationship(ctx, "parent-a", "ghost", store.RelationshipParentChild)
	assert.ErrorIs(t, err, ErrChildNotRegistered)
}

func TestCreateRelationship_RoleNotChecked(t *testing.T) {
	// Role appropriateness is deliberately not a creation-time concern: a
	// Child may manage a Parent as far as the edge store cares.
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, svc, "child-b", "Billie", store.RoleChild)
	registerTestUser(t, svc, "parent-a", "Pat", store.RoleParent)

	_, err := svc.CreateRelationship(ctx, "child-b", "parent-a", store.RelationshipEducatorChild)
	assert.NoError(t, err)
}

func TestCreateRelationship_Duplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, svc, "parent-a", "Pat", store.RoleParent)
	registerTestUser(t, svc, "child-b", "Billie", store.RoleChild)

	_, err := svc.CreateRelationship(ctx, "parent-a", "child-b", store.RelationshipParentChild)
	require.NoError(t, err)

	// Same ordered pair is rejected even under a different kind.
	_, err = svc.CreateRelationship(ctx, "parent-a", "child-b", store.RelationshipEducatorChild)
	assert.ErrorIs(t, err, ErrDuplicateRelationship)

	got, found, err := svc.GetRelationship(ctx, "parent-a", "child-b")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, store.RelationshipParentChild, got.Kind)
}

func TestCreateRelationship_ReverseDirectionDistinct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, svc, "user-a", "Alice", store.RoleEducator)
	registerTestUser(t, svc, "user-b", "Billie", store.RoleChild)

	_, err := svc.CreateRelationship(ctx, "user-a", "user-b", store.RelationshipEducatorChild)
	require.NoError(t, err)
	_, err = svc.CreateRelationship(ctx, "user-b", "user-a", store.RelationshipEducatorChild)
	assert.NoError(t, err)
}

// --- GetRelationship / ListRelationships Tests ---

func TestGetRelationship_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	rel, found, err := svc.GetRelationship(context.Background(), "nobody", "no-one")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rel)
}

func TestListRelationships(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, svc, "educator-a", "Alice", store.RoleEducator)
	registerTestUser(t, svc, "child-b", "Billie", store.RoleChild)
	registerTestUser(t, svc, "child-c", "Casey", store.RoleChild)

	linkEducator(t, svc, "educator-a", "child-b")
	linkEducator(t, svc, "educator-a", "child-c")

	rels, err := svc.ListRelationships(ctx, "educator-a")
	require.NoError(t, err)
	assert.Len(t, rels, 2)

	rels, err = svc.ListRelationships(ctx, "child-b")
	require.NoError(t, err)
	assert.Empty(t, rels)
}
