// ABOUTME: Tests for audit log store methods
// ABOUTME: Covers appending, filtering, detail round-trip, and limit normalization

package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditStore_AppendAndList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	entry := &AuditEntry{
		At:         100,
		ActorID:    "educator-1",
		Action:     AuditCreateForest,
		TargetType: "forest",
		TargetID:   "1",
		Detail:     map[string]any{"name": "Math"},
	}
	require.NoError(t, s.AppendAuditLog(ctx, entry))
	assert.NotEmpty(t, entry.ID, "append should assign an id")

	entries, err := s.ListAuditLog(ctx, AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(100), entries[0].At)
	assert.Equal(t, "educator-1", entries[0].ActorID)
	assert.Equal(t, AuditCreateForest, entries[0].Action)
	assert.Equal(t, "forest", entries[0].TargetType)
	assert.Equal(t, "1", entries[0].TargetID)
	assert.Equal(t, "Math", entries[0].Detail["name"])
}

func TestAuditStore_List_FilterByActor(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i, actor := range []string{"u1", "u2", "u1"} {
		require.NoError(t, s.AppendAuditLog(ctx, &AuditEntry{
			At:         uint64(i + 1),
			ActorID:    actor,
			Action:     AuditRegisterUser,
			TargetType: "user",
			TargetID:   fmt.Sprintf("target-%d", i),
		}))
	}

	actor := "u1"
	entries, err := s.ListAuditLog(ctx, AuditFilter{ActorID: &actor})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "u1", e.ActorID)
	}
}

func TestAuditStore_List_FilterByAction(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendAuditLog(ctx, &AuditEntry{
		At: 1, ActorID: "u1", Action: AuditCreateForest, TargetType: "forest", TargetID: "1",
	}))
	require.NoError(t, s.AppendAuditLog(ctx, &AuditEntry{
		At: 2, ActorID: "u1", Action: AuditCompleteMilestone, TargetType: "completion", TargetID: "1/child-1",
	}))

	action := AuditCompleteMilestone
	entries, err := s.ListAuditLog(ctx, AuditFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, AuditCompleteMilestone, entries[0].Action)
}

func TestAuditStore_List_FilterByTickRange(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for tick := uint64(1); tick <= 5; tick++ {
		require.NoError(t, s.AppendAuditLog(ctx, &AuditEntry{
			At: tick, ActorID: "u1", Action: AuditRegisterUser, TargetType: "user", TargetID: fmt.Sprintf("u-%d", tick),
		}))
	}

	since := uint64(2)
	until := uint64(4)
	entries, err := s.ListAuditLog(ctx, AuditFilter{SinceTick: &since, UntilTick: &until})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestAuditStore_List_NewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for tick := uint64(1); tick <= 3; tick++ {
		require.NoError(t, s.AppendAuditLog(ctx, &AuditEntry{
			At: tick, ActorID: "u1", Action: AuditRegisterUser, TargetType: "user", TargetID: fmt.Sprintf("u-%d", tick),
		}))
	}

	entries, err := s.ListAuditLog(ctx, AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(3), entries[0].At)
	assert.Equal(t, uint64(1), entries[2].At)
}

func TestAuditStore_List_Limit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for tick := uint64(1); tick <= 10; tick++ {
		require.NoError(t, s.AppendAuditLog(ctx, &AuditEntry{
			At: tick, ActorID: "u1", Action: AuditRegisterUser, TargetType: "user", TargetID: fmt.Sprintf("u-%d", tick),
		}))
	}

	entries, err := s.ListAuditLog(ctx, AuditFilter{Limit: 4})
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestNormalizeAuditLimit(t *testing.T) {
	assert.Equal(t, 100, normalizeAuditLimit(0))
	assert.Equal(t, 100, normalizeAuditLimit(-5))
	assert.Equal(t, 1000, normalizeAuditLimit(5000))
	assert.Equal(t, 42, normalizeAuditLimit(42))
}
