// ABOUTME: Shared test helpers for ledger package tests
// ABOUTME: Builds a Service over a real SQLite store with a manually driven clock

package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grovehq/grove-ledger/internal/clock"
	"github.com/grovehq/grove-ledger/internal/store"
)

// testOwnerID is the platform owner identity wired into every test service.
const testOwnerID = "owner-root"

// newTestService creates a Service over a fresh SQLite store and a manual
// clock starting at tick 100.
func newTestService(t *testing.T) (*Service, *clock.Manual) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	st, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clk := clock.NewManual(100)
	return New(st, clk, testOwnerID), clk
}

func registerTestUser(t *testing.T, svc *Service, id, name string, role store.Role) *store.User {
	t.Helper()
	user, err := svc.Register(context.Background(), id, name, role)
	require.NoError(t, err)
	return user
}

func createTestForest(t *testing.T, svc *Service, callerID, name string) *store.Forest {
	t.Helper()
	forest, err := svc.CreateForest(context.Background(), callerID, name, "")
	require.NoError(t, err)
	return forest
}

func createTestMilestone(t *testing.T, svc *Service, callerID string, forestID uint64, title string) *store.Milestone {
	t.Helper()
	milestone, err := svc.CreateMilestone(context.Background(), callerID, MilestoneParams{
		Title:      title,
		Difficulty: 1,
		ForestID:   forestID,
	})
	require.NoError(t, err)
	return milestone
}

// linkEducator registers a relationship making manager an educator of subject.
func linkEducator(t *testing.T, svc *Service, managerID, subjectID string) {
	t.Helper()
	_, err := svc.CreateRelationship(context.Background(), managerID, subjectID, store.RelationshipEducatorChild)
	require.NoError(t, err)
}
