// ABOUTME: Tests for user registration and lookup
// ABOUTME: Covers role validation, duplicate rejection, and record immutability

package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovehq/grove-ledger/internal/store"
)

// --- Register Tests ---

func TestRegister_Success(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	clk.Set(500)

	user, err := svc.Register(ctx, "user-a", "Alice", store.RoleEducator)
	require.NoError(t, err)
	assert.Equal(t, "user-a", user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, store.RoleEducator, user.Role)
	assert.Equal(t, uint64(500), user.RegisteredAt)

	got, err := svc.GetUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestRegister_AllRoles(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	roles := []store.Role{store.RoleAdmin, store.RoleEducator, store.RoleParent, store.RoleChild}
	for i, role := range roles {
		id := fmt.Sprintf("user-%d", i)
		user, err := svc.Register(ctx, id, "User", role)
		require.NoError(t, err)
		assert.Equal(t, role, user.Role)
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, role := range []store.Role{0, 5, -1, 42} {
		t.Run(fmt.Sprintf("role_%d", role), func(t *testing.T) {
			_, err := svc.Register(ctx, "user-a", "Alice", role)
			assert.ErrorIs(t, err, ErrInvalidUserRole)
		})
	}

	// Nothing was stored by the failed attempts.
	_, err := svc.GetUser(ctx, "user-a")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	registerTestUser(t, svc, "user-a", "Alice", store.RoleEducator)

	clk.Advance(10)
	_, err := svc.Register(ctx, "user-a", "Impostor", store.RoleChild)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	// The original record is untouched.
	got, err := svc.GetUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, store.RoleEducator, got.Role)
	assert.Equal(t, uint64(100), got.RegisteredAt)
}

func TestRegister_EmptyNameAccepted(t *testing.T) {
	// Textual validation lives at the API boundary; the core takes any string.
	svc, _ := newTestService(t)

	user, err := svc.Register(context.Background(), "user-a", "", store.RoleChild)
	require.NoError(t, err)
	assert.Empty(t, user.Name)
}

// --- GetUser Tests ---

func TestGetUser_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
