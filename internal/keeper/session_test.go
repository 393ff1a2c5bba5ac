package keeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waxworks/vinylvault/internal/common"
)

func TestSession_FreshnessWindow(t *testing.T) {
	ctx := context.Background()
	k, _, clock := newTestKeeper(t)

	require.NoError(t, k.SetSession(ctx, &Session{
		SessionID:    "abc",
		CreatedAt:    clock.now().Add(-48 * time.Hour),
		LastActivity: clock.now().Add(-23 * time.Hour),
		IsActive:     true,
	}))
	assert.True(t, k.IsSessionValid(ctx), "23h-old activity is inside the 24h window")

	require.NoError(t, k.SetSession(ctx, &Session{
		SessionID:    "abc",
		CreatedAt:    clock.now().Add(-48 * time.Hour),
		LastActivity: clock.now().Add(-25 * time.Hour),
		IsActive:     true,
	}))
	assert.False(t, k.IsSessionValid(ctx), "25h-old activity is outside the window")
}

func TestSession_InactiveIsInvalid(t *testing.T) {
	ctx := context.Background()
	k, _, clock := newTestKeeper(t)

	require.NoError(t, k.SetSession(ctx, &Session{
		SessionID:    "abc",
		CreatedAt:    clock.now(),
		LastActivity: clock.now(),
		IsActive:     false,
	}))
	assert.False(t, k.IsSessionValid(ctx))
}

func TestSession_AbsentIsInvalid(t *testing.T) {
	k, _, _ := newTestKeeper(t)
	assert.False(t, k.IsSessionValid(context.Background()))
}

func TestSession_StoreActivatesAndRefreshes(t *testing.T) {
	ctx := context.Background()
	k, _, clock := newTestKeeper(t)

	require.True(t, k.Initialize(ctx))
	assert.False(t, k.IsSessionValid(ctx), "initial session starts inactive")

	clock.advance(time.Hour)
	res := k.StoreUserData(ctx, validRecord(), []byte("pw"))
	require.True(t, res.Success)

	s, err := k.GetSession(ctx)
	require.NoError(t, err)
	assert.True(t, s.IsActive)
	assert.Equal(t, clock.now(), s.LastActivity)
	assert.Equal(t, s.SessionID, res.SessionID)
	assert.True(t, k.IsSessionValid(ctx))
}

func TestSession_RetrieveRefreshesActivity(t *testing.T) {
	ctx := context.Background()
	k, _, clock := newTestKeeper(t)
	password := []byte("pw")

	require.True(t, k.StoreUserData(ctx, validRecord(), password).Success)

	clock.advance(2 * time.Hour)
	require.True(t, k.RetrieveUserData(ctx, password).Success)

	s, err := k.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.now(), s.LastActivity)
}

func TestSession_UpdateSessionCreatesWhenAbsent(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	require.NoError(t, k.UpdateSession(ctx, true))

	s, err := k.GetSession(ctx)
	require.NoError(t, err)
	assert.True(t, s.IsActive)
}

func TestSession_Clear(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	require.NoError(t, k.UpdateSession(ctx, true))
	require.NoError(t, k.ClearSession(ctx))

	_, err := k.GetSession(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSession_CustomTTL(t *testing.T) {
	ctx := context.Background()
	k, _, clock := newTestKeeper(t)
	k.sessionTTL = time.Minute

	require.NoError(t, k.SetSession(ctx, &Session{
		SessionID:    "abc",
		CreatedAt:    clock.now(),
		LastActivity: clock.now(),
		IsActive:     true,
	}))
	assert.True(t, k.IsSessionValid(ctx))

	clock.advance(2 * time.Minute)
	assert.False(t, k.IsSessionValid(ctx))
}
