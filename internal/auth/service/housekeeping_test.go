package service

import (
	"context"
	"testing"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeeping_Cleanup(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	now := e.Clock.Now()

	require.NoError(t, e.Store.RevokedTokens().PutRevokedToken(ctx, "expired", now.Add(-time.Minute)))
	require.NoError(t, e.Store.RevokedTokens().PutRevokedToken(ctx, "live", now.Add(time.Hour)))
	require.NoError(t, e.Cache.Put(ctx, "mem", time.Second))

	logs := e.Store.ActivityLogs()
	require.NoError(t, logs.CreateActivityLog(ctx, domain.ActivityEntry{ID: "old", Action: "x", TeamID: "t", CreatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, logs.CreateActivityLog(ctx, domain.ActivityEntry{ID: "new", Action: "x", TeamID: "t", CreatedAt: now.Add(-time.Hour)}))

	e.Clock.Advance(time.Second)
	hk := NewHousekeepingService(e.Store, slogx.Discard(), time.Hour)
	hk.Now = e.Clock.Now
	hk.Cache = e.Cache
	hk.ActivityRetention = 24 * time.Hour
	hk.Cleanup(ctx)

	live, err := e.Store.RevokedTokens().IsTokenRevoked(ctx, "live", now)
	require.NoError(t, err)
	require.True(t, live)
	n, err := e.Store.RevokedTokens().DeleteExpiredRevokedTokens(ctx, now)
	require.NoError(t, err)
	require.Zero(t, n, "expired rows were already removed")

	require.Equal(t, 0, e.Cache.Len())

	remaining, err := logs.ListTeamActivity(ctx, "t", 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "new", remaining[0].ID)
}

func TestHousekeeping_StartStop(t *testing.T) {
	e := newEnv(t)
	hk := NewHousekeepingService(e.Store, slogx.Discard(), 0)
	require.Equal(t, time.Hour, hk.Interval)
	hk.Start()
	hk.Stop()
	hk.Stop()
}
