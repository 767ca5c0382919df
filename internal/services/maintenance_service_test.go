package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/testhelpers"
)

func TestMaintenance_RunWithRetry(t *testing.T) {
	s := &MaintenanceService{retryDelay: time.Millisecond}

	calls := 0
	err := s.runWithRetry(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return io.EOF
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = s.runWithRetry(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, calls, "non-transient errors are not retried")
}

func TestMaintenance_CleanupDailyRemovesExpiredTokens(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	visitors := NewVisitorService(store.Visitors(), NewNotificationService(store.Notifications()))
	svc := NewMaintenanceService(store.TenantTokens(), store.AdminTokens(), store.EmailVerifications(), store.PasswordResets(), store.Payments(), visitors)

	userID := uuid.New()
	require.NoError(t, store.TenantTokens().CreateRefreshToken(ctx, &models.RefreshToken{
		ID: uuid.New(), UserID: userID, Token: "expired", ExpiresAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, store.TenantTokens().CreateRefreshToken(ctx, &models.RefreshToken{
		ID: uuid.New(), UserID: userID, Token: "live", ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, svc.CleanupDaily(ctx))
	assert.Equal(t, 1, store.RefreshTokenCount(userID))
	require.NoError(t, svc.SweepOverstays(ctx))
}
