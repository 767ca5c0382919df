package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/testhelpers"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func TestVisitorService_SignInAndOut(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	svc := NewVisitorService(store.Visitors(), NewNotificationService(store.Notifications()))
	tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "host")

	entry := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)
	planned := entry.Add(3 * time.Hour)

	t.Run("planned exit before entry", func(t *testing.T) {
		_, err := svc.SignIn(ctx, tenant.ID, dtos.VisitorSignInRequest{
			Name: "Brian", PhoneNumber: testhelpers.UniquePhone(), RoomNumber: 101,
			EntryTime: entry, PlannedExitTime: entry.Add(-time.Minute),
		})
		requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	})

	v, err := svc.SignIn(ctx, tenant.ID, dtos.VisitorSignInRequest{
		Name: " Brian ", PhoneNumber: testhelpers.UniquePhone(), RoomNumber: 101,
		EntryTime: entry, PlannedExitTime: planned,
	})
	require.NoError(t, err)
	assert.True(t, v.IsActive)
	assert.Equal(t, "Brian", v.Name)

	t.Run("exit outside window", func(t *testing.T) {
		_, err := svc.SignOut(ctx, tenant.ID, v.ID, dtos.VisitorSignOutRequest{ActualExitTime: planned.Add(time.Minute)})
		requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	})

	t.Run("another tenant cannot sign the visitor out", func(t *testing.T) {
		_, err := svc.SignOut(ctx, uuid.New(), v.ID, dtos.VisitorSignOutRequest{ActualExitTime: planned})
		requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
	})

	out, err := svc.SignOut(ctx, tenant.ID, v.ID, dtos.VisitorSignOutRequest{ActualExitTime: planned})
	require.NoError(t, err)
	assert.False(t, out.IsActive)
	require.NotNil(t, out.ActualExitTime)

	_, err = svc.SignOut(ctx, tenant.ID, v.ID, dtos.VisitorSignOutRequest{ActualExitTime: planned})
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)

	active := true
	list, err := svc.List(ctx, &active)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestVisitorService_NotifyOverstaysOnce(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	svc := NewVisitorService(store.Visitors(), NewNotificationService(store.Notifications()))
	tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "overstay")

	entry := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)
	_, err := svc.SignIn(ctx, tenant.ID, dtos.VisitorSignInRequest{
		Name: "Late Larry", PhoneNumber: testhelpers.UniquePhone(), RoomNumber: 101,
		EntryTime: entry, PlannedExitTime: entry.Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.SignIn(ctx, tenant.ID, dtos.VisitorSignInRequest{
		Name: "On-time Olga", PhoneNumber: testhelpers.UniquePhone(), RoomNumber: 101,
		EntryTime: entry, PlannedExitTime: entry.Add(10 * time.Hour),
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return entry.Add(2 * time.Hour) }

	n, err := svc.NotifyOverstays(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.NotifyOverstays(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	notes := store.NotificationsFor(tenant.ID)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "Late Larry")
}
