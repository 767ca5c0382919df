package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/testhelpers"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	svc := NewNotificationService(store.Notifications())
	a := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "a")
	b := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "b")

	n, err := svc.Send(ctx, nil, "Water off 10:00-12:00")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = svc.Send(ctx, &a.ID, "Rent reminder")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Send(ctx, utils.Ptr(uuid.New()), "Nobody home")
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)

	listA, err := svc.ListForTenant(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, listA, 2)
	assert.Equal(t, "Rent reminder", listA[0].Message, "newest first")

	t.Run("cannot mark another tenant's notification", func(t *testing.T) {
		_, err := svc.MarkRead(ctx, b.ID, listA[0].ID)
		requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
	})

	read, err := svc.MarkRead(ctx, a.ID, listA[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationRead, read.Status)

	count, err := svc.MarkAllRead(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
