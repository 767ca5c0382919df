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

func TestPaymentService(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	svc := NewPaymentService(store.Payments())

	owner, other := uuid.New(), uuid.New()
	pending := &models.Payment{ID: uuid.New(), TenantID: owner, RoomNumber: 1, Amount: 100, Status: models.PaymentPending}
	failed := &models.Payment{ID: uuid.New(), TenantID: other, RoomNumber: 2, Amount: 200, Status: models.PaymentFailed}
	require.NoError(t, store.Payments().Create(ctx, pending))
	require.NoError(t, store.Payments().Create(ctx, failed))

	t.Run("owner sees own payment", func(t *testing.T) {
		p, err := svc.Get(ctx, pending.ID, &owner)
		require.NoError(t, err)
		assert.Equal(t, pending.ID, p.ID)
	})

	t.Run("other tenant gets not found", func(t *testing.T) {
		_, err := svc.Get(ctx, pending.ID, &other)
		requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
	})

	t.Run("admin lookup skips ownership", func(t *testing.T) {
		p, err := svc.Get(ctx, failed.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentFailed, p.Status)
	})

	t.Run("list by tenant", func(t *testing.T) {
		list, err := svc.ListForTenant(ctx, owner)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, pending.ID, list[0].ID)
	})

	t.Run("list by status", func(t *testing.T) {
		status := models.PaymentFailed
		list, err := svc.List(ctx, &status)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, failed.ID, list[0].ID)

		all, err := svc.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("unknown status", func(t *testing.T) {
		status := models.PaymentStatus("Refunded")
		_, err := svc.List(ctx, &status)
		requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	})
}
