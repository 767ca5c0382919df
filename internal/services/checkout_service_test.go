package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/testhelpers"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func TestCheckoutService_CreateCheckout(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	gateway := &fakeGateway{}
	cfg := testConfig()
	svc := NewCheckoutService(cfg, store.Bookings(), store.Rooms(), store.Tenants(), store.Payments(), gateway)

	tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "checkout")
	testhelpers.CreateTestRoom(t, ctx, store.Rooms(), 401, 1750000)
	booking, err := NewBookingService(store.Bookings(), nil).Create(ctx, tenant.ID, dtos.CreateBookingRequest{
		RoomNumber: 401, CheckIn: "2025-01-01", CheckOut: "2025-03-01",
	})
	require.NoError(t, err)

	t.Run("gateway failure marks the payment failed", func(t *testing.T) {
		gateway.err = utils.ErrExternalServiceFailure
		defer func() { gateway.err = nil }()

		_, err := svc.CreateCheckout(ctx, tenant.ID, booking.ID)
		requireAppError(t, err, http.StatusBadGateway, utils.ErrCodeExternalServiceFailure)

		failed := models.PaymentFailed
		list, err := store.Payments().List(ctx, &failed)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("charges the room price", func(t *testing.T) {
		resp, err := svc.CreateCheckout(ctx, tenant.ID, booking.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.URL)

		p := store.Payment(resp.PaymentID)
		require.NotNil(t, p)
		assert.Equal(t, models.PaymentPending, p.Status)
		assert.Equal(t, int64(1750000), p.Amount)
		require.NotNil(t, p.CheckoutSessionID)
		assert.Equal(t, resp.SessionID, *p.CheckoutSessionID)

		require.Len(t, gateway.requests, 1)
		req := gateway.requests[0]
		assert.Equal(t, int64(1750000), req.Amount)
		assert.Equal(t, tenant.Email, req.CustomerEmail)
		assert.Equal(t, resp.PaymentID.String(), req.Metadata["paymentId"])
		assert.Equal(t, tenant.ID.String(), req.Metadata["tenantId"])
		assert.Equal(t, "401", req.Metadata["roomNumber"])
		assert.WithinDuration(t, time.Now().Add(constants.CheckoutSessionTTL), req.ExpiresAt, time.Minute)
	})

	t.Run("second checkout while one is open", func(t *testing.T) {
		_, err := svc.CreateCheckout(ctx, tenant.ID, booking.ID)
		requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)

		pending := models.PaymentPending
		list, err := store.Payments().List(ctx, &pending)
		require.NoError(t, err)
		assert.Len(t, list, 1)
		assert.Len(t, gateway.requests, 1)
	})

	t.Run("someone else's booking is not found", func(t *testing.T) {
		_, err := svc.CreateCheckout(ctx, uuid.New(), booking.ID)
		requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
	})
}
