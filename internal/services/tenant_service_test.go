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
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/testhelpers"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func TestTenantService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	svc := NewTenantService(store.Tenants(), NewAuditLogger(store.AuditLog()))

	alice := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "alice")
	bob := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "bob")

	updated, err := svc.UpdateProfile(ctx, alice.ID, dtos.UpdateTenantRequest{
		FirstName: utils.Ptr("  Alice "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, alice.LastName, updated.LastName)
	assert.Equal(t, alice.PhoneNumber, updated.PhoneNumber)

	stored, err := svc.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.FirstName)
	assert.Greater(t, stored.RowVersion, alice.RowVersion)

	t.Run("phone taken", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, alice.ID, dtos.UpdateTenantRequest{PhoneNumber: utils.Ptr(bob.PhoneNumber)})
		requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)
	})

	t.Run("phone not e164", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, alice.ID, dtos.UpdateTenantRequest{PhoneNumber: utils.Ptr("0712345678")})
		requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, uuid.New(), dtos.UpdateTenantRequest{FirstName: utils.Ptr("Ghost")})
		requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
	})
}

func TestTenantService_Delete(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	svc := NewTenantService(store.Tenants(), NewAuditLogger(store.AuditLog()))
	adminID := uuid.New()

	t.Run("occupying tenant is kept", func(t *testing.T) {
		tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "resident")
		testhelpers.CreateTestRoom(t, ctx, store.Rooms(), 501, 1500000)

		booking := &models.Booking{
			ID: uuid.New(), TenantID: tenant.ID, RoomNumber: 501,
			CheckIn: time.Now(), CheckOut: time.Now().AddDate(0, 2, 0),
		}
		require.NoError(t, store.Bookings().CreateWithReservation(ctx, booking))
		payment := &models.Payment{
			ID: uuid.New(), TenantID: tenant.ID, BookingID: booking.ID, RoomNumber: 501,
			Amount: 1500000, Currency: "kes", Method: "card", Status: models.PaymentPending,
		}
		require.NoError(t, store.Payments().Create(ctx, payment))
		require.NoError(t, store.Payments().ApplySucceeded(ctx, models.PaymentEvent{
			EventID: "evt_resident", PaymentID: payment.ID, TenantID: tenant.ID, RoomNumber: 501,
		}, "paid"))

		err := svc.Delete(ctx, adminID, tenant.ID)
		requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)

		still, err := svc.Get(ctx, tenant.ID)
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, still.ID)
	})

	t.Run("former tenant is removed and audited", func(t *testing.T) {
		tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "leaver")
		before := len(store.AuditEntries())

		require.NoError(t, svc.Delete(ctx, adminID, tenant.ID))

		_, err := svc.Get(ctx, tenant.ID)
		requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)

		entries := store.AuditEntries()
		require.Len(t, entries, before+1)
		last := entries[len(entries)-1]
		assert.Equal(t, models.AuditDelete, last.Action)
		assert.Equal(t, models.TargetTenant, last.TargetType)
		assert.Equal(t, tenant.ID, last.TargetID)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		err := svc.Delete(ctx, adminID, uuid.New())
		requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
	})
}
