package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/testhelpers"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func TestRoomService_CRUD(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	objects := &fakeStore{}
	svc := NewRoomService(store.Rooms(), objects, NewAuditLogger(store.AuditLog()))
	adminID := uuid.New()

	room, err := svc.Create(ctx, adminID, dtos.CreateRoomRequest{RoomNumber: 501, RoomType: "Double", BedCount: 2, Price: 2500000})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, room.Status)

	_, err = svc.Create(ctx, adminID, dtos.CreateRoomRequest{RoomNumber: 501, RoomType: "Single", BedCount: 1})
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)

	updated, err := svc.Update(ctx, adminID, 501, dtos.UpdateRoomRequest{Price: utils.Ptr(int64(2600000))})
	require.NoError(t, err)
	assert.Equal(t, int64(2600000), updated.Price)
	assert.Equal(t, "Double", updated.RoomType)

	withPhoto, err := svc.UploadPhoto(ctx, adminID, 501, "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	require.NotNil(t, withPhoto.PhotoURL)
	assert.Contains(t, *withPhoto.PhotoURL, "rooms/501/")

	_, err = svc.Get(ctx, 999)
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)

	bogus := models.RoomStatus("Haunted")
	_, err = svc.List(ctx, &bogus)
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)

	require.NoError(t, svc.Delete(ctx, adminID, 501))
	assert.Len(t, store.AuditEntries(), 4)
}

func TestRoomService_HeldRoomsCannotBeDeleted(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	svc := NewRoomService(store.Rooms(), &fakeStore{}, nil)
	tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "holder")
	testhelpers.CreateTestRoom(t, ctx, store.Rooms(), 601, 1000000)

	_, err := NewBookingService(store.Bookings(), nil).Create(ctx, tenant.ID, dtos.CreateBookingRequest{
		RoomNumber: 601, CheckIn: "2025-01-01", CheckOut: "2025-03-01",
	})
	require.NoError(t, err)

	requireAppError(t, svc.Delete(ctx, uuid.New(), 601), http.StatusConflict, utils.ErrCodeConflict)
}

func TestRoomService_ReleasePending(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	svc := NewRoomService(store.Rooms(), &fakeStore{}, nil)
	bookings := NewBookingService(store.Bookings(), nil)
	tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "abandon")
	testhelpers.CreateTestRoom(t, ctx, store.Rooms(), 701, 1000000)

	_, err := svc.Release(ctx, uuid.New(), 701)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)

	_, err = bookings.Create(ctx, tenant.ID, dtos.CreateBookingRequest{RoomNumber: 701, CheckIn: "2025-01-01", CheckOut: "2025-03-01"})
	require.NoError(t, err)

	room, err := svc.Release(ctx, uuid.New(), 701)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, room.Status)

	held := store.BookingsFor(tenant.ID)
	require.Len(t, held, 1)
	assert.NotNil(t, held[0].ReleasedAt)
	assert.Equal(t, models.BookingUnpaid, held[0].PaymentStatus)

	// The room can be booked again.
	_, err = bookings.Create(ctx, tenant.ID, dtos.CreateBookingRequest{RoomNumber: 701, CheckIn: "2025-02-01", CheckOut: "2025-04-01"})
	require.NoError(t, err)
}

func sessionEvent(t *testing.T, id, eventType string, p *models.Payment, paymentStatus string) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(testhelpers.CheckoutSessionObject(p.ID.String(), p.TenantID.String(), p.RoomNumber, paymentStatus))
	require.NoError(t, err)
	return stripe.Event{ID: id, Type: stripe.EventType(eventType), Data: &stripe.EventData{Raw: raw}}
}

func TestRoomService_ReleaseWaitsForOpenCheckout(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	rooms := NewRoomService(store.Rooms(), &fakeStore{}, nil)
	bookings := NewBookingService(store.Bookings(), nil)
	checkout := NewCheckoutService(testConfig(), store.Bookings(), store.Rooms(), store.Tenants(), store.Payments(), &fakeGateway{})
	webhooks := NewWebhookService(store.Payments(), store.Tenants(), &fakeMailer{}, nil)

	payer := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "payer")
	other := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "other")
	testhelpers.CreateTestRoom(t, ctx, store.Rooms(), 301, 2000000)

	booking, err := bookings.Create(ctx, payer.ID, dtos.CreateBookingRequest{RoomNumber: 301, CheckIn: "2025-01-01", CheckOut: "2025-03-01"})
	require.NoError(t, err)
	resp, err := checkout.CreateCheckout(ctx, payer.ID, booking.ID)
	require.NoError(t, err)
	payment := store.Payment(resp.PaymentID)

	t.Run("open session blocks release", func(t *testing.T) {
		_, err := rooms.Release(ctx, uuid.New(), 301)
		requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)
		assert.Equal(t, models.RoomStatusPending, store.Room(301).Status)

		_, err = bookings.Create(ctx, other.ID, dtos.CreateBookingRequest{RoomNumber: 301, CheckIn: "2025-01-01", CheckOut: "2025-03-01"})
		requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)
	})

	t.Run("late success still lands on the payer", func(t *testing.T) {
		require.NoError(t, webhooks.HandleStripeEvent(ctx, sessionEvent(t, "evt_late_ok", EventCheckoutCompleted, payment, "paid")))

		assert.Equal(t, models.PaymentPaid, store.Payment(payment.ID).Status)
		assert.Equal(t, models.RoomStatusOccupied, store.Room(301).Status)
		payerBookings := store.BookingsFor(payer.ID)
		require.Len(t, payerBookings, 1)
		assert.Equal(t, models.BookingPaid, payerBookings[0].PaymentStatus)
		assert.Empty(t, store.BookingsFor(other.ID))
	})
}

func TestRoomService_ReleaseAfterExpiredCheckout(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	rooms := NewRoomService(store.Rooms(), &fakeStore{}, nil)
	bookings := NewBookingService(store.Bookings(), nil)
	checkout := NewCheckoutService(testConfig(), store.Bookings(), store.Rooms(), store.Tenants(), store.Payments(), &fakeGateway{})
	webhooks := NewWebhookService(store.Payments(), store.Tenants(), &fakeMailer{}, nil)

	payer := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "payer")
	other := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "other")
	testhelpers.CreateTestRoom(t, ctx, store.Rooms(), 302, 2000000)

	booking, err := bookings.Create(ctx, payer.ID, dtos.CreateBookingRequest{RoomNumber: 302, CheckIn: "2025-01-01", CheckOut: "2025-03-01"})
	require.NoError(t, err)
	resp, err := checkout.CreateCheckout(ctx, payer.ID, booking.ID)
	require.NoError(t, err)
	payment := store.Payment(resp.PaymentID)

	require.NoError(t, webhooks.HandleStripeEvent(ctx, sessionEvent(t, "evt_expired", EventCheckoutExpired, payment, "unpaid")))
	require.Equal(t, models.PaymentFailed, store.Payment(payment.ID).Status)

	room, err := rooms.Release(ctx, uuid.New(), 302)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, room.Status)

	// The failed payment keeps its booking.
	require.NotNil(t, store.Payment(payment.ID))
	payerBookings := store.BookingsFor(payer.ID)
	require.Len(t, payerBookings, 1)
	assert.NotNil(t, payerBookings[0].ReleasedAt)

	_, err = checkout.CreateCheckout(ctx, payer.ID, booking.ID)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)

	// A checkout that read the booking just before the release still loses.
	late := &models.Payment{ID: uuid.New(), TenantID: payer.ID, BookingID: booking.ID, RoomNumber: 302, Amount: 2000000, Currency: "kes", Method: "card", Status: models.PaymentPending}
	assert.ErrorIs(t, store.Payments().Create(ctx, late), utils.ErrBookingReleased)

	_, err = bookings.Create(ctx, other.ID, dtos.CreateBookingRequest{RoomNumber: 302, CheckIn: "2025-01-01", CheckOut: "2025-03-01"})
	require.NoError(t, err)

	// A room with payment history cannot be deleted once it frees up again.
	_, err = rooms.Release(ctx, uuid.New(), 302)
	require.NoError(t, err)
	requireAppError(t, rooms.Delete(ctx, uuid.New(), 302), http.StatusConflict, utils.ErrCodeConflict)
}
