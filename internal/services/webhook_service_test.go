package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/testhelpers"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type webhookFixture struct {
	store   *testhelpers.MemStore
	mailer  *fakeMailer
	svc     *WebhookService
	tenant  *models.Tenant
	booking *models.Booking
	payment *models.Payment
}

// newWebhookFixture leaves room 301 Pending behind an Unpaid booking with a
// Pending payment, the state a checkout hands to the webhook.
func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	mailer := &fakeMailer{}

	tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "payer")
	testhelpers.CreateTestRoom(t, ctx, store.Rooms(), 301, 2000000)

	booking := &models.Booking{
		ID:         uuid.New(),
		TenantID:   tenant.ID,
		RoomNumber: 301,
		CheckIn:    date("2025-01-01"),
		CheckOut:   date("2025-03-01"),
	}
	require.NoError(t, store.Bookings().CreateWithReservation(ctx, booking))

	payment := &models.Payment{
		ID:         uuid.New(),
		TenantID:   tenant.ID,
		BookingID:  booking.ID,
		RoomNumber: 301,
		Amount:     2000000,
		Currency:   "kes",
		Method:     "card",
		Status:     models.PaymentPending,
	}
	require.NoError(t, store.Payments().Create(ctx, payment))

	return &webhookFixture{
		store:   store,
		mailer:  mailer,
		svc:     NewWebhookService(store.Payments(), store.Tenants(), mailer, nil),
		tenant:  tenant,
		booking: booking,
		payment: payment,
	}
}

func (f *webhookFixture) event(t *testing.T, id, eventType, paymentStatus string) stripe.Event {
	t.Helper()
	obj := testhelpers.CheckoutSessionObject(f.payment.ID.String(), f.tenant.ID.String(), 301, paymentStatus)
	raw, err := json.Marshal(obj)
	require.NoError(t, err)
	return stripe.Event{
		ID:   id,
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestWebhook_CheckoutCompletedMarksEverythingPaid(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleStripeEvent(ctx, f.event(t, "evt_1", EventCheckoutCompleted, "paid")))

	assert.Equal(t, models.PaymentPaid, f.store.Payment(f.payment.ID).Status)
	assert.Equal(t, models.RoomStatusOccupied, f.store.Room(301).Status)
	for _, b := range f.store.BookingsFor(f.tenant.ID) {
		assert.Equal(t, models.BookingPaid, b.PaymentStatus)
	}

	notes := f.store.NotificationsFor(f.tenant.ID)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "Room 301")

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, f.tenant.Email, sent[0].ToEmail)
	assert.Contains(t, sent[0].Plain, "KES 20000.00")
}

func TestWebhook_BookingFlipIsKeyedOnTenant(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	// An older unpaid booking by the same tenant on a room it still holds.
	testhelpers.CreateTestRoom(t, ctx, f.store.Rooms(), 302, 2000000)
	older := &models.Booking{ID: uuid.New(), TenantID: f.tenant.ID, RoomNumber: 302, CheckIn: date("2024-01-01"), CheckOut: date("2024-03-01")}
	require.NoError(t, f.store.Bookings().CreateWithReservation(ctx, older))

	require.NoError(t, f.svc.HandleStripeEvent(ctx, f.event(t, "evt_tenant", EventCheckoutCompleted, "paid")))

	bookings := f.store.BookingsFor(f.tenant.ID)
	require.Len(t, bookings, 2)
	for _, b := range bookings {
		assert.Equal(t, models.BookingPaid, b.PaymentStatus)
	}
	// Only the room named in the event moves to Occupied.
	assert.Equal(t, models.RoomStatusPending, f.store.Room(302).Status)
}

func TestWebhook_DuplicateDeliveryIsAcknowledgedOnce(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()
	evt := f.event(t, "evt_dup", EventCheckoutCompleted, "paid")

	require.NoError(t, f.svc.HandleStripeEvent(ctx, evt))
	require.NoError(t, f.svc.HandleStripeEvent(ctx, evt))

	assert.Len(t, f.mailer.Sent(), 1)
	assert.Len(t, f.store.NotificationsFor(f.tenant.ID), 1)
}

func TestWebhook_UnpaidCompletionIsIgnored(t *testing.T) {
	f := newWebhookFixture(t)

	require.NoError(t, f.svc.HandleStripeEvent(context.Background(), f.event(t, "evt_unpaid", EventCheckoutCompleted, "unpaid")))

	assert.Equal(t, models.PaymentPending, f.store.Payment(f.payment.ID).Status)
	assert.Equal(t, models.RoomStatusPending, f.store.Room(301).Status)
	assert.Empty(t, f.mailer.Sent())
}

func TestWebhook_AsyncSuccessAfterUnpaidCompletion(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleStripeEvent(ctx, f.event(t, "evt_a", EventCheckoutCompleted, "unpaid")))
	require.NoError(t, f.svc.HandleStripeEvent(ctx, f.event(t, "evt_b", EventCheckoutAsyncSucceeded, "paid")))

	assert.Equal(t, models.PaymentPaid, f.store.Payment(f.payment.ID).Status)
	assert.Equal(t, models.RoomStatusOccupied, f.store.Room(301).Status)
}

func TestWebhook_FailureOnlyTouchesPayment(t *testing.T) {
	f := newWebhookFixture(t)

	require.NoError(t, f.svc.HandleStripeEvent(context.Background(), f.event(t, "evt_fail", EventCheckoutAsyncFailed, "unpaid")))

	assert.Equal(t, models.PaymentFailed, f.store.Payment(f.payment.ID).Status)
	assert.Equal(t, models.RoomStatusPending, f.store.Room(301).Status)
	for _, b := range f.store.BookingsFor(f.tenant.ID) {
		assert.Equal(t, models.BookingUnpaid, b.PaymentStatus)
	}
	assert.Empty(t, f.mailer.Sent())
}

func TestWebhook_LateFailureNeverDowngradesPaid(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleStripeEvent(ctx, f.event(t, "evt_ok", EventCheckoutCompleted, "paid")))
	require.NoError(t, f.svc.HandleStripeEvent(ctx, f.event(t, "evt_late", EventCheckoutExpired, "unpaid")))

	assert.Equal(t, models.PaymentPaid, f.store.Payment(f.payment.ID).Status)
}

func TestWebhook_PaymentIntentFailure(t *testing.T) {
	f := newWebhookFixture(t)
	raw, err := json.Marshal(map[string]any{
		"id":     "pi_test_1",
		"object": "payment_intent",
		"metadata": map[string]string{
			"paymentId":  f.payment.ID.String(),
			"tenantId":   f.tenant.ID.String(),
			"roomNumber": "301",
		},
	})
	require.NoError(t, err)

	err = f.svc.HandleStripeEvent(context.Background(), stripe.Event{
		ID:   "evt_pi",
		Type: stripe.EventType(EventPaymentIntentPaymentFailed),
		Data: &stripe.EventData{Raw: raw},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, f.store.Payment(f.payment.ID).Status)
}

func TestWebhook_MalformedMetadataIsRejected(t *testing.T) {
	f := newWebhookFixture(t)
	raw, err := json.Marshal(testhelpers.CheckoutSessionObject("not-a-uuid", f.tenant.ID.String(), 301, "paid"))
	require.NoError(t, err)

	err = f.svc.HandleStripeEvent(context.Background(), stripe.Event{
		ID:   "evt_bad",
		Type: stripe.EventType(EventCheckoutCompleted),
		Data: &stripe.EventData{Raw: raw},
	})
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeInvalidPayload)
	assert.Equal(t, models.PaymentPending, f.store.Payment(f.payment.ID).Status)
}

func TestWebhook_UnknownPaymentIsRejected(t *testing.T) {
	f := newWebhookFixture(t)
	raw, err := json.Marshal(testhelpers.CheckoutSessionObject(uuid.NewString(), f.tenant.ID.String(), 301, "paid"))
	require.NoError(t, err)

	err = f.svc.HandleStripeEvent(context.Background(), stripe.Event{
		ID:   "evt_unknown",
		Type: stripe.EventType(EventCheckoutCompleted),
		Data: &stripe.EventData{Raw: raw},
	})
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeInvalidPayload)
	assert.Equal(t, models.RoomStatusPending, f.store.Room(301).Status)
}

func TestWebhook_StorageFailureAsksForRedelivery(t *testing.T) {
	f := newWebhookFixture(t)
	f.store.FailNext = errBoom

	err := f.svc.HandleStripeEvent(context.Background(), f.event(t, "evt_retry", EventCheckoutCompleted, "paid"))
	requireAppError(t, err, http.StatusInternalServerError, utils.ErrCodeInternal)

	// Nothing was committed, so the redelivery applies cleanly.
	require.NoError(t, f.svc.HandleStripeEvent(context.Background(), f.event(t, "evt_retry", EventCheckoutCompleted, "paid")))
	assert.Equal(t, models.RoomStatusOccupied, f.store.Room(301).Status)
}

func TestWebhook_EmailFailureStillAcknowledges(t *testing.T) {
	f := newWebhookFixture(t)
	f.mailer.err = errBoom

	require.NoError(t, f.svc.HandleStripeEvent(context.Background(), f.event(t, "evt_mail", EventCheckoutCompleted, "paid")))
	assert.Equal(t, models.PaymentPaid, f.store.Payment(f.payment.ID).Status)
}

func TestWebhook_UnhandledTypeIsAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)
	err := f.svc.HandleStripeEvent(context.Background(), stripe.Event{
		ID:   "evt_other",
		Type: "customer.created",
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	})
	assert.NoError(t, err)
}
