package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/testhelpers"
)

const webhookSecret = "whsec_test_secret"

type nopMailer struct{}

func (nopMailer) Send(context.Context, services.Email) error { return nil }

func postWebhook(c *WebhookController, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	c.WebhookHandler(rec, req)
	return rec
}

func TestWebhookHandler(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "hook")
	testhelpers.CreateTestRoom(t, ctx, store.Rooms(), 101, 1200000)

	booking := &models.Booking{ID: uuid.New(), TenantID: tenant.ID, RoomNumber: 101}
	require.NoError(t, store.Bookings().CreateWithReservation(ctx, booking))
	payment := &models.Payment{
		ID: uuid.New(), TenantID: tenant.ID, BookingID: booking.ID, RoomNumber: 101,
		Amount: 1200000, Currency: "kes", Method: "card", Status: models.PaymentPending,
	}
	require.NoError(t, store.Payments().Create(ctx, payment))

	svc := services.NewWebhookService(store.Payments(), store.Tenants(), nopMailer{}, nil)
	c := NewWebhookController(svc, webhookSecret)

	payload := testhelpers.MockStripeWebhookPayload(t, services.EventCheckoutCompleted,
		testhelpers.CheckoutSessionObject(payment.ID.String(), tenant.ID.String(), 101, "paid"))

	t.Run("missing signature header", func(t *testing.T) {
		rec := postWebhook(c, payload, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		rec := postWebhook(c, payload, testhelpers.SignStripePayload("whsec_wrong", payload))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, models.RoomStatusPending, store.Room(101).Status)
	})

	t.Run("signed event is applied", func(t *testing.T) {
		rec := postWebhook(c, payload, testhelpers.SignStripePayload(webhookSecret, payload))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, models.RoomStatusOccupied, store.Room(101).Status)
		assert.Equal(t, models.PaymentPaid, store.Payment(payment.ID).Status)
	})

	t.Run("redelivery is acknowledged", func(t *testing.T) {
		rec := postWebhook(c, payload, testhelpers.SignStripePayload(webhookSecret, payload))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, store.NotificationsFor(tenant.ID), 1)
	})

	t.Run("bad metadata is a 400", func(t *testing.T) {
		bad := testhelpers.MockStripeWebhookPayload(t, services.EventCheckoutCompleted,
			testhelpers.CheckoutSessionObject(payment.ID.String(), "nope", 101, "paid"))
		rec := postWebhook(c, bad, testhelpers.SignStripePayload(webhookSecret, bad))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
