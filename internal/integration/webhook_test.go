//go:build integration

package integration

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/testhelpers"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type pendingCheckout struct {
	tenant  *models.Tenant
	room    int
	payment *models.Payment
}

func createPendingCheckout(t *testing.T, h *testhelpers.TestHelper) pendingCheckout {
	t.Helper()
	number := testhelpers.UniqueRoomNumber()
	testhelpers.CreateTestRoom(t, h.Ctx, h.RoomRepo, number, 1800000)
	tenant := testhelpers.CreateTestTenant(t, h.Ctx, h.TenantRepo, "pay")

	booking := &models.Booking{
		ID: uuid.New(), TenantID: tenant.ID, RoomNumber: number,
		CheckIn: time.Now(), CheckOut: time.Now().AddDate(0, 2, 0),
	}
	require.NoError(t, h.BookingRepo.CreateWithReservation(h.Ctx, booking))

	payment := &models.Payment{
		ID: uuid.New(), TenantID: tenant.ID, BookingID: booking.ID, RoomNumber: number,
		Amount: 1800000, Currency: "kes", Method: "card", Status: models.PaymentPending,
	}
	require.NoError(t, h.PaymentRepo.Create(h.Ctx, payment))
	return pendingCheckout{tenant: tenant, room: number, payment: payment}
}

func TestApplySucceeded_IsIdempotent(t *testing.T) {
	h := testhelpers.NewTestHelper(t)
	pc := createPendingCheckout(t, h)

	evt := models.PaymentEvent{
		EventID:    "evt_it_" + uuid.NewString(),
		EventType:  "checkout.session.completed",
		PaymentID:  pc.payment.ID,
		TenantID:   pc.tenant.ID,
		RoomNumber: pc.room,
	}
	require.NoError(t, h.PaymentRepo.ApplySucceeded(h.Ctx, evt, "paid"))
	err := h.PaymentRepo.ApplySucceeded(h.Ctx, evt, "paid")
	assert.True(t, errors.Is(err, utils.ErrDuplicateEvent))

	notes, err := h.NotifRepo.ListByTenant(h.Ctx, pc.tenant.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	room, err := h.RoomRepo.GetByNumber(h.Ctx, pc.room)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusOccupied, room.Status)

	active, err := h.TenantRepo.HasActiveTenancy(h.Ctx, pc.tenant.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestReleasePending_RefusedWhileCheckoutOpen(t *testing.T) {
	h := testhelpers.NewTestHelper(t)
	pc := createPendingCheckout(t, h)

	err := h.RoomRepo.ReleasePending(h.Ctx, pc.room)
	assert.True(t, errors.Is(err, utils.ErrCheckoutInProgress))

	second := &models.Payment{
		ID: uuid.New(), TenantID: pc.tenant.ID, BookingID: pc.payment.BookingID, RoomNumber: pc.room,
		Amount: 1800000, Currency: "kes", Method: "card", Status: models.PaymentPending,
	}
	err = h.PaymentRepo.Create(h.Ctx, second)
	assert.True(t, errors.Is(err, utils.ErrCheckoutInProgress))

	// Once the session lapses the room can be handed back, and the failed
	// payment keeps its booking.
	require.NoError(t, h.PaymentRepo.MarkFailed(h.Ctx, pc.payment.ID))
	require.NoError(t, h.RoomRepo.ReleasePending(h.Ctx, pc.room))

	got, err := h.PaymentRepo.GetByID(h.Ctx, pc.payment.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.PaymentFailed, got.Status)

	err = h.RoomRepo.DeleteIfAvailable(h.Ctx, pc.room)
	assert.True(t, errors.Is(err, utils.ErrRoomUnavailable))
}

func TestWebhookEndpoint_SignedCheckout(t *testing.T) {
	h := testhelpers.NewTestHelper(t)
	h.RequireServer()
	pc := createPendingCheckout(t, h)

	payload := testhelpers.MockStripeWebhookPayload(t, "checkout.session.completed",
		testhelpers.CheckoutSessionObject(pc.payment.ID.String(), pc.tenant.ID.String(), pc.room, "paid"))

	resp := h.PostStripeWebhook(payload)
	body := h.ReadBody(resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	p, err := h.PaymentRepo.GetByID(h.Ctx, pc.payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, p.Status)
}
