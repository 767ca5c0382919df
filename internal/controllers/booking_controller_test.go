package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/testhelpers"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func TestCreateBookingHandler(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "web")
	testhelpers.CreateTestRoom(t, ctx, store.Rooms(), 202, 900000)
	c := NewBookingController(services.NewBookingService(store.Bookings(), nil), nil, nil)

	post := func(body, userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
		if userID != "" {
			req = asUser(req, userID)
		}
		rec := httptest.NewRecorder()
		c.CreateBookingHandler(rec, req)
		return rec
	}

	t.Run("no session", func(t *testing.T) {
		rec := post(`{"room_number":202,"check_in":"2025-01-01","check_out":"2025-03-01"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := post(`{"room_number":`, tenant.ID.String())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), utils.ErrCodeInvalidPayload)
	})

	t.Run("validation details name the field", func(t *testing.T) {
		rec := post(`{"room_number":202,"check_in":"tomorrow","check_out":"2025-03-01"}`, tenant.ID.String())
		require.Equal(t, http.StatusBadRequest, rec.Code)

		raw := rec.Body.String()
		var body utils.ErrorResponse
		require.NoError(t, json.Unmarshal([]byte(raw), &body))
		assert.Equal(t, utils.ErrCodeValidation, body.Code)
		assert.NotNil(t, body.Details)
		assert.Contains(t, raw, `"field":"check_in"`)
	})

	t.Run("created", func(t *testing.T) {
		rec := post(`{"room_number":202,"check_in":"2025-01-01","check_out":"2025-03-01"}`, tenant.ID.String())
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var b models.Booking
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&b))
		assert.Equal(t, 202, b.RoomNumber)
		assert.Equal(t, models.BookingUnpaid, b.PaymentStatus)
	})

	t.Run("room taken", func(t *testing.T) {
		rec := post(`{"room_number":202,"check_in":"2025-01-01","check_out":"2025-03-01"}`, tenant.ID.String())
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
