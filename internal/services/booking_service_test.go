package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
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

func requireAppError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected *utils.AppError, got %T: %v", err, err)
	assert.Equal(t, status, appErr.StatusCode)
	assert.Equal(t, code, appErr.Code)
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestValidateStay(t *testing.T) {
	cases := []struct {
		name     string
		in, out  string
		accepted bool
	}{
		{"exactly two months", "2025-01-01", "2025-03-01", true},
		{"one day short", "2025-01-01", "2025-02-28", false},
		{"long stay", "2025-01-15", "2025-12-15", true},
		{"month end rolls over", "2025-12-31", "2026-03-03", true},
		{"month end one day short", "2025-12-31", "2026-03-02", false},
		{"check-out before check-in", "2025-05-01", "2025-04-01", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStay(date(tc.in), date(tc.out))
			if tc.accepted {
				assert.NoError(t, err)
			} else {
				requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
			}
		})
	}
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "booker")
	testhelpers.CreateTestRoom(t, ctx, store.Rooms(), 101, 1500000)
	svc := NewBookingService(store.Bookings(), nil)

	t.Run("reserves the room", func(t *testing.T) {
		b, err := svc.Create(ctx, tenant.ID, dtos.CreateBookingRequest{RoomNumber: 101, CheckIn: "2025-01-01", CheckOut: "2025-03-01"})
		require.NoError(t, err)
		assert.Equal(t, models.BookingUnpaid, b.PaymentStatus)
		assert.Equal(t, models.RoomStatusPending, store.Room(101).Status)
	})

	t.Run("second booking conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, tenant.ID, dtos.CreateBookingRequest{RoomNumber: 101, CheckIn: "2025-01-01", CheckOut: "2025-03-01"})
		requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := svc.Create(ctx, tenant.ID, dtos.CreateBookingRequest{RoomNumber: 999, CheckIn: "2025-01-01", CheckOut: "2025-03-01"})
		requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		testhelpers.CreateTestRoom(t, ctx, store.Rooms(), 102, 1500000)
		_, err := svc.Create(ctx, uuid.New(), dtos.CreateBookingRequest{RoomNumber: 102, CheckIn: "2025-01-01", CheckOut: "2025-03-01"})
		requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
		assert.Equal(t, models.RoomStatusAvailable, store.Room(102).Status)
	})

	t.Run("short stay leaves room untouched", func(t *testing.T) {
		_, err := svc.Create(ctx, tenant.ID, dtos.CreateBookingRequest{RoomNumber: 102, CheckIn: "2025-01-01", CheckOut: "2025-02-01"})
		requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
		assert.Equal(t, models.RoomStatusAvailable, store.Room(102).Status)
	})

	t.Run("bad date format", func(t *testing.T) {
		_, err := svc.Create(ctx, tenant.ID, dtos.CreateBookingRequest{RoomNumber: 102, CheckIn: "01/01/2025", CheckOut: "2025-03-01"})
		requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		store.FailNext = errBoom
		_, err := svc.Create(ctx, tenant.ID, dtos.CreateBookingRequest{RoomNumber: 102, CheckIn: "2025-01-01", CheckOut: "2025-03-01"})
		requireAppError(t, err, http.StatusInternalServerError, utils.ErrCodeInternal)
	})
}

func TestBookingService_ConcurrentRequestsReserveOnce(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	testhelpers.CreateTestRoom(t, ctx, store.Rooms(), 201, 1800000)
	svc := NewBookingService(store.Bookings(), nil)

	const n = 10
	tenants := make([]*models.Tenant, n)
	for i := range tenants {
		tenants[i] = testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "racer")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(tenantID uuid.UUID) {
			defer wg.Done()
			_, err := svc.Create(ctx, tenantID, dtos.CreateBookingRequest{RoomNumber: 201, CheckIn: "2025-01-01", CheckOut: "2025-03-01"})
			mu.Lock()
			defer mu.Unlock()
			var appErr *utils.AppError
			switch {
			case err == nil:
				successes++
			case errors.As(err, &appErr) && appErr.StatusCode == http.StatusConflict:
				conflicts++
			}
		}(tenants[i].ID)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, models.RoomStatusPending, store.Room(201).Status)
}
