//go:build integration

package integration

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/testhelpers"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func TestBookingRace_OnlyOneReservationWins(t *testing.T) {
	h := testhelpers.NewTestHelper(t)
	number := testhelpers.UniqueRoomNumber()
	testhelpers.CreateTestRoom(t, h.Ctx, h.RoomRepo, number, 1500000)

	const n = 8
	tenants := make([]*models.Tenant, n)
	for i := range tenants {
		tenants[i] = testhelpers.CreateTestTenant(t, h.Ctx, h.TenantRepo, "race")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)
	for _, tenant := range tenants {
		wg.Add(1)
		go func(tenantID uuid.UUID) {
			defer wg.Done()
			err := h.BookingRepo.CreateWithReservation(h.Ctx, &models.Booking{
				ID:         uuid.New(),
				TenantID:   tenantID,
				RoomNumber: number,
				CheckIn:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				CheckOut:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, utils.ErrRoomUnavailable):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(tenant.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, rejected)

	room, err := h.RoomRepo.GetByNumber(h.Ctx, number)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusPending, room.Status)
}

func TestReleasePending_ReopensRoom(t *testing.T) {
	h := testhelpers.NewTestHelper(t)
	number := testhelpers.UniqueRoomNumber()
	testhelpers.CreateTestRoom(t, h.Ctx, h.RoomRepo, number, 1500000)
	tenant := testhelpers.CreateTestTenant(t, h.Ctx, h.TenantRepo, "release")

	require.NoError(t, h.BookingRepo.CreateWithReservation(h.Ctx, &models.Booking{
		ID: uuid.New(), TenantID: tenant.ID, RoomNumber: number,
		CheckIn: time.Now(), CheckOut: time.Now().AddDate(0, 2, 0),
	}))
	require.NoError(t, h.RoomRepo.ReleasePending(h.Ctx, number))

	room, err := h.RoomRepo.GetByNumber(h.Ctx, number)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, room.Status)

	list, err := h.BookingRepo.ListByTenant(h.Ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].ReleasedAt)
}
