package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/testhelpers"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func newAdvertisementService(store *testhelpers.MemStore, objects ObjectStore) *AdvertisementService {
	return NewAdvertisementService(store.Advertisements(), objects, NewNotificationService(store.Notifications()), NewAuditLogger(store.AuditLog()))
}

func adRequest() dtos.CreateAdvertisementRequest {
	return dtos.CreateAdvertisementRequest{
		Title:       "Study desk",
		Description: "Solid wood, barely used",
		Price:       utils.Ptr(int64(450000)),
		Contact:     "+254700000001",
	}
}

func TestAdvertisementReview(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	objects := &fakeStore{}
	svc := newAdvertisementService(store, objects)
	tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "seller")
	adminID := uuid.New()

	ad, err := svc.Create(ctx, tenant.ID, adRequest(), &ImageUpload{ContentType: "image/png", Body: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, models.AdPending, ad.ApprovalStatus)
	require.NotNil(t, ad.ImageURL)
	assert.True(t, strings.HasSuffix(*ad.ImageURL, ".png"))
	assert.Len(t, objects.objects, 1)

	approved, err := svc.ListApproved(ctx)
	require.NoError(t, err)
	assert.Empty(t, approved, "pending ads are not public")

	_, err = svc.Approve(ctx, adminID, ad.ID)
	require.NoError(t, err)

	_, err = svc.Reject(ctx, adminID, ad.ID)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)

	approved, err = svc.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, approved, 1)

	notes := store.NotificationsFor(tenant.ID)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "approved")

	_, err = svc.Approve(ctx, adminID, uuid.New())
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
}

func TestAdvertisementCreate_ImageRules(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "imgs")

	t.Run("rejects non-image types", func(t *testing.T) {
		svc := newAdvertisementService(store, &fakeStore{})
		_, err := svc.Create(ctx, tenant.ID, adRequest(), &ImageUpload{ContentType: "application/pdf", Body: strings.NewReader("%PDF")})
		requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	})

	t.Run("storage not configured", func(t *testing.T) {
		svc := newAdvertisementService(store, NewUnconfiguredObjectStore())
		_, err := svc.Create(ctx, tenant.ID, adRequest(), &ImageUpload{ContentType: "image/jpeg", Body: strings.NewReader("jpg")})
		requireAppError(t, err, http.StatusServiceUnavailable, utils.ErrCodeExternalServiceFailure)
	})

	t.Run("no image is fine", func(t *testing.T) {
		svc := newAdvertisementService(store, NewUnconfiguredObjectStore())
		ad, err := svc.Create(ctx, tenant.ID, adRequest(), nil)
		require.NoError(t, err)
		assert.Nil(t, ad.ImageURL)
	})
}

func TestAdvertisementDelete_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	svc := newAdvertisementService(store, &fakeStore{})
	owner := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "owner")
	other := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "other")

	ad, err := svc.Create(ctx, owner.ID, adRequest(), nil)
	require.NoError(t, err)

	requireAppError(t, svc.Delete(ctx, other.ID, ad.ID), http.StatusNotFound, utils.ErrCodeNotFound)
	require.NoError(t, svc.Delete(ctx, owner.ID, ad.ID))
}
