package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/testhelpers"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func newPasswordResetService(store *testhelpers.MemStore, mailer Mailer) *PasswordResetService {
	return NewPasswordResetService(
		store.PasswordResets(), store.Tenants(), store.Admins(),
		store.TenantTokens(), store.AdminTokens(), store.LoginAttempts(), mailer,
	)
}

func TestPasswordReset_TenantFlow(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	mailer := &fakeMailer{}
	svc := newPasswordResetService(store, mailer)

	tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "reset")
	jwtSvc := NewJWTService([]byte("secret"), "tenant", store.TenantTokens())
	_, err := jwtSvc.GenerateRefreshToken(ctx, tenant.ID, "", testConfig().RefreshTokenTTL)
	require.NoError(t, err)

	svc.RequestCode(ctx, dtos.PasswordResetRequest{Email: tenant.Email, AccountType: models.AccountTenant})
	code := mailer.lastCode(t)

	ok, err := svc.VerifyCode(ctx, dtos.PasswordResetVerifyRequest{Email: tenant.Email, AccountType: models.AccountTenant, Code: code})
	require.NoError(t, err)
	assert.True(t, ok)

	const newPassword = "N3w#Passw0rd!"
	require.NoError(t, svc.ResetPassword(ctx, dtos.PasswordResetConfirmRequest{
		Email: tenant.Email, AccountType: models.AccountTenant, Code: code, NewPassword: newPassword,
	}))

	got, err := store.Tenants().GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash(newPassword, got.PasswordHash))
	assert.Equal(t, 0, store.RefreshTokenCount(tenant.ID))

	// The code is single-use.
	err = svc.ResetPassword(ctx, dtos.PasswordResetConfirmRequest{
		Email: tenant.Email, AccountType: models.AccountTenant, Code: code, NewPassword: "An0ther#Pass",
	})
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
}

func TestPasswordReset_UnknownAccountSendsNothing(t *testing.T) {
	store := testhelpers.NewMemStore()
	mailer := &fakeMailer{}
	svc := newPasswordResetService(store, mailer)

	svc.RequestCode(context.Background(), dtos.PasswordResetRequest{Email: "ghost@hostel.test", AccountType: models.AccountTenant})
	assert.Empty(t, mailer.Sent())
}

func TestPasswordReset_NewCodeSupersedesOld(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	mailer := &fakeMailer{}
	svc := newPasswordResetService(store, mailer)
	admin := testhelpers.CreateTestAdmin(t, ctx, store.Admins(), "resetadmin")

	svc.RequestCode(ctx, dtos.PasswordResetRequest{Email: admin.Email, AccountType: models.AccountAdmin})
	first := mailer.lastCode(t)
	svc.RequestCode(ctx, dtos.PasswordResetRequest{Email: admin.Email, AccountType: models.AccountAdmin})
	second := mailer.lastCode(t)

	if first != second {
		ok, err := svc.VerifyCode(ctx, dtos.PasswordResetVerifyRequest{Email: admin.Email, AccountType: models.AccountAdmin, Code: first})
		require.NoError(t, err)
		assert.False(t, ok)
	}
	ok, err := svc.VerifyCode(ctx, dtos.PasswordResetVerifyRequest{Email: admin.Email, AccountType: models.AccountAdmin, Code: second})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordReset_WrongGuessesExhaustCode(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewMemStore()
	mailer := &fakeMailer{}
	svc := newPasswordResetService(store, mailer)
	tenant := testhelpers.CreateTestTenant(t, ctx, store.Tenants(), "guess")

	svc.RequestCode(ctx, dtos.PasswordResetRequest{Email: tenant.Email, AccountType: models.AccountTenant})
	code := mailer.lastCode(t)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 0; i < 5; i++ {
		ok, err := svc.VerifyCode(ctx, dtos.PasswordResetVerifyRequest{Email: tenant.Email, AccountType: models.AccountTenant, Code: wrong})
		require.NoError(t, err)
		assert.False(t, ok)
	}
	ok, err := svc.VerifyCode(ctx, dtos.PasswordResetVerifyRequest{Email: tenant.Email, AccountType: models.AccountTenant, Code: code})
	require.NoError(t, err)
	assert.False(t, ok, "code must be dead after too many attempts")
}
