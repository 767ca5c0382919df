package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type PasswordResetService struct {
	repo         repositories.PasswordResetRepository
	tenants      repositories.TenantRepository
	admins       repositories.AdminRepository
	tenantTokens repositories.TokenRepository
	adminTokens  repositories.TokenRepository
	attempts     repositories.LoginAttemptsRepository
	mailer       Mailer
}

func NewPasswordResetService(
	repo repositories.PasswordResetRepository,
	tenants repositories.TenantRepository,
	admins repositories.AdminRepository,
	tenantTokens repositories.TokenRepository,
	adminTokens repositories.TokenRepository,
	attempts repositories.LoginAttemptsRepository,
	mailer Mailer,
) *PasswordResetService {
	return &PasswordResetService{
		repo:         repo,
		tenants:      tenants,
		admins:       admins,
		tenantTokens: tenantTokens,
		adminTokens:  adminTokens,
		attempts:     attempts,
		mailer:       mailer,
	}
}

// RequestCode never reveals whether the account exists. Failures are logged
// and the caller still gets a success.
func (s *PasswordResetService) RequestCode(ctx context.Context, req dtos.PasswordResetRequest) {
	email := normalizeEmail(req.Email)
	logger := utils.Logger.WithFields(logrus.Fields{"account_type": req.AccountType})

	accountID, err := s.lookupAccount(ctx, req.AccountType, email)
	if err != nil {
		logger.WithError(err).Error("Password reset lookup failed")
		return
	}
	if accountID == uuid.Nil {
		logger.Debug("Password reset requested for unknown account")
		return
	}

	code := utils.RandomNumericString(constants.PasswordResetCodeLength)
	rec := &models.PasswordResetCode{
		ID:          uuid.New(),
		AccountType: req.AccountType,
		AccountID:   accountID,
		Email:       email,
		CodeHash:    utils.HashToken(code),
		ExpiresAt:   time.Now().Add(constants.PasswordResetCodeTTL),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		logger.WithError(err).Error("Failed to store password reset code")
		return
	}
	if err := s.mailer.Send(ctx, passwordResetEmail(email, code)); err != nil {
		logger.WithError(err).Error("Failed to send password reset email")
	}
}

// VerifyCode reports whether code is currently valid without consuming it.
func (s *PasswordResetService) VerifyCode(ctx context.Context, req dtos.PasswordResetVerifyRequest) (bool, error) {
	rec, err := s.checkCode(ctx, req.AccountType, normalizeEmail(req.Email), req.Code)
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) && appErr.Code == utils.ErrCodeValidation {
			return false, nil
		}
		return false, err
	}
	return rec != nil, nil
}

// ResetPassword consumes the code, stores the new hash and signs the account
// out everywhere.
func (s *PasswordResetService) ResetPassword(ctx context.Context, req dtos.PasswordResetConfirmRequest) error {
	if !utils.IsStrongPassword(req.NewPassword) {
		return errValidation("Password must be at least 8 characters and include upper-case, lower-case, digit and symbol")
	}

	rec, err := s.checkCode(ctx, req.AccountType, normalizeEmail(req.Email), req.Code)
	if err != nil {
		return err
	}

	if err := s.repo.MarkUsed(ctx, rec.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errValidation("Reset code already used")
		}
		return errInternal("Failed to consume reset code", err)
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return errInternal("Failed to hash password", err)
	}

	var tokens repositories.TokenRepository
	switch rec.AccountType {
	case models.AccountTenant:
		err = s.tenants.UpdatePassword(ctx, rec.AccountID, hash)
		tokens = s.tenantTokens
	case models.AccountAdmin:
		err = s.admins.UpdatePassword(ctx, rec.AccountID, hash)
		tokens = s.adminTokens
	default:
		return errValidation("Unknown account type")
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errNotFound("Account not found")
		}
		return errInternal("Failed to update password", err)
	}

	if err := tokens.RemoveAllRefreshTokensByUserID(ctx, rec.AccountID); err != nil {
		utils.Logger.WithError(err).Error("Failed to revoke refresh tokens after password reset")
	}
	if err := s.attempts.Reset(ctx, rec.AccountID); err != nil {
		utils.Logger.WithError(err).Warn("Failed to reset login attempts after password reset")
	}

	utils.Logger.WithFields(logrus.Fields{
		"account_type": rec.AccountType,
		"account_id":   rec.AccountID,
	}).Info("Password reset completed")
	return nil
}

// checkCode loads the newest code and validates it. A wrong guess burns one attempt.
func (s *PasswordResetService) checkCode(ctx context.Context, accountType models.AccountType, email, code string) (*models.PasswordResetCode, error) {
	rec, err := s.repo.GetLatest(ctx, accountType, email)
	if err != nil {
		return nil, errInternal("Failed to load reset code", err)
	}
	if rec == nil || rec.Used {
		return nil, errValidation("Invalid or expired reset code")
	}
	if time.Now().After(rec.ExpiresAt) {
		return nil, errValidation("Invalid or expired reset code")
	}
	if rec.Attempts >= constants.MaxPasswordResetAttempts {
		return nil, errValidation("Too many attempts, request a new code")
	}

	if subtle.ConstantTimeCompare([]byte(utils.HashToken(code)), []byte(rec.CodeHash)) != 1 {
		if incErr := s.repo.IncrementAttempts(ctx, rec.ID); incErr != nil {
			utils.Logger.WithError(incErr).Error("Failed to increment reset attempts")
		}
		return nil, errValidation("Invalid or expired reset code")
	}
	return rec, nil
}

func (s *PasswordResetService) lookupAccount(ctx context.Context, accountType models.AccountType, email string) (uuid.UUID, error) {
	switch accountType {
	case models.AccountTenant:
		t, err := s.tenants.GetByEmail(ctx, email)
		if err != nil || t == nil {
			return uuid.Nil, err
		}
		return t.ID, nil
	case models.AccountAdmin:
		a, err := s.admins.GetByEmail(ctx, email)
		if err != nil || a == nil {
			return uuid.Nil, err
		}
		return a.ID, nil
	}
	return uuid.Nil, nil
}
