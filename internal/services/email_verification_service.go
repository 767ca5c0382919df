package services

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type EmailVerificationService struct {
	repo    repositories.EmailVerificationRepository
	tenants repositories.TenantRepository
	mailer  Mailer
}

func NewEmailVerificationService(
	repo repositories.EmailVerificationRepository,
	tenants repositories.TenantRepository,
	mailer Mailer,
) *EmailVerificationService {
	return &EmailVerificationService{repo: repo, tenants: tenants, mailer: mailer}
}

// SendCode stores a fresh code for the tenant's current email and mails it.
func (s *EmailVerificationService) SendCode(ctx context.Context, tenant *models.Tenant) error {
	code := utils.RandomNumericString(constants.VerificationCodeLength)
	expiresAt := time.Now().Add(constants.VerificationCodeTTL)

	if err := s.repo.CreateCode(ctx, tenant.ID, tenant.Email, code, expiresAt); err != nil {
		return errInternal("Failed to create verification code", err)
	}

	if err := s.mailer.Send(ctx, verificationCodeEmail(tenant.FullName(), tenant.Email, code)); err != nil {
		return &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Failed to send verification email",
			Err:        err,
		}
	}

	utils.Logger.WithFields(logrus.Fields{"tenant_id": tenant.ID}).Info("Verification code sent")
	return nil
}

// RequestCode re-sends a code to a tenant whose email is not yet verified.
func (s *EmailVerificationService) RequestCode(ctx context.Context, tenantID uuid.UUID) error {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return errInternal("Failed to load tenant", err)
	}
	if tenant == nil {
		return errNotFound("Tenant not found")
	}
	if tenant.EmailVerified {
		return errConflict("Email is already verified", nil)
	}
	return s.SendCode(ctx, tenant)
}

// Verify checks code against the newest code issued to the tenant. A wrong
// guess burns one attempt.
func (s *EmailVerificationService) Verify(ctx context.Context, tenantID uuid.UUID, code string) error {
	rec, err := s.repo.GetLatest(ctx, tenantID)
	if err != nil {
		return errInternal("Failed to load verification code", err)
	}
	if rec == nil || rec.Verified {
		return errValidation("No pending verification code")
	}
	if time.Now().After(rec.ExpiresAt) {
		return errValidation("Verification code expired")
	}
	if rec.Attempts >= constants.MaxVerificationAttempts {
		return errValidation("Too many attempts, request a new code")
	}

	if rec.VerificationCode != code {
		if incErr := s.repo.IncrementAttempts(ctx, rec.ID); incErr != nil {
			utils.Logger.WithError(incErr).Error("Failed to increment verification attempts")
		}
		return errValidation("Invalid verification code")
	}

	if err := s.repo.MarkVerified(ctx, rec.ID); err != nil {
		return errInternal("Failed to mark code verified", err)
	}
	if err := s.tenants.MarkEmailVerified(ctx, tenantID); err != nil {
		return errInternal("Failed to mark email verified", err)
	}
	return nil
}
