package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgconn"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

// MaintenanceService runs the scheduled housekeeping jobs.
type MaintenanceService struct {
	tenantTokens repositories.TokenRepository
	adminTokens  repositories.TokenRepository
	verification repositories.EmailVerificationRepository
	resets       repositories.PasswordResetRepository
	payments     repositories.PaymentRepository
	visitors     *VisitorService
	retryDelay   time.Duration
}

func NewMaintenanceService(
	tenantTokens repositories.TokenRepository,
	adminTokens repositories.TokenRepository,
	verification repositories.EmailVerificationRepository,
	resets repositories.PasswordResetRepository,
	payments repositories.PaymentRepository,
	visitors *VisitorService,
) *MaintenanceService {
	return &MaintenanceService{
		tenantTokens: tenantTokens,
		adminTokens:  adminTokens,
		verification: verification,
		resets:       resets,
		payments:     payments,
		visitors:     visitors,
		retryDelay:   constants.CleanupRetryDelay,
	}
}

// runWithRetry runs op and retries it once after a short pause when the
// error looks like a dropped connection.
func (s *MaintenanceService) runWithRetry(ctx context.Context, op func(context.Context) error) error {
	err := op(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || pgconn.SafeToRetry(err) ||
		strings.Contains(err.Error(), "connection was closed") {
		utils.Logger.WithError(err).Warn("Maintenance hit transient DB error; retrying once")
		select {
		case <-time.After(s.retryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
		return op(ctx)
	}
	return err
}

// CleanupDaily deletes expired tokens, spent codes and old webhook receipts.
// Every step runs even if an earlier one failed; the first error is returned.
func (s *MaintenanceService) CleanupDaily(ctx context.Context) error {
	logger := utils.Logger

	steps := []struct {
		name string
		op   func(context.Context) error
	}{
		{"tenant_refresh_tokens", s.tenantTokens.CleanupExpiredRefreshTokens},
		{"admin_refresh_tokens", s.adminTokens.CleanupExpiredRefreshTokens},
		{"email_verification_codes", s.verification.CleanupExpired},
		{"password_reset_codes", s.resets.CleanupExpired},
		{"processed_webhook_events", func(ctx context.Context) error {
			return s.payments.CleanupProcessedEvents(ctx, constants.ProcessedEventRetention)
		}},
	}

	var firstErr error
	for _, step := range steps {
		if err := s.runWithRetry(ctx, step.op); err != nil {
			logger.WithError(err).Errorf("Failed to clean up %s", step.name)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return firstErr
	}

	logger.Info("Daily cleanup completed successfully.")
	return nil
}

// SweepOverstays is the frequent visitor job.
func (s *MaintenanceService) SweepOverstays(ctx context.Context) error {
	return s.runWithRetry(ctx, func(ctx context.Context) error {
		_, err := s.visitors.NotifyOverstays(ctx)
		return err
	})
}
