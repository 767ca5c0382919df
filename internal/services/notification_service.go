package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type NotificationService struct {
	repo repositories.NotificationRepository
}

func NewNotificationService(repo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify is fire-and-forget: a failed insert is logged and swallowed so the
// caller's own operation is never affected.
func (s *NotificationService) Notify(ctx context.Context, tenantID uuid.UUID, message string) {
	n := &models.Notification{
		ID:       uuid.New(),
		TenantID: tenantID,
		Message:  message,
		Status:   models.NotificationUnread,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"tenant_id": tenantID,
		}).Warn("Failed to create notification")
	}
}

func (s *NotificationService) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Notification, error) {
	list, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, errInternal("Failed to list notifications", err)
	}
	return list, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, tenantID, id uuid.UUID) (*models.Notification, error) {
	n, err := s.repo.MarkRead(ctx, id, tenantID)
	if err != nil {
		return nil, errInternal("Failed to update notification", err)
	}
	if n == nil {
		return nil, errNotFound("Notification not found")
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, tenantID)
	if err != nil {
		return 0, errInternal("Failed to update notifications", err)
	}
	return n, nil
}

// Send delivers an admin message to one tenant, or to every tenant when
// tenantID is nil. It returns the number of notifications written.
func (s *NotificationService) Send(ctx context.Context, tenantID *uuid.UUID, message string) (int64, error) {
	if tenantID == nil {
		n, err := s.repo.CreateForAll(ctx, message)
		if err != nil {
			return 0, errInternal("Failed to broadcast notification", err)
		}
		return n, nil
	}

	n := &models.Notification{
		ID:       uuid.New(),
		TenantID: *tenantID,
		Message:  message,
		Status:   models.NotificationUnread,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return 0, errNotFound("Tenant not found")
		}
		return 0, errInternal("Failed to create notification", err)
	}
	return 1, nil
}
