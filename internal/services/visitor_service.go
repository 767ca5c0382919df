package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type VisitorService struct {
	repo          repositories.VisitorRepository
	notifications *NotificationService
	now           func() time.Time
}

func NewVisitorService(repo repositories.VisitorRepository, notifications *NotificationService) *VisitorService {
	return &VisitorService{repo: repo, notifications: notifications, now: time.Now}
}

// SignIn registers a visitor against the host tenant.
func (s *VisitorService) SignIn(ctx context.Context, tenantID uuid.UUID, req dtos.VisitorSignInRequest) (*models.Visitor, error) {
	if req.PlannedExitTime.Before(req.EntryTime) {
		return nil, errValidation("planned_exit_time cannot be before entry_time")
	}
	if !utils.IsE164(req.PhoneNumber) {
		return nil, errValidation("Phone number must be in E.164 format")
	}

	v := &models.Visitor{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Name:            strings.TrimSpace(req.Name),
		PhoneNumber:     req.PhoneNumber,
		RoomNumber:      req.RoomNumber,
		IsActive:        true,
		EntryTime:       req.EntryTime.UTC(),
		PlannedExitTime: req.PlannedExitTime.UTC(),
	}
	if err := s.repo.Create(ctx, v); err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return nil, errNotFound("Tenant not found")
		}
		return nil, errInternal("Failed to sign in visitor", err)
	}
	return v, nil
}

// SignOut closes an active visit. The exit must fall inside the planned window.
func (s *VisitorService) SignOut(ctx context.Context, tenantID, visitorID uuid.UUID, req dtos.VisitorSignOutRequest) (*models.Visitor, error) {
	v, err := s.repo.GetByID(ctx, visitorID)
	if err != nil {
		return nil, errInternal("Failed to load visitor", err)
	}
	if v == nil || v.TenantID != tenantID {
		return nil, errNotFound("Visitor not found")
	}
	if !v.IsActive {
		return nil, errConflict("Visitor has already signed out", nil)
	}

	exit := req.ActualExitTime
	if exit.Before(v.EntryTime) || exit.After(v.PlannedExitTime) {
		return nil, errValidation("actual_exit_time must be between entry_time and planned_exit_time")
	}

	updated, err := s.repo.SignOut(ctx, visitorID, exit.UTC())
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidTransition) {
			return nil, errConflict("Visitor has already signed out", err)
		}
		return nil, errInternal("Failed to sign out visitor", err)
	}
	return updated, nil
}

func (s *VisitorService) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Visitor, error) {
	list, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, errInternal("Failed to list visitors", err)
	}
	return list, nil
}

func (s *VisitorService) List(ctx context.Context, active *bool) ([]*models.Visitor, error) {
	list, err := s.repo.List(ctx, active)
	if err != nil {
		return nil, errInternal("Failed to list visitors", err)
	}
	return list, nil
}

// NotifyOverstays tells each host once about a visitor still signed in past
// the planned exit. It returns how many hosts were notified.
func (s *VisitorService) NotifyOverstays(ctx context.Context) (int, error) {
	overdue, err := s.repo.ListOverstayed(ctx, s.now())
	if err != nil {
		return 0, err
	}

	notified := 0
	for _, v := range overdue {
		claimed, err := s.repo.MarkOverstayNotified(ctx, v.ID)
		if err != nil {
			utils.Logger.WithError(err).WithField("visitor_id", v.ID).Error("Failed to flag overstaying visitor")
			continue
		}
		if !claimed {
			continue
		}
		s.notifications.Notify(ctx, v.TenantID, fmt.Sprintf(
			"Your visitor %s was due to leave at %s and has not signed out.",
			v.Name, v.PlannedExitTime.UTC().Format("15:04 MST"),
		))
		notified++
	}

	if notified > 0 {
		utils.Logger.WithFields(logrus.Fields{"count": notified}).Info("Overstay notifications sent")
	}
	return notified, nil
}
