package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type IssueService struct {
	repo          repositories.IssueRepository
	notifications *NotificationService
	audit         *AuditLogger
}

func NewIssueService(
	repo repositories.IssueRepository,
	notifications *NotificationService,
	audit *AuditLogger,
) *IssueService {
	return &IssueService{repo: repo, notifications: notifications, audit: audit}
}

func (s *IssueService) Create(ctx context.Context, tenantID uuid.UUID, req dtos.CreateIssueRequest) (*models.Issue, error) {
	issue := &models.Issue{
		ID:          uuid.New(),
		TenantID:    tenantID,
		RoomNumber:  req.RoomNumber,
		Category:    req.Category,
		Priority:    req.Priority,
		Description: strings.TrimSpace(req.Description),
		Status:      models.IssueOpen,
	}
	if err := s.repo.Create(ctx, issue); err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return nil, errNotFound("Tenant not found")
		}
		return nil, errInternal("Failed to create issue", err)
	}
	return issue, nil
}

func (s *IssueService) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Issue, error) {
	list, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, errInternal("Failed to list issues", err)
	}
	return list, nil
}

func (s *IssueService) List(ctx context.Context, status *models.IssueStatus) ([]*models.Issue, error) {
	if status != nil && !status.Valid() {
		return nil, errValidation("Unknown issue status")
	}
	list, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, errInternal("Failed to list issues", err)
	}
	return list, nil
}

// Assign hands an OPEN issue to a free technician of the matching specialty.
func (s *IssueService) Assign(ctx context.Context, adminID, issueID, technicianID uuid.UUID) (*models.Issue, error) {
	issue, err := s.repo.Assign(ctx, issueID, technicianID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, errNotFound("Issue not found")
		case errors.Is(err, repositories.ErrTechnicianNotFound):
			return nil, errNotFound("Technician not found")
		case errors.Is(err, repositories.ErrInvalidTransition):
			return nil, errConflict("Only OPEN issues can be assigned", err)
		case errors.Is(err, repositories.ErrSpecialtyMismatch):
			return nil, errConflict("Technician specialty does not match the issue category", err)
		case errors.Is(err, repositories.ErrTechnicianBusy):
			return nil, errConflict("Technician is already assigned", err)
		}
		return nil, errInternal("Failed to assign issue", err)
	}

	utils.Logger.WithFields(logrus.Fields{
		"issue_id":      issue.ID,
		"technician_id": technicianID,
	}).Info("Issue assigned")
	s.notifications.Notify(ctx, issue.TenantID, fmt.Sprintf("A %s technician has been assigned to your issue.", strings.ToLower(string(issue.Category))))
	s.audit.logAudit(ctx, adminID, issue.ID, models.AuditUpdate, models.TargetIssue, map[string]string{
		"status":        string(models.IssueAssigned),
		"technician_id": technicianID.String(),
	})
	return issue, nil
}

func (s *IssueService) Resolve(ctx context.Context, adminID, issueID uuid.UUID) (*models.Issue, error) {
	issue, err := s.repo.Resolve(ctx, issueID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, errNotFound("Issue not found")
		case errors.Is(err, repositories.ErrInvalidTransition):
			return nil, errConflict("Only ASSIGNED issues can be resolved", err)
		}
		return nil, errInternal("Failed to resolve issue", err)
	}

	s.notifications.Notify(ctx, issue.TenantID, "Your maintenance issue has been resolved.")
	s.audit.logAudit(ctx, adminID, issue.ID, models.AuditUpdate, models.TargetIssue, map[string]string{
		"status": string(models.IssueResolved),
	})
	return issue, nil
}
