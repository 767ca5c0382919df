package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type TenantService struct {
	repo  repositories.TenantRepository
	audit *AuditLogger
}

func NewTenantService(repo repositories.TenantRepository, audit *AuditLogger) *TenantService {
	return &TenantService{repo: repo, audit: audit}
}

func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errInternal("Failed to load tenant", err)
	}
	if t == nil {
		return nil, errNotFound("Tenant not found")
	}
	return t, nil
}

func (s *TenantService) List(ctx context.Context) ([]*models.Tenant, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, errInternal("Failed to list tenants", err)
	}
	return list, nil
}

// UpdateProfile applies the non-nil fields under optimistic locking.
func (s *TenantService) UpdateProfile(ctx context.Context, id uuid.UUID, req dtos.UpdateTenantRequest) (*models.Tenant, error) {
	if req.PhoneNumber != nil && !utils.IsE164(*req.PhoneNumber) {
		return nil, errValidation("Phone number must be in E.164 format")
	}

	var updated *models.Tenant
	err := s.repo.UpdateWithRetry(ctx, id, func(t *models.Tenant) error {
		if req.FirstName != nil {
			t.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			t.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.PhoneNumber != nil {
			t.PhoneNumber = *req.PhoneNumber
		}
		updated = t
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, errNotFound("Tenant not found")
		case errors.Is(err, utils.ErrPhoneExists):
			return nil, errConflict("Phone number already registered", err)
		case errors.Is(err, utils.ErrRowVersionConflict):
			return nil, errConflict("Profile is being edited elsewhere; try again", err)
		}
		return nil, errInternal("Failed to update tenant", err)
	}
	return updated, nil
}

// Delete refuses while the tenant still occupies a paid-for room.
func (s *TenantService) Delete(ctx context.Context, adminID, id uuid.UUID) error {
	active, err := s.repo.HasActiveTenancy(ctx, id)
	if err != nil {
		return errInternal("Failed to check tenancy", err)
	}
	if active {
		return errConflict("Tenant still occupies a room", nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errNotFound("Tenant not found")
		}
		return errInternal("Failed to delete tenant", err)
	}
	s.audit.logAudit(ctx, adminID, id, models.AuditDelete, models.TargetTenant, nil)
	return nil
}
