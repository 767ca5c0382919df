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
)

type TechnicianService struct {
	repo  repositories.TechnicianRepository
	audit *AuditLogger
}

func NewTechnicianService(repo repositories.TechnicianRepository, audit *AuditLogger) *TechnicianService {
	return &TechnicianService{repo: repo, audit: audit}
}

func (s *TechnicianService) Create(ctx context.Context, adminID uuid.UUID, req dtos.CreateTechnicianRequest) (*models.Technician, error) {
	t := &models.Technician{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(req.Name),
		Email:            normalizeEmail(req.Email),
		PhoneNumber:      req.PhoneNumber,
		Specialty:        req.Specialty,
		AssignmentStatus: models.TechnicianUnassigned,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, errInternal("Failed to create technician", err)
	}
	s.audit.logAudit(ctx, adminID, t.ID, models.AuditCreate, models.TargetTechnician, req)
	return t, nil
}

func (s *TechnicianService) List(ctx context.Context, filter repositories.TechnicianFilter) ([]*models.Technician, error) {
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errInternal("Failed to list technicians", err)
	}
	return list, nil
}

func (s *TechnicianService) Delete(ctx context.Context, adminID, id uuid.UUID) error {
	if err := s.repo.DeleteIfUnassigned(ctx, id); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return errNotFound("Technician not found")
		case errors.Is(err, repositories.ErrTechnicianBusy):
			return errConflict("Technician is assigned to an open issue", err)
		}
		return errInternal("Failed to delete technician", err)
	}
	s.audit.logAudit(ctx, adminID, id, models.AuditDelete, models.TargetTechnician, nil)
	return nil
}
