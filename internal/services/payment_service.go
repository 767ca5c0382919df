package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
)

type PaymentService struct {
	repo repositories.PaymentRepository
}

func NewPaymentService(repo repositories.PaymentRepository) *PaymentService {
	return &PaymentService{repo: repo}
}

func (s *PaymentService) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Payment, error) {
	list, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, errInternal("Failed to list payments", err)
	}
	return list, nil
}

func (s *PaymentService) List(ctx context.Context, status *models.PaymentStatus) ([]*models.Payment, error) {
	if status != nil && !status.Valid() {
		return nil, errValidation("Unknown payment status")
	}
	list, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, errInternal("Failed to list payments", err)
	}
	return list, nil
}

// Get returns the payment; ownerID, when non-nil, restricts it to that tenant.
func (s *PaymentService) Get(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) (*models.Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errInternal("Failed to load payment", err)
	}
	if p == nil || (ownerID != nil && p.TenantID != *ownerID) {
		return nil, errNotFound("Payment not found")
	}
	return p, nil
}
