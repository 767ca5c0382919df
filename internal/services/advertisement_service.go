package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
)

// ImageUpload is one image part lifted out of a multipart request.
type ImageUpload struct {
	ContentType string
	Body        io.Reader
}

type AdvertisementService struct {
	repo          repositories.AdvertisementRepository
	store         ObjectStore
	notifications *NotificationService
	audit         *AuditLogger
}

func NewAdvertisementService(
	repo repositories.AdvertisementRepository,
	store ObjectStore,
	notifications *NotificationService,
	audit *AuditLogger,
) *AdvertisementService {
	return &AdvertisementService{repo: repo, store: store, notifications: notifications, audit: audit}
}

// Create stores a Pending ad, uploading image first when one is attached.
func (s *AdvertisementService) Create(
	ctx context.Context,
	tenantID uuid.UUID,
	req dtos.CreateAdvertisementRequest,
	image *ImageUpload,
) (*models.Advertisement, error) {
	ad := &models.Advertisement{
		ID:             uuid.New(),
		TenantID:       tenantID,
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		Price:          req.Price,
		Contact:        strings.TrimSpace(req.Contact),
		ApprovalStatus: models.AdPending,
	}

	if image != nil {
		if _, ok := ImageExtension(image.ContentType); !ok {
			return nil, errValidation("Image must be a JPEG, PNG, WebP or GIF")
		}
		url, err := s.store.Upload(ctx, NewImageObjectName("advertisements/"+ad.ID.String(), image.ContentType), image.ContentType, image.Body)
		if err != nil {
			return nil, errStorage(err)
		}
		ad.ImageURL = &url
	}

	if err := s.repo.Create(ctx, ad); err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return nil, errNotFound("Tenant not found")
		}
		return nil, errInternal("Failed to create advertisement", err)
	}
	return ad, nil
}

func (s *AdvertisementService) ListApproved(ctx context.Context) ([]*models.Advertisement, error) {
	return s.listByStatus(ctx, models.AdApproved)
}

func (s *AdvertisementService) ListPending(ctx context.Context) ([]*models.Advertisement, error) {
	return s.listByStatus(ctx, models.AdPending)
}

func (s *AdvertisementService) listByStatus(ctx context.Context, status models.ApprovalStatus) ([]*models.Advertisement, error) {
	list, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, errInternal("Failed to list advertisements", err)
	}
	return list, nil
}

func (s *AdvertisementService) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Advertisement, error) {
	list, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, errInternal("Failed to list advertisements", err)
	}
	return list, nil
}

func (s *AdvertisementService) Approve(ctx context.Context, adminID, id uuid.UUID) (*models.Advertisement, error) {
	return s.review(ctx, adminID, id, models.AdApproved)
}

func (s *AdvertisementService) Reject(ctx context.Context, adminID, id uuid.UUID) (*models.Advertisement, error) {
	return s.review(ctx, adminID, id, models.AdRejected)
}

// review moves a Pending ad to its final state. Decisions are one-shot.
func (s *AdvertisementService) review(ctx context.Context, adminID, id uuid.UUID, to models.ApprovalStatus) (*models.Advertisement, error) {
	ad, err := s.repo.Transition(ctx, id, models.AdPending, to)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, errNotFound("Advertisement not found")
		case errors.Is(err, repositories.ErrInvalidTransition):
			return nil, errConflict("Advertisement has already been reviewed", err)
		}
		return nil, errInternal("Failed to update advertisement", err)
	}

	s.notifications.Notify(ctx, ad.TenantID, fmt.Sprintf("Your advertisement %q was %s.", ad.Title, strings.ToLower(string(to))))
	s.audit.logAudit(ctx, adminID, ad.ID, models.AuditUpdate, models.TargetAdvertisement, map[string]string{
		"approval_status": string(to),
	})
	return ad, nil
}

func (s *AdvertisementService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.DeleteByOwner(ctx, id, tenantID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errNotFound("Advertisement not found")
		}
		return errInternal("Failed to delete advertisement", err)
	}
	return nil
}
