package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type RoomService struct {
	repo  repositories.RoomRepository
	store ObjectStore
	audit *AuditLogger
}

func NewRoomService(repo repositories.RoomRepository, store ObjectStore, audit *AuditLogger) *RoomService {
	return &RoomService{repo: repo, store: store, audit: audit}
}

func (s *RoomService) List(ctx context.Context, status *models.RoomStatus) ([]*models.Room, error) {
	if status != nil && !status.Valid() {
		return nil, errValidation("Unknown room status")
	}
	rooms, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, errInternal("Failed to list rooms", err)
	}
	return rooms, nil
}

func (s *RoomService) Get(ctx context.Context, roomNumber int) (*models.Room, error) {
	room, err := s.repo.GetByNumber(ctx, roomNumber)
	if err != nil {
		return nil, errInternal("Failed to load room", err)
	}
	if room == nil {
		return nil, errNotFound("Room not found")
	}
	return room, nil
}

func (s *RoomService) Create(ctx context.Context, adminID uuid.UUID, req dtos.CreateRoomRequest) (*models.Room, error) {
	room := &models.Room{
		ID:         uuid.New(),
		RoomNumber: req.RoomNumber,
		RoomType:   strings.TrimSpace(req.RoomType),
		BedCount:   req.BedCount,
		Price:      req.Price,
		Status:     models.RoomStatusAvailable,
	}
	room.RowVersion = 1

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, repositories.ErrRoomNumberExists) {
			return nil, errConflict(fmt.Sprintf("Room %d already exists", req.RoomNumber), err)
		}
		return nil, errInternal("Failed to create room", err)
	}

	s.audit.logAudit(ctx, adminID, room.ID, models.AuditCreate, models.TargetRoom, req)
	return room, nil
}

func (s *RoomService) Update(ctx context.Context, adminID uuid.UUID, roomNumber int, req dtos.UpdateRoomRequest) (*models.Room, error) {
	current, err := s.Get(ctx, roomNumber)
	if err != nil {
		return nil, err
	}

	var updated *models.Room
	err = s.repo.UpdateWithRetry(ctx, current.ID, func(r *models.Room) error {
		if req.RoomType != nil {
			r.RoomType = strings.TrimSpace(*req.RoomType)
		}
		if req.BedCount != nil {
			r.BedCount = *req.BedCount
		}
		if req.Price != nil {
			r.Price = *req.Price
		}
		updated = r
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, errNotFound("Room not found")
		case errors.Is(err, utils.ErrRowVersionConflict):
			return nil, errConflict("Room is being edited elsewhere; try again", err)
		}
		return nil, errInternal("Failed to update room", err)
	}

	s.audit.logAudit(ctx, adminID, updated.ID, models.AuditUpdate, models.TargetRoom, req)
	return updated, nil
}

func (s *RoomService) UploadPhoto(ctx context.Context, adminID uuid.UUID, roomNumber int, contentType string, body io.Reader) (*models.Room, error) {
	room, err := s.Get(ctx, roomNumber)
	if err != nil {
		return nil, err
	}
	if _, ok := ImageExtension(contentType); !ok {
		return nil, errValidation("Photo must be a JPEG, PNG, WebP or GIF image")
	}

	url, err := s.store.Upload(ctx, NewImageObjectName(fmt.Sprintf("rooms/%d", roomNumber), contentType), contentType, body)
	if err != nil {
		return nil, errStorage(err)
	}
	if err := s.repo.SetPhotoURL(ctx, roomNumber, url); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errNotFound("Room not found")
		}
		return nil, errInternal("Failed to save photo URL", err)
	}

	room.PhotoURL = &url
	s.audit.logAudit(ctx, adminID, room.ID, models.AuditUpdate, models.TargetRoom, map[string]string{"photo_url": url})
	return room, nil
}

// Delete only removes rooms nobody is holding.
func (s *RoomService) Delete(ctx context.Context, adminID uuid.UUID, roomNumber int) error {
	room, err := s.Get(ctx, roomNumber)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteIfAvailable(ctx, roomNumber); err != nil {
		return mapRoomWriteErr(err, "Failed to delete room")
	}
	s.audit.logAudit(ctx, adminID, room.ID, models.AuditDelete, models.TargetRoom, map[string]int{"room_number": roomNumber})
	return nil
}

// Release puts a Pending room whose checkout was abandoned back on the market.
func (s *RoomService) Release(ctx context.Context, adminID uuid.UUID, roomNumber int) (*models.Room, error) {
	if err := s.repo.ReleasePending(ctx, roomNumber); err != nil {
		return nil, mapRoomWriteErr(err, "Failed to release room")
	}
	room, err := s.Get(ctx, roomNumber)
	if err != nil {
		return nil, err
	}

	utils.Logger.WithFields(logrus.Fields{
		"room_number": roomNumber,
		"admin_id":    adminID,
	}).Info("Pending room released")
	s.audit.logAudit(ctx, adminID, room.ID, models.AuditUpdate, models.TargetRoom, map[string]string{"status": string(models.RoomStatusAvailable)})
	return room, nil
}

func mapRoomWriteErr(err error, msg string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errNotFound("Room not found")
	case errors.Is(err, utils.ErrRoomUnavailable):
		return errConflict("Room is not in a state that allows this", err)
	case errors.Is(err, utils.ErrCheckoutInProgress):
		return errConflict("Room has an open checkout; wait for it to expire or fail", err)
	}
	return errInternal(msg, err)
}

func errStorage(err error) *utils.AppError {
	if errors.Is(err, utils.ErrStorageNotConfigured) {
		return &utils.AppError{
			StatusCode: http.StatusServiceUnavailable,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Image storage is not configured",
			Err:        err,
		}
	}
	return &utils.AppError{
		StatusCode: http.StatusBadGateway,
		Code:       utils.ErrCodeExternalServiceFailure,
		Message:    "Failed to upload image",
		Err:        err,
	}
}
