package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/metrics"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type BookingService struct {
	repo    repositories.BookingRepository
	metrics *metrics.Metrics
}

func NewBookingService(repo repositories.BookingRepository, m *metrics.Metrics) *BookingService {
	return &BookingService{repo: repo, metrics: m}
}

// ValidateStay enforces the minimum stay: check-out must be at least
// MinStayMonths calendar months after check-in.
func ValidateStay(checkIn, checkOut time.Time) error {
	earliest := checkIn.AddDate(0, constants.MinStayMonths, 0)
	if checkOut.Before(earliest) {
		return errValidation("Check-out must be at least 2 months after check-in")
	}
	return nil
}

// Create reserves the room and records an Unpaid booking in one transaction.
func (s *BookingService) Create(ctx context.Context, tenantID uuid.UUID, req dtos.CreateBookingRequest) (*models.Booking, error) {
	logger := utils.Logger.WithFields(logrus.Fields{
		"tenant_id":   tenantID,
		"room_number": req.RoomNumber,
	})

	checkIn, err := time.Parse(constants.DateLayout, req.CheckIn)
	if err != nil {
		s.metrics.Booking("invalid")
		return nil, errValidation("check_in must be YYYY-MM-DD")
	}
	checkOut, err := time.Parse(constants.DateLayout, req.CheckOut)
	if err != nil {
		s.metrics.Booking("invalid")
		return nil, errValidation("check_out must be YYYY-MM-DD")
	}
	if err := ValidateStay(checkIn, checkOut); err != nil {
		s.metrics.Booking("invalid")
		return nil, err
	}

	b := &models.Booking{
		ID:            uuid.New(),
		TenantID:      tenantID,
		RoomNumber:    req.RoomNumber,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		PaymentStatus: models.BookingUnpaid,
	}

	if err := s.repo.CreateWithReservation(ctx, b); err != nil {
		switch {
		case errors.Is(err, utils.ErrRoomUnavailable):
			s.metrics.Booking("conflict")
			logger.Info("Booking rejected, room not available")
			return nil, errConflict("Room is not available", err)
		case errors.Is(err, pgx.ErrNoRows):
			s.metrics.Booking("invalid")
			return nil, errNotFound("Room not found")
		case errors.Is(err, repositories.ErrTenantNotFound):
			s.metrics.Booking("invalid")
			return nil, errNotFound("Tenant not found")
		}
		s.metrics.Booking("error")
		return nil, errInternal("Failed to create booking", err)
	}

	s.metrics.Booking("created")
	logger.WithField("booking_id", b.ID).Info("Booking created, room pending payment")
	return b, nil
}

func (s *BookingService) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Booking, error) {
	list, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, errInternal("Failed to list bookings", err)
	}
	return list, nil
}

func (s *BookingService) ListAll(ctx context.Context) ([]*models.Booking, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, errInternal("Failed to list bookings", err)
	}
	return list, nil
}
