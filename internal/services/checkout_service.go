package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/config"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type CheckoutService struct {
	cfg      *config.Config
	bookings repositories.BookingRepository
	rooms    repositories.RoomRepository
	tenants  repositories.TenantRepository
	payments repositories.PaymentRepository
	gateway  PaymentGateway
}

func NewCheckoutService(
	cfg *config.Config,
	bookings repositories.BookingRepository,
	rooms repositories.RoomRepository,
	tenants repositories.TenantRepository,
	payments repositories.PaymentRepository,
	gateway PaymentGateway,
) *CheckoutService {
	return &CheckoutService{
		cfg:      cfg,
		bookings: bookings,
		rooms:    rooms,
		tenants:  tenants,
		payments: payments,
		gateway:  gateway,
	}
}

// CreateCheckout records a Pending payment for the booking and opens a
// hosted checkout session for the room price.
func (s *CheckoutService) CreateCheckout(ctx context.Context, tenantID uuid.UUID, bookingID uuid.UUID) (*dtos.CheckoutResponse, error) {
	logger := utils.Logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"booking_id": bookingID,
	})

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, errInternal("Failed to load booking", err)
	}
	if booking == nil || booking.TenantID != tenantID {
		return nil, errNotFound("Booking not found")
	}
	if booking.PaymentStatus != models.BookingUnpaid {
		return nil, errConflict("Booking is already paid", nil)
	}
	if booking.ReleasedAt != nil {
		return nil, errConflict("Booking was released; book the room again", nil)
	}

	room, err := s.rooms.GetByNumber(ctx, booking.RoomNumber)
	if err != nil {
		return nil, errInternal("Failed to load room", err)
	}
	if room == nil {
		return nil, errNotFound("Room not found")
	}
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, errInternal("Failed to load tenant", err)
	}
	if tenant == nil {
		return nil, errNotFound("Tenant not found")
	}

	currency := s.cfg.Currency
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	payment := &models.Payment{
		ID:         uuid.New(),
		TenantID:   tenantID,
		BookingID:  booking.ID,
		RoomNumber: booking.RoomNumber,
		Amount:     room.Price,
		Currency:   currency,
		Method:     constants.PaymentMethodCard,
		Status:     models.PaymentPending,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		switch {
		case errors.Is(err, utils.ErrCheckoutInProgress):
			return nil, errConflict("A checkout for this booking is already open", err)
		case errors.Is(err, utils.ErrBookingReleased):
			return nil, errConflict("Booking was released; book the room again", err)
		}
		return nil, errInternal("Failed to record payment", err)
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		ProductName:   fmt.Sprintf("Room %d (%s)", room.RoomNumber, room.RoomType),
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		CustomerEmail: tenant.Email,
		ReferenceID:   payment.ID.String(),
		SuccessURL:    s.cfg.AppUrl + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.cfg.AppUrl + "/payment/cancel",
		ExpiresAt:     time.Now().Add(constants.CheckoutSessionTTL),
		Metadata: map[string]string{
			constants.MetadataPaymentID:  payment.ID.String(),
			constants.MetadataTenantID:   tenantID.String(),
			constants.MetadataRoomNumber: strconv.Itoa(booking.RoomNumber),
			constants.MetadataBookingID:  booking.ID.String(),
		},
	})
	if err != nil {
		if mErr := s.payments.MarkFailed(ctx, payment.ID); mErr != nil {
			logger.WithError(mErr).Error("Failed to mark payment failed after gateway error")
		}
		code := http.StatusBadGateway
		if !errors.Is(err, utils.ErrExternalServiceFailure) {
			code = http.StatusInternalServerError
		}
		return nil, &utils.AppError{
			StatusCode: code,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Failed to create checkout session",
			Err:        err,
		}
	}

	if err := s.payments.SetCheckoutSession(ctx, payment.ID, sess.ID); err != nil {
		// The session is live; the webhook finds the payment by metadata.
		logger.WithError(err).Warn("Failed to store checkout session ID")
	}

	logger.WithField("payment_id", payment.ID).Info("Checkout session created")
	return &dtos.CheckoutResponse{PaymentID: payment.ID, SessionID: sess.ID, URL: sess.URL}, nil
}
