package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/metrics"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

const (
	EventCheckoutCompleted          = "checkout.session.completed"
	EventCheckoutAsyncSucceeded     = "checkout.session.async_payment_succeeded"
	EventCheckoutAsyncFailed        = "checkout.session.async_payment_failed"
	EventCheckoutExpired            = "checkout.session.expired"
	EventPaymentIntentPaymentFailed = "payment_intent.payment_failed"
)

// Webhook outcomes, as counted in hostel_webhook_events_total.
const (
	webhookProcessed = "processed"
	webhookDuplicate = "duplicate"
	webhookIgnored   = "ignored"
	webhookInvalid   = "invalid"
	webhookError     = "error"
)

type WebhookService struct {
	payments repositories.PaymentRepository
	tenants  repositories.TenantRepository
	mailer   Mailer
	metrics  *metrics.Metrics
}

func NewWebhookService(
	payments repositories.PaymentRepository,
	tenants repositories.TenantRepository,
	mailer Mailer,
	m *metrics.Metrics,
) *WebhookService {
	return &WebhookService{payments: payments, tenants: tenants, mailer: mailer, metrics: m}
}

// HandleStripeEvent reconciles one verified processor event. A nil return
// means the event can be acknowledged; a 5xx AppError asks the processor to
// redeliver.
func (s *WebhookService) HandleStripeEvent(ctx context.Context, event stripe.Event) error {
	logger := utils.Logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	})
	eventType := string(event.Type)

	switch eventType {
	case EventCheckoutCompleted, EventCheckoutAsyncSucceeded:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return s.invalid(eventType, "Could not parse checkout session", err)
		}
		// Delayed payment methods complete the session before the money
		// arrives; async_payment_succeeded follows.
		if eventType == EventCheckoutCompleted && sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			logger.Info("Checkout completed but not yet paid, waiting for async result")
			s.metrics.WebhookEvent(eventType, webhookIgnored)
			return nil
		}
		evt, err := paymentEventFromMetadata(event.ID, eventType, sess.Metadata)
		if err != nil {
			return s.invalid(eventType, "Missing or malformed checkout metadata", err)
		}
		return s.applySucceeded(ctx, logger, evt)

	case EventCheckoutAsyncFailed, EventCheckoutExpired:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return s.invalid(eventType, "Could not parse checkout session", err)
		}
		evt, err := paymentEventFromMetadata(event.ID, eventType, sess.Metadata)
		if err != nil {
			return s.invalid(eventType, "Missing or malformed checkout metadata", err)
		}
		return s.applyFailed(ctx, logger, evt)

	case EventPaymentIntentPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return s.invalid(eventType, "Could not parse payment intent", err)
		}
		evt, err := paymentEventFromMetadata(event.ID, eventType, pi.Metadata)
		if err != nil {
			return s.invalid(eventType, "Missing or malformed payment intent metadata", err)
		}
		return s.applyFailed(ctx, logger, evt)

	default:
		logger.Infof("Unhandled Stripe event type: %s", eventType)
		s.metrics.WebhookEvent(eventType, webhookIgnored)
		return nil
	}
}

func (s *WebhookService) applySucceeded(ctx context.Context, logger *logrus.Entry, evt models.PaymentEvent) error {
	logger = logger.WithFields(logrus.Fields{
		"payment_id":  evt.PaymentID,
		"tenant_id":   evt.TenantID,
		"room_number": evt.RoomNumber,
	})

	msg := fmt.Sprintf("Payment received. Room %d is now yours.", evt.RoomNumber)
	if err := s.payments.ApplySucceeded(ctx, evt, msg); err != nil {
		if errors.Is(err, utils.ErrDuplicateEvent) {
			logger.Info("Duplicate webhook delivery, skipping")
			s.metrics.WebhookEvent(evt.EventType, webhookDuplicate)
			return nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return s.invalid(evt.EventType, "Event references an unknown payment or room", err)
		}
		s.metrics.WebhookEvent(evt.EventType, webhookError)
		return errInternal("Failed to reconcile payment", err)
	}

	s.metrics.WebhookEvent(evt.EventType, webhookProcessed)
	logger.Info("Payment confirmed, room occupied")

	s.sendConfirmation(ctx, logger, evt)
	return nil
}

func (s *WebhookService) applyFailed(ctx context.Context, logger *logrus.Entry, evt models.PaymentEvent) error {
	logger = logger.WithField("payment_id", evt.PaymentID)

	if err := s.payments.ApplyFailed(ctx, evt); err != nil {
		if errors.Is(err, utils.ErrDuplicateEvent) {
			logger.Info("Duplicate webhook delivery, skipping")
			s.metrics.WebhookEvent(evt.EventType, webhookDuplicate)
			return nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return s.invalid(evt.EventType, "Event references an unknown payment or room", err)
		}
		s.metrics.WebhookEvent(evt.EventType, webhookError)
		return errInternal("Failed to record payment failure", err)
	}

	s.metrics.WebhookEvent(evt.EventType, webhookProcessed)
	logger.Info("Payment marked failed")
	return nil
}

// sendConfirmation runs after commit. Email trouble never fails the webhook.
func (s *WebhookService) sendConfirmation(ctx context.Context, logger *logrus.Entry, evt models.PaymentEvent) {
	tenant, err := s.tenants.GetByID(ctx, evt.TenantID)
	if err != nil || tenant == nil {
		logger.WithError(err).Warn("Tenant not loaded, skipping confirmation email")
		return
	}
	payment, err := s.payments.GetByID(ctx, evt.PaymentID)
	if err != nil || payment == nil {
		logger.WithError(err).Warn("Payment not loaded, skipping confirmation email")
		return
	}

	email := paymentConfirmationEmail(tenant.FullName(), tenant.Email, payment.Amount, payment.Currency, evt.RoomNumber)
	if err := s.mailer.Send(ctx, email); err != nil {
		logger.WithError(err).Warn("Failed to send payment confirmation email")
	}
}

func (s *WebhookService) invalid(eventType, msg string, err error) error {
	s.metrics.WebhookEvent(eventType, webhookInvalid)
	return &utils.AppError{
		StatusCode: http.StatusBadRequest,
		Code:       utils.ErrCodeInvalidPayload,
		Message:    msg,
		Err:        err,
	}
}

func paymentEventFromMetadata(eventID, eventType string, md map[string]string) (models.PaymentEvent, error) {
	evt := models.PaymentEvent{EventID: eventID, EventType: eventType}
	if eventID == "" {
		return evt, errors.New("event has no id")
	}

	paymentID, err := uuid.Parse(md[constants.MetadataPaymentID])
	if err != nil {
		return evt, fmt.Errorf("metadata %s: %w", constants.MetadataPaymentID, err)
	}
	tenantID, err := uuid.Parse(md[constants.MetadataTenantID])
	if err != nil {
		return evt, fmt.Errorf("metadata %s: %w", constants.MetadataTenantID, err)
	}
	roomNumber, err := strconv.Atoi(md[constants.MetadataRoomNumber])
	if err != nil || roomNumber <= 0 {
		return evt, fmt.Errorf("metadata %s: invalid room number %q", constants.MetadataRoomNumber, md[constants.MetadataRoomNumber])
	}
	if raw, ok := md[constants.MetadataBookingID]; ok && raw != "" {
		bookingID, err := uuid.Parse(raw)
		if err != nil {
			return evt, fmt.Errorf("metadata %s: %w", constants.MetadataBookingID, err)
		}
		evt.BookingID = &bookingID
	}

	evt.PaymentID = paymentID
	evt.TenantID = tenantID
	evt.RoomNumber = roomNumber
	return evt, nil
}
