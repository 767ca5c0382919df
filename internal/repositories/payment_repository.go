package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type PaymentRepository interface {
	// Create returns utils.ErrCheckoutInProgress when the booking already has
	// a Pending payment and utils.ErrBookingReleased when the room was
	// handed back.
	Create(ctx context.Context, p *models.Payment) error
	SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error
	MarkFailed(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Payment, error)
	List(ctx context.Context, status *models.PaymentStatus) ([]*models.Payment, error)

	// ApplySucceeded reconciles a confirmed payment in one transaction. It
	// returns utils.ErrDuplicateEvent, with nothing written, when the event
	// ID was already processed.
	ApplySucceeded(ctx context.Context, evt models.PaymentEvent, notification string) error

	// ApplyFailed marks the payment Failed. Room and bookings stay as they are.
	ApplyFailed(ctx context.Context, evt models.PaymentEvent) error

	CleanupProcessedEvents(ctx context.Context, olderThan time.Duration) error
}

type paymentRepo struct {
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		// Same row lock ReleasePending takes, so a release either sees this
		// payment or this insert sees the release.
		var bookingID uuid.UUID
		err := tx.QueryRow(ctx, `
            SELECT id FROM bookings WHERE id=$1 AND released_at IS NULL FOR UPDATE
        `, p.BookingID).Scan(&bookingID)
		if errors.Is(err, pgx.ErrNoRows) {
			return utils.ErrBookingReleased
		}
		if err != nil {
			return err
		}
		return insertPayment(ctx, tx, p)
	})
}

func insertPayment(ctx context.Context, tx pgx.Tx, p *models.Payment) error {
	err := tx.QueryRow(ctx, `
        INSERT INTO payments (
            id, tenant_id, booking_id, room_number, amount, currency, method,
            payment_status, checkout_session_id, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
        RETURNING created_at, updated_at
    `,
		p.ID, p.TenantID, p.BookingID, p.RoomNumber, p.Amount, p.Currency, p.Method,
		p.Status, p.CheckoutSessionID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if uniqueViolation(err) == "payments_one_pending_per_booking" {
		return utils.ErrCheckoutInProgress
	}
	return err
}

func (r *paymentRepo) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	_, err := r.db.Exec(ctx, `
        UPDATE payments SET checkout_session_id=$1, updated_at=NOW() WHERE id=$2
    `, sessionID, id)
	return err
}

func (r *paymentRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
        UPDATE payments SET payment_status='Failed', updated_at=NOW()
        WHERE id=$1 AND payment_status='Pending'
    `, id)
	return err
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return scanPayment(r.db.QueryRow(ctx, baseSelectPayment()+" WHERE id=$1", id))
}

func (r *paymentRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx, baseSelectPayment()+" WHERE tenant_id=$1 ORDER BY created_at DESC", tenantID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanPayment)
}

func (r *paymentRepo) List(ctx context.Context, status *models.PaymentStatus) ([]*models.Payment, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		rows, err = r.db.Query(ctx, baseSelectPayment()+" WHERE payment_status=$1 ORDER BY created_at DESC", *status)
	} else {
		rows, err = r.db.Query(ctx, baseSelectPayment()+" ORDER BY created_at DESC")
	}
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanPayment)
}

func (r *paymentRepo) ApplySucceeded(ctx context.Context, evt models.PaymentEvent, notification string) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := claimEvent(ctx, tx, evt); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
            UPDATE payments SET payment_status='Paid', updated_at=NOW() WHERE id=$1
        `, evt.PaymentID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		// Keyed on tenant, not booking: every booking this tenant still holds
		// flips to Paid. Released bookings are history and stay as they are.
		if _, err := tx.Exec(ctx, `
            UPDATE bookings SET payment_status='Paid', updated_at=NOW()
            WHERE tenant_id=$1 AND released_at IS NULL
        `, evt.TenantID); err != nil {
			return err
		}

		tag, err = tx.Exec(ctx, `
            UPDATE rooms SET status='Occupied', updated_at=NOW(), row_version=row_version+1
            WHERE room_number=$1
        `, evt.RoomNumber)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		_, err = tx.Exec(ctx, `
            INSERT INTO notifications (id, tenant_id, message, status, created_at)
            VALUES ($1,$2,$3,'Unread',NOW())
        `, uuid.New(), evt.TenantID, notification)
		return err
	})
}

func (r *paymentRepo) ApplyFailed(ctx context.Context, evt models.PaymentEvent) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := claimEvent(ctx, tx, evt); err != nil {
			return err
		}
		// A late failure never downgrades a payment that already settled.
		tag, err := tx.Exec(ctx, `
            UPDATE payments SET payment_status='Failed', updated_at=NOW()
            WHERE id=$1 AND payment_status<>'Paid'
        `, evt.PaymentID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payments WHERE id=$1)`, evt.PaymentID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return pgx.ErrNoRows
		}
		return nil
	})
}

func (r *paymentRepo) CleanupProcessedEvents(ctx context.Context, olderThan time.Duration) error {
	_, err := r.db.Exec(ctx, `
        DELETE FROM processed_webhook_events WHERE processed_at < $1
    `, time.Now().Add(-olderThan))
	return err
}

// claimEvent records the processor event ID inside the caller's transaction.
// If the transaction later rolls back the claim goes with it, so a retried
// delivery is processed again.
func claimEvent(ctx context.Context, tx pgx.Tx, evt models.PaymentEvent) error {
	tag, err := tx.Exec(ctx, `
        INSERT INTO processed_webhook_events (event_id, event_type, processed_at)
        VALUES ($1,$2,NOW())
        ON CONFLICT (event_id) DO NOTHING
    `, evt.EventID, evt.EventType)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrDuplicateEvent
	}
	return nil
}

func baseSelectPayment() string {
	return `
        SELECT
            id, tenant_id, booking_id, room_number, amount, currency, method,
            payment_status, checkout_session_id, created_at, updated_at
        FROM payments
    `
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.BookingID,
		&p.RoomNumber,
		&p.Amount,
		&p.Currency,
		&p.Method,
		&p.Status,
		&p.CheckoutSessionID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
