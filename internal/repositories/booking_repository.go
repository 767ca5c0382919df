package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

var ErrTenantNotFound = errors.New("tenant_not_found")

type BookingRepository interface {
	// CreateWithReservation atomically flips the room from Available to
	// Pending and inserts the booking. b.RoomNumber selects the room;
	// b.RoomID is filled in on success.
	CreateWithReservation(ctx context.Context, b *models.Booking) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Booking, error)
	ListAll(ctx context.Context) ([]*models.Booking, error)
}

type bookingRepo struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) CreateWithReservation(ctx context.Context, b *models.Booking) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var tenantExists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tenants WHERE id=$1)`, b.TenantID).Scan(&tenantExists); err != nil {
			return err
		}
		if !tenantExists {
			return ErrTenantNotFound
		}

		// Conditional update instead of check-then-act: concurrent bookers
		// serialize on the row lock and only the first sees status='Available'.
		var roomID uuid.UUID
		err := tx.QueryRow(ctx, `
            UPDATE rooms SET status='Pending', updated_at=NOW(), row_version=row_version+1
            WHERE room_number=$1 AND status='Available'
            RETURNING id
        `, b.RoomNumber).Scan(&roomID)
		if err == pgx.ErrNoRows {
			var exists bool
			if qErr := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE room_number=$1)`, b.RoomNumber).Scan(&exists); qErr != nil {
				return qErr
			}
			if !exists {
				return pgx.ErrNoRows
			}
			return utils.ErrRoomUnavailable
		}
		if err != nil {
			return err
		}
		b.RoomID = roomID

		return tx.QueryRow(ctx, `
            INSERT INTO bookings (
                id, tenant_id, room_id, room_number, check_in, check_out,
                payment_status, created_at, updated_at
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
            RETURNING created_at, updated_at
        `,
			b.ID, b.TenantID, b.RoomID, b.RoomNumber, b.CheckIn, b.CheckOut, models.BookingUnpaid,
		).Scan(&b.CreatedAt, &b.UpdatedAt)
	})
}

func (r *bookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, baseSelectBooking()+" WHERE id=$1", id))
}

func (r *bookingRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Booking, error) {
	rows, err := r.db.Query(ctx, baseSelectBooking()+" WHERE tenant_id=$1 ORDER BY created_at DESC", tenantID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanBooking)
}

func (r *bookingRepo) ListAll(ctx context.Context) ([]*models.Booking, error) {
	rows, err := r.db.Query(ctx, baseSelectBooking()+" ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanBooking)
}

func baseSelectBooking() string {
	return `
        SELECT
            id, tenant_id, room_id, room_number, check_in, check_out,
            payment_status, released_at, created_at, updated_at
        FROM bookings
    `
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID,
		&b.TenantID,
		&b.RoomID,
		&b.RoomNumber,
		&b.CheckIn,
		&b.CheckOut,
		&b.PaymentStatus,
		&b.ReleasedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
