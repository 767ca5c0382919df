package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

var ErrRoomNumberExists = errors.New("room_number_exists")

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	GetByNumber(ctx context.Context, roomNumber int) (*models.Room, error)
	List(ctx context.Context, status *models.RoomStatus) ([]*models.Room, error)

	UpdateIfVersion(ctx context.Context, room *models.Room, expected int64) (pgconn.CommandTag, error)
	// UpdateWithRetry returns utils.ErrRowVersionConflict once it runs out
	// of attempts.
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Room) error) error
	SetPhotoURL(ctx context.Context, roomNumber int, url string) error

	// DeleteIfAvailable removes the room only while nobody holds it and no
	// payment was ever taken against it.
	DeleteIfAvailable(ctx context.Context, roomNumber int) error

	// ReleasePending moves a Pending room with no paid booking back to
	// Available and marks its unpaid bookings released. It returns
	// utils.ErrCheckoutInProgress while any of them has a Pending payment.
	ReleasePending(ctx context.Context, roomNumber int) error
}

type roomRepo struct {
	db    DB
	table *versionedTable[*models.Room]
}

// NewRoomRepository gives edits lockAttempts tries against concurrent
// writers; zero or less means constants.OptimisticLockAttempts.
func NewRoomRepository(db DB, lockAttempts int) RoomRepository {
	r := &roomRepo{db: db}
	r.table = &versionedTable[*models.Room]{
		db:          db,
		selectByID:  baseSelectRoom() + " WHERE id=$1",
		scan:        scanRoom,
		write:       r.UpdateIfVersion,
		maxAttempts: lockAttempts,
	}
	return r
}

func (r *roomRepo) Create(ctx context.Context, room *models.Room) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO rooms (
            id, room_number, room_type, bed_count, price, status, photo_url,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW(),1)
    `,
		room.ID, room.RoomNumber, room.RoomType, room.BedCount, room.Price, room.Status, room.PhotoURL,
	)
	if uniqueViolation(err) != "" {
		return ErrRoomNumberExists
	}
	return err
}

func (r *roomRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return r.table.load(ctx, id)
}

func (r *roomRepo) GetByNumber(ctx context.Context, roomNumber int) (*models.Room, error) {
	return scanRoom(r.db.QueryRow(ctx, baseSelectRoom()+" WHERE room_number=$1", roomNumber))
}

func (r *roomRepo) List(ctx context.Context, status *models.RoomStatus) ([]*models.Room, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		rows, err = r.db.Query(ctx, baseSelectRoom()+" WHERE status=$1 ORDER BY room_number", *status)
	} else {
		rows, err = r.db.Query(ctx, baseSelectRoom()+" ORDER BY room_number")
	}
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanRoom)
}

// UpdateIfVersion never touches status; only booking and payment flows move it.
func (r *roomRepo) UpdateIfVersion(ctx context.Context, room *models.Room, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE rooms SET
            room_type=$1, bed_count=$2, price=$3,
            updated_at=NOW(), row_version=row_version+1
        WHERE id=$4 AND row_version=$5
    `,
		room.RoomType, room.BedCount, room.Price, room.ID, expected,
	)
}

func (r *roomRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Room) error) error {
	return r.table.update(ctx, id, mutate)
}

func (r *roomRepo) SetPhotoURL(ctx context.Context, roomNumber int, url string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE rooms SET photo_url=$1, updated_at=NOW(), row_version=row_version+1
        WHERE room_number=$2
    `, url, roomNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *roomRepo) DeleteIfAvailable(ctx context.Context, roomNumber int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rooms WHERE room_number=$1 AND status='Available'`, roomNumber)
	if isForeignKeyViolation(err) {
		// Its bookings carry payment history.
		return utils.ErrRoomUnavailable
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrUnavailable(ctx, r.db, roomNumber)
	}
	return nil
}

func (r *roomRepo) ReleasePending(ctx context.Context, roomNumber int) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		room, err := scanRoom(tx.QueryRow(ctx, baseSelectRoom()+" WHERE room_number=$1 FOR UPDATE", roomNumber))
		if err != nil {
			return err
		}
		if room == nil {
			return pgx.ErrNoRows
		}
		if room.Status != models.RoomStatusPending {
			return utils.ErrRoomUnavailable
		}

		var paid bool
		if err := tx.QueryRow(ctx, `
            SELECT EXISTS (SELECT 1 FROM bookings WHERE room_id=$1 AND payment_status='Paid')
        `, room.ID).Scan(&paid); err != nil {
			return err
		}
		if paid {
			return utils.ErrRoomUnavailable
		}

		// Locks the rows a concurrent checkout locks before inserting.
		if _, err := tx.Exec(ctx, `
            SELECT 1 FROM bookings WHERE room_id=$1 AND released_at IS NULL FOR UPDATE
        `, room.ID); err != nil {
			return err
		}

		// An open checkout session can still be paid; the room must stay with
		// its payer until the processor expires or fails it.
		var open bool
		if err := tx.QueryRow(ctx, `
            SELECT EXISTS (
                SELECT 1 FROM payments p JOIN bookings b ON b.id = p.booking_id
                WHERE b.room_id=$1 AND b.released_at IS NULL AND p.payment_status='Pending'
            )
        `, room.ID).Scan(&open); err != nil {
			return err
		}
		if open {
			return utils.ErrCheckoutInProgress
		}

		if _, err := tx.Exec(ctx, `
            UPDATE bookings SET released_at=NOW(), updated_at=NOW()
            WHERE room_id=$1 AND payment_status='Unpaid' AND released_at IS NULL
        `, room.ID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
            UPDATE rooms SET status='Available', updated_at=NOW(), row_version=row_version+1
            WHERE id=$1
        `, room.ID)
		return err
	})
}

// missingOrUnavailable turns a zero-row conditional write into the right error.
func (r *roomRepo) missingOrUnavailable(ctx context.Context, db DB, roomNumber int) error {
	var exists bool
	if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE room_number=$1)`, roomNumber).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return utils.ErrRoomUnavailable
}

func baseSelectRoom() string {
	return `
        SELECT
            id, room_number, room_type, bed_count, price, status, photo_url,
            created_at, updated_at, row_version
        FROM rooms
    `
}

func scanRoom(row pgx.Row) (*models.Room, error) {
	var room models.Room
	err := row.Scan(
		&room.ID,
		&room.RoomNumber,
		&room.RoomType,
		&room.BedCount,
		&room.Price,
		&room.Status,
		&room.PhotoURL,
		&room.CreatedAt,
		&room.UpdatedAt,
		&room.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}
