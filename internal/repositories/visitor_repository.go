package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
)

type VisitorRepository interface {
	Create(ctx context.Context, v *models.Visitor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Visitor, error)
	List(ctx context.Context, active *bool) ([]*models.Visitor, error)

	// SignOut records the exit only while the visitor is still active and
	// returns ErrInvalidTransition otherwise.
	SignOut(ctx context.Context, id uuid.UUID, exit time.Time) (*models.Visitor, error)

	ListOverstayed(ctx context.Context, now time.Time) ([]*models.Visitor, error)
	MarkOverstayNotified(ctx context.Context, id uuid.UUID) (bool, error)
}

type visitorRepo struct {
	db DB
}

func NewVisitorRepository(db DB) VisitorRepository {
	return &visitorRepo{db: db}
}

func (r *visitorRepo) Create(ctx context.Context, v *models.Visitor) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO visitors (
            id, tenant_id, name, phone_number, room_number, is_active,
            entry_time, planned_exit_time, overstay_notified, created_at
        ) VALUES ($1,$2,$3,$4,$5,TRUE,$6,$7,FALSE,NOW())
        RETURNING created_at
    `,
		v.ID, v.TenantID, v.Name, v.PhoneNumber, v.RoomNumber, v.EntryTime, v.PlannedExitTime,
	).Scan(&v.CreatedAt)
	if isForeignKeyViolation(err) {
		return ErrForeignKey
	}
	return err
}

func (r *visitorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error) {
	return scanVisitor(r.db.QueryRow(ctx, baseSelectVisitor()+" WHERE id=$1", id))
}

func (r *visitorRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Visitor, error) {
	rows, err := r.db.Query(ctx, baseSelectVisitor()+" WHERE tenant_id=$1 ORDER BY entry_time DESC", tenantID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanVisitor)
}

func (r *visitorRepo) List(ctx context.Context, active *bool) ([]*models.Visitor, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if active != nil {
		rows, err = r.db.Query(ctx, baseSelectVisitor()+" WHERE is_active=$1 ORDER BY entry_time DESC", *active)
	} else {
		rows, err = r.db.Query(ctx, baseSelectVisitor()+" ORDER BY entry_time DESC")
	}
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanVisitor)
}

func (r *visitorRepo) SignOut(ctx context.Context, id uuid.UUID, exit time.Time) (*models.Visitor, error) {
	v, err := scanVisitor(r.db.QueryRow(ctx, `
        UPDATE visitors SET is_active=FALSE, actual_exit_time=$1
        WHERE id=$2 AND is_active=TRUE
        RETURNING `+visitorColumns, exit, id))
	if err != nil || v != nil {
		return v, err
	}
	return nil, ErrInvalidTransition
}

func (r *visitorRepo) ListOverstayed(ctx context.Context, now time.Time) ([]*models.Visitor, error) {
	rows, err := r.db.Query(ctx, baseSelectVisitor()+`
        WHERE is_active=TRUE AND overstay_notified=FALSE AND planned_exit_time < $1
        ORDER BY planned_exit_time
    `, now)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanVisitor)
}

func (r *visitorRepo) MarkOverstayNotified(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE visitors SET overstay_notified=TRUE
        WHERE id=$1 AND overstay_notified=FALSE
    `, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const visitorColumns = `
            id, tenant_id, name, phone_number, room_number, is_active, entry_time,
            planned_exit_time, actual_exit_time, overstay_notified, created_at`

func baseSelectVisitor() string {
	return "SELECT" + visitorColumns + "\n        FROM visitors\n"
}

func scanVisitor(row pgx.Row) (*models.Visitor, error) {
	var v models.Visitor
	err := row.Scan(
		&v.ID,
		&v.TenantID,
		&v.Name,
		&v.PhoneNumber,
		&v.RoomNumber,
		&v.IsActive,
		&v.EntryTime,
		&v.PlannedExitTime,
		&v.ActualExitTime,
		&v.OverstayNotified,
		&v.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}
