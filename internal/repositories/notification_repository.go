package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// CreateForAll sends one message to every tenant and returns how many rows were written.
	CreateForAll(ctx context.Context, message string) (int64, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, tenantID uuid.UUID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type notificationRepo struct {
	db DB
}

func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO notifications (id, tenant_id, message, status, created_at)
        VALUES ($1,$2,$3,$4,NOW())
        RETURNING created_at
    `, n.ID, n.TenantID, n.Message, n.Status).Scan(&n.CreatedAt)
	if isForeignKeyViolation(err) {
		return ErrForeignKey
	}
	return err
}

func (r *notificationRepo) CreateForAll(ctx context.Context, message string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        INSERT INTO notifications (id, tenant_id, message, status, created_at)
        SELECT gen_random_uuid(), id, $1, 'Unread', NOW() FROM tenants
    `, message)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Notification, error) {
	rows, err := r.db.Query(ctx, baseSelectNotification()+" WHERE tenant_id=$1 ORDER BY created_at DESC", tenantID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanNotification)
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, tenantID uuid.UUID) (*models.Notification, error) {
	return scanNotification(r.db.QueryRow(ctx, `
        UPDATE notifications SET status='Read'
        WHERE id=$1 AND tenant_id=$2
        RETURNING id, tenant_id, message, status, created_at
    `, id, tenantID))
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE notifications SET status='Read' WHERE tenant_id=$1 AND status='Unread'
    `, tenantID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func baseSelectNotification() string {
	return `
        SELECT id, tenant_id, message, status, created_at
        FROM notifications
    `
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.TenantID, &n.Message, &n.Status, &n.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}
