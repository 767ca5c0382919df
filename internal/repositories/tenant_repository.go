package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type TenantRepository interface {
	Create(ctx context.Context, t *models.Tenant) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByEmail(ctx context.Context, email string) (*models.Tenant, error)
	GetByPhoneNumber(ctx context.Context, phone string) (*models.Tenant, error)
	List(ctx context.Context) ([]*models.Tenant, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	UpdateIfVersion(ctx context.Context, t *models.Tenant, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Tenant) error) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error

	// HasActiveTenancy reports whether the tenant holds a paid booking on an occupied room.
	HasActiveTenancy(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tenantRepo struct {
	db    DB
	table *versionedTable[*models.Tenant]
}

func NewTenantRepository(db DB, lockAttempts int) TenantRepository {
	r := &tenantRepo{db: db}
	r.table = &versionedTable[*models.Tenant]{
		db:          db,
		selectByID:  baseSelectTenant() + " WHERE id=$1",
		scan:        scanTenant,
		write:       r.UpdateIfVersion,
		maxAttempts: lockAttempts,
	}
	return r
}

func (r *tenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO tenants (
            id, first_name, last_name, email, phone_number, password_hash,
            email_verified, created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,FALSE,NOW(),NOW(),1)
    `,
		t.ID, t.FirstName, t.LastName, t.Email, t.PhoneNumber, t.PasswordHash,
	)
	return mapTenantUniqueErr(err)
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return r.table.load(ctx, id)
}

func (r *tenantRepo) GetByEmail(ctx context.Context, email string) (*models.Tenant, error) {
	return scanTenant(r.db.QueryRow(ctx, baseSelectTenant()+" WHERE email=$1", email))
}

func (r *tenantRepo) GetByPhoneNumber(ctx context.Context, phone string) (*models.Tenant, error) {
	return scanTenant(r.db.QueryRow(ctx, baseSelectTenant()+" WHERE phone_number=$1", phone))
}

func (r *tenantRepo) List(ctx context.Context) ([]*models.Tenant, error) {
	rows, err := r.db.Query(ctx, baseSelectTenant()+" ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanTenant)
}

func (r *tenantRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM tenants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *tenantRepo) UpdateIfVersion(ctx context.Context, t *models.Tenant, expected int64) (pgconn.CommandTag, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE tenants SET
            first_name=$1, last_name=$2, phone_number=$3,
            updated_at=NOW(), row_version=row_version+1
        WHERE id=$4 AND row_version=$5
    `,
		t.FirstName, t.LastName, t.PhoneNumber, t.ID, expected,
	)
	return tag, mapTenantUniqueErr(err)
}

func (r *tenantRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Tenant) error) error {
	return r.table.update(ctx, id, mutate)
}

func (r *tenantRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE tenants SET password_hash=$1, updated_at=NOW(), row_version=row_version+1
        WHERE id=$2
    `, passwordHash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *tenantRepo) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
        UPDATE tenants SET email_verified=TRUE, updated_at=NOW(), row_version=row_version+1
        WHERE id=$1
    `, id)
	return err
}

func (r *tenantRepo) HasActiveTenancy(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM bookings b
            JOIN rooms rm ON rm.id = b.room_id
            WHERE b.tenant_id=$1 AND b.payment_status='Paid' AND rm.status='Occupied'
        )
    `, id).Scan(&exists)
	return exists, err
}

func (r *tenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tenants WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func mapTenantUniqueErr(err error) error {
	switch uniqueViolation(err) {
	case "":
		return err
	case "tenants_email_key":
		return utils.ErrEmailExists
	case "tenants_phone_number_key":
		return utils.ErrPhoneExists
	default:
		return err
	}
}

func baseSelectTenant() string {
	return `
        SELECT
            id, first_name, last_name, email, phone_number, password_hash,
            email_verified, created_at, updated_at, row_version
        FROM tenants
    `
}

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(
		&t.ID,
		&t.FirstName,
		&t.LastName,
		&t.Email,
		&t.PhoneNumber,
		&t.PasswordHash,
		&t.EmailVerified,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
