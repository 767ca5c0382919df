package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
)

type AdvertisementRepository interface {
	Create(ctx context.Context, ad *models.Advertisement) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Advertisement, error)
	ListByStatus(ctx context.Context, status models.ApprovalStatus) ([]*models.Advertisement, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Advertisement, error)

	// Transition moves an ad out of `from`. It returns ErrInvalidTransition
	// when the ad exists but is no longer in `from`.
	Transition(ctx context.Context, id uuid.UUID, from, to models.ApprovalStatus) (*models.Advertisement, error)

	DeleteByOwner(ctx context.Context, id, tenantID uuid.UUID) error
}

type advertisementRepo struct {
	db DB
}

func NewAdvertisementRepository(db DB) AdvertisementRepository {
	return &advertisementRepo{db: db}
}

func (r *advertisementRepo) Create(ctx context.Context, ad *models.Advertisement) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO advertisements (
            id, tenant_id, title, description, price, contact, image_url,
            approval_status, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
        RETURNING created_at, updated_at
    `,
		ad.ID, ad.TenantID, ad.Title, ad.Description, ad.Price, ad.Contact, ad.ImageURL, ad.ApprovalStatus,
	).Scan(&ad.CreatedAt, &ad.UpdatedAt)
	if isForeignKeyViolation(err) {
		return ErrForeignKey
	}
	return err
}

func (r *advertisementRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Advertisement, error) {
	return scanAdvertisement(r.db.QueryRow(ctx, baseSelectAdvertisement()+" WHERE id=$1", id))
}

func (r *advertisementRepo) ListByStatus(ctx context.Context, status models.ApprovalStatus) ([]*models.Advertisement, error) {
	rows, err := r.db.Query(ctx, baseSelectAdvertisement()+" WHERE approval_status=$1 ORDER BY created_at DESC", status)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanAdvertisement)
}

func (r *advertisementRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Advertisement, error) {
	rows, err := r.db.Query(ctx, baseSelectAdvertisement()+" WHERE tenant_id=$1 ORDER BY created_at DESC", tenantID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanAdvertisement)
}

func (r *advertisementRepo) Transition(
	ctx context.Context,
	id uuid.UUID,
	from, to models.ApprovalStatus,
) (*models.Advertisement, error) {
	ad, err := scanAdvertisement(r.db.QueryRow(ctx, `
        UPDATE advertisements SET approval_status=$1, updated_at=NOW()
        WHERE id=$2 AND approval_status=$3
        RETURNING `+advertisementColumns, to, id, from))
	if err != nil {
		return nil, err
	}
	if ad != nil {
		return ad, nil
	}

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, pgx.ErrNoRows
	}
	return nil, ErrInvalidTransition
}

func (r *advertisementRepo) DeleteByOwner(ctx context.Context, id, tenantID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM advertisements WHERE id=$1 AND tenant_id=$2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const advertisementColumns = `
            id, tenant_id, title, description, price, contact, image_url,
            approval_status, created_at, updated_at`

func baseSelectAdvertisement() string {
	return "SELECT" + advertisementColumns + "\n        FROM advertisements\n"
}

func scanAdvertisement(row pgx.Row) (*models.Advertisement, error) {
	var a models.Advertisement
	err := row.Scan(
		&a.ID,
		&a.TenantID,
		&a.Title,
		&a.Description,
		&a.Price,
		&a.Contact,
		&a.ImageURL,
		&a.ApprovalStatus,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
