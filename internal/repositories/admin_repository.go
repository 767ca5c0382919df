package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type AdminRepository interface {
	Create(ctx context.Context, a *models.Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type adminRepo struct {
	db DB
}

func NewAdminRepository(db DB) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) Create(ctx context.Context, a *models.Admin) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO admins (id, email, full_name, password_hash, created_at, updated_at)
        VALUES ($1,$2,$3,$4,NOW(),NOW())
    `, a.ID, a.Email, a.FullName, a.PasswordHash)
	if uniqueViolation(err) != "" {
		return utils.ErrEmailExists
	}
	return err
}

func (r *adminRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	return scanAdmin(r.db.QueryRow(ctx, baseSelectAdmin()+" WHERE id=$1", id))
}

func (r *adminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return scanAdmin(r.db.QueryRow(ctx, baseSelectAdmin()+" WHERE email=$1", email))
}

func (r *adminRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE admins SET password_hash=$1, updated_at=NOW() WHERE id=$2`, passwordHash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func baseSelectAdmin() string {
	return `SELECT id, email, full_name, password_hash, created_at, updated_at FROM admins`
}

func scanAdmin(row pgx.Row) (*models.Admin, error) {
	var a models.Admin
	err := row.Scan(&a.ID, &a.Email, &a.FullName, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
