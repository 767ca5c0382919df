package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
)

type EmailVerificationRepository interface {
	CreateCode(ctx context.Context, tenantID uuid.UUID, email, code string, expiresAt time.Time) error
	// GetLatest returns the newest code issued to the tenant, or nil.
	GetLatest(ctx context.Context, tenantID uuid.UUID) (*models.EmailVerificationCode, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	CleanupExpired(ctx context.Context) error
}

type emailVerificationRepository struct {
	db DB
}

func NewEmailVerificationRepository(db DB) EmailVerificationRepository {
	return &emailVerificationRepository{db: db}
}

func (r *emailVerificationRepository) CreateCode(
	ctx context.Context,
	tenantID uuid.UUID,
	email, code string,
	expiresAt time.Time,
) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO email_verification_codes
            (id, tenant_id, email, verification_code, expires_at, created_at, attempts)
        VALUES ($1, $2, $3, $4, $5, NOW(), 0)
    `, uuid.New(), tenantID, email, code, expiresAt)
	return err
}

func (r *emailVerificationRepository) GetLatest(ctx context.Context, tenantID uuid.UUID) (*models.EmailVerificationCode, error) {
	var rec models.EmailVerificationCode
	err := r.db.QueryRow(ctx, `
        SELECT id, tenant_id, email, verification_code, expires_at, attempts,
               verified, verified_at, created_at
        FROM email_verification_codes
        WHERE tenant_id = $1
        ORDER BY created_at DESC
        LIMIT 1
    `, tenantID).Scan(
		&rec.ID,
		&rec.TenantID,
		&rec.Email,
		&rec.VerificationCode,
		&rec.ExpiresAt,
		&rec.Attempts,
		&rec.Verified,
		&rec.VerifiedAt,
		&rec.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *emailVerificationRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE email_verification_codes SET attempts = attempts + 1 WHERE id = $1`, id)
	return err
}

func (r *emailVerificationRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
        UPDATE email_verification_codes
        SET verified = TRUE, verified_at = NOW()
        WHERE id = $1
    `, id)
	return err
}

func (r *emailVerificationRepository) CleanupExpired(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
        DELETE FROM email_verification_codes
        WHERE expires_at < NOW() OR verified = TRUE
    `)
	return err
}
