package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
)

type PasswordResetRepository interface {
	// Create stores a new code and invalidates any earlier unused ones for the account.
	Create(ctx context.Context, rec *models.PasswordResetCode) error
	GetLatest(ctx context.Context, accountType models.AccountType, email string) (*models.PasswordResetCode, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	// MarkUsed consumes the code. It returns pgx.ErrNoRows if another request got there first.
	MarkUsed(ctx context.Context, id uuid.UUID) error
	CleanupExpired(ctx context.Context) error
}

type passwordResetRepository struct {
	db DB
}

func NewPasswordResetRepository(db DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, rec *models.PasswordResetCode) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
            UPDATE password_reset_codes SET used = TRUE
            WHERE account_type = $1 AND account_id = $2 AND used = FALSE
        `, rec.AccountType, rec.AccountID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
            INSERT INTO password_reset_codes
                (id, account_type, account_id, email, code_hash, expires_at, attempts, used, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, 0, FALSE, NOW())
            RETURNING created_at
        `,
			rec.ID, rec.AccountType, rec.AccountID, rec.Email, rec.CodeHash, rec.ExpiresAt,
		).Scan(&rec.CreatedAt)
	})
}

func (r *passwordResetRepository) GetLatest(
	ctx context.Context,
	accountType models.AccountType,
	email string,
) (*models.PasswordResetCode, error) {
	var rec models.PasswordResetCode
	err := r.db.QueryRow(ctx, `
        SELECT id, account_type, account_id, email, code_hash, expires_at, attempts, used, created_at
        FROM password_reset_codes
        WHERE account_type = $1 AND email = $2
        ORDER BY created_at DESC
        LIMIT 1
    `, accountType, email).Scan(
		&rec.ID,
		&rec.AccountType,
		&rec.AccountID,
		&rec.Email,
		&rec.CodeHash,
		&rec.ExpiresAt,
		&rec.Attempts,
		&rec.Used,
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

func (r *passwordResetRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE password_reset_codes SET attempts = attempts + 1 WHERE id = $1`, id)
	return err
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE password_reset_codes SET used = TRUE WHERE id = $1 AND used = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *passwordResetRepository) CleanupExpired(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM password_reset_codes WHERE expires_at < NOW() OR used = TRUE`)
	return err
}
