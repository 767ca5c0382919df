package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

type LoginAttempts struct {
	AccountID    uuid.UUID
	AttemptCount int
	LockedUntil  *time.Time
	UpdatedAt    time.Time
	CreatedAt    time.Time
}

// LoginAttemptsRepository tracks failed sign-ins for tenants and admins. Both
// kinds key on their UUID, which never collides across tables.
type LoginAttemptsRepository interface {
	GetOrCreate(ctx context.Context, accountID uuid.UUID) (*LoginAttempts, error)
	Increment(ctx context.Context, accountID uuid.UUID, lockDuration, window time.Duration, maxAttempts int) error
	Reset(ctx context.Context, accountID uuid.UUID) error
	IsLocked(ctx context.Context, accountID uuid.UUID) (bool, time.Time, error)
}

type loginAttemptsRepository struct {
	db DB
}

func NewLoginAttemptsRepository(db DB) LoginAttemptsRepository {
	return &loginAttemptsRepository{db: db}
}

func (r *loginAttemptsRepository) GetOrCreate(ctx context.Context, accountID uuid.UUID) (*LoginAttempts, error) {
	la := &LoginAttempts{}
	err := r.db.QueryRow(ctx, `
        INSERT INTO login_attempts (account_id, attempt_count, locked_until, updated_at, created_at)
        VALUES ($1, 0, NULL, NOW(), NOW())
        ON CONFLICT (account_id) DO UPDATE SET account_id = EXCLUDED.account_id
        RETURNING account_id, attempt_count, locked_until, updated_at, created_at
    `, accountID).Scan(
		&la.AccountID,
		&la.AttemptCount,
		&la.LockedUntil,
		&la.UpdatedAt,
		&la.CreatedAt,
	)
	return la, err
}

// Increment counts a failure. A failure outside the window restarts the count
// at one; reaching maxAttempts inside the window locks for lockDuration.
func (r *loginAttemptsRepository) Increment(
	ctx context.Context,
	accountID uuid.UUID,
	lockDuration, window time.Duration,
	maxAttempts int,
) error {
	query := `
WITH current AS (
    SELECT account_id,
           attempt_count,
           locked_until,
           updated_at
    FROM login_attempts
    WHERE account_id = $1
    FOR UPDATE
)
UPDATE login_attempts
SET attempt_count = CASE
    WHEN (current.locked_until IS NOT NULL AND current.locked_until > NOW())
         THEN current.attempt_count
    WHEN (NOW() - current.updated_at) > $3
         THEN 1
    ELSE current.attempt_count + 1
END,
locked_until = CASE
    WHEN (current.locked_until IS NOT NULL AND current.locked_until > NOW())
         THEN current.locked_until
    WHEN ((NOW() - current.updated_at) <= $3
          AND (current.attempt_count + 1) >= $4)
         THEN NOW() + $2
    ELSE NULL
END,
updated_at = NOW()
FROM current
WHERE login_attempts.account_id = current.account_id
    `
	_, err := r.db.Exec(ctx, query, accountID, lockDuration, window, maxAttempts)
	return err
}

func (r *loginAttemptsRepository) Reset(ctx context.Context, accountID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
        UPDATE login_attempts
        SET attempt_count = 0, locked_until = NULL, updated_at = NOW()
        WHERE account_id = $1
    `, accountID)
	return err
}

func (r *loginAttemptsRepository) IsLocked(ctx context.Context, accountID uuid.UUID) (bool, time.Time, error) {
	var lockedUntil *time.Time
	err := r.db.QueryRow(ctx, `SELECT locked_until FROM login_attempts WHERE account_id = $1`, accountID).Scan(&lockedUntil)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, time.Time{}, nil
		}
		return false, time.Time{}, err
	}
	if lockedUntil != nil && lockedUntil.After(time.Now()) {
		return true, *lockedUntil, nil
	}
	return false, time.Time{}, nil
}
