package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

// TokenRepository stores hashed refresh tokens for one account kind.
type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, rawToken string) (*models.RefreshToken, error)
	RemoveRefreshToken(ctx context.Context, id uuid.UUID) error
	RemoveAllRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error
	CleanupExpiredRefreshTokens(ctx context.Context) error
}

type tokenRepository struct {
	db       DB
	table    string
	ownerCol string
}

func NewTenantTokenRepository(db DB) TokenRepository {
	return &tokenRepository{db: db, table: "tenant_refresh_tokens", ownerCol: "tenant_id"}
}

func NewAdminTokenRepository(db DB) TokenRepository {
	return &tokenRepository{db: db, table: "admin_refresh_tokens", ownerCol: "admin_id"}
}

func (r *tokenRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	query := `
        INSERT INTO ` + r.table + ` (id, ` + r.ownerCol + `, refresh_token, expires_at, created_at, ip_address)
        VALUES ($1, $2, $3, $4, NOW(), $5)
    `
	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.UserID,
		utils.HashToken(token.Token),
		token.ExpiresAt,
		token.IPAddress,
	)
	return err
}

func (r *tokenRepository) GetRefreshToken(ctx context.Context, rawToken string) (*models.RefreshToken, error) {
	query := `
        SELECT id, ` + r.ownerCol + `, refresh_token, expires_at, created_at, ip_address
        FROM ` + r.table + `
        WHERE refresh_token = $1
    `
	var rt models.RefreshToken
	err := r.db.QueryRow(ctx, query, utils.HashToken(rawToken)).Scan(
		&rt.ID,
		&rt.UserID,
		&rt.Token,
		&rt.ExpiresAt,
		&rt.CreatedAt,
		&rt.IPAddress,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rt, nil
}

func (r *tokenRepository) RemoveRefreshToken(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id)
	return err
}

func (r *tokenRepository) RemoveAllRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM `+r.table+` WHERE `+r.ownerCol+` = $1`, userID)
	return err
}

func (r *tokenRepository) CleanupExpiredRefreshTokens(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM `+r.table+` WHERE expires_at < NOW()`)
	return err
}
