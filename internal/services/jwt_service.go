package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/middleware"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

const refreshTokenLength = 64

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// JWTService issues access tokens for one role and manages that role's
// refresh tokens.
type JWTService interface {
	GenerateAccessToken(subjectID uuid.UUID, ttl time.Duration) (string, error)
	GenerateRefreshToken(ctx context.Context, subjectID uuid.UUID, ipAddress string, ttl time.Duration) (*models.RefreshToken, error)
	// RefreshToken rotates the refresh token and returns a new access/refresh pair.
	RefreshToken(ctx context.Context, refreshTokenString, ipAddress string, accessTTL, refreshTTL time.Duration) (string, string, error)
	Logout(ctx context.Context, refreshTokenString string) error
}

type jwtService struct {
	secret    []byte
	role      string
	tokenRepo repositories.TokenRepository
}

func NewJWTService(secret []byte, role string, tokenRepo repositories.TokenRepository) JWTService {
	return &jwtService{secret: secret, role: role, tokenRepo: tokenRepo}
}

func (j *jwtService) GenerateAccessToken(subjectID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := middleware.SessionClaims{
		Role: j.role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.TokenIssuer,
			Subject:   subjectID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

func (j *jwtService) GenerateRefreshToken(
	ctx context.Context,
	subjectID uuid.UUID,
	ipAddress string,
	ttl time.Duration,
) (*models.RefreshToken, error) {
	rt := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    subjectID,
		Token:     utils.RandomToken(refreshTokenLength),
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
		IPAddress: ipAddress,
	}
	if err := j.tokenRepo.CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

func (j *jwtService) RefreshToken(
	ctx context.Context,
	refreshTokenString, ipAddress string,
	accessTTL, refreshTTL time.Duration,
) (string, string, error) {
	old, err := j.tokenRepo.GetRefreshToken(ctx, refreshTokenString)
	if err != nil {
		return "", "", err
	}
	if old == nil {
		return "", "", ErrInvalidRefreshToken
	}
	if old.IsExpired() {
		_ = j.tokenRepo.RemoveRefreshToken(ctx, old.ID)
		return "", "", ErrRefreshTokenExpired
	}

	if err := j.tokenRepo.RemoveRefreshToken(ctx, old.ID); err != nil {
		return "", "", err
	}

	access, err := j.GenerateAccessToken(old.UserID, accessTTL)
	if err != nil {
		return "", "", err
	}
	next, err := j.GenerateRefreshToken(ctx, old.UserID, ipAddress, refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, next.Token, nil
}

func (j *jwtService) Logout(ctx context.Context, refreshTokenString string) error {
	if refreshTokenString == "" {
		return nil
	}
	old, err := j.tokenRepo.GetRefreshToken(ctx, refreshTokenString)
	if err != nil {
		return err
	}
	if old == nil {
		return nil
	}
	return j.tokenRepo.RemoveRefreshToken(ctx, old.ID)
}
