package middleware

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
)

// SessionClaims are the claims every access token carries.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ValidateToken checks signature, algorithm, issuer and expiry. An expired
// token yields an error wrapping jwt.ErrTokenExpired.
func ValidateToken(tokenString string, secret []byte) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(constants.TokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("missing subject")
	}
	return claims, nil
}
