package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type contextKey string

const (
	ContextKeyUserID contextKey = "userID"
	ContextKeyRole   contextKey = "role"
)

// TenantAuthMiddleware guards tenant routes with the tenantSession cookie.
func TenantAuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return sessionAuth(secret, constants.TenantSessionCookieName, constants.AdminSessionCookieName, constants.RoleTenant)
}

// AdminAuthMiddleware guards admin routes with the adminSession cookie.
func AdminAuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return sessionAuth(secret, constants.AdminSessionCookieName, constants.TenantSessionCookieName, constants.RoleAdmin)
}

// sessionAuth answers 401 when no usable session is presented and 403 when
// the caller is signed in under the other role.
func sessionAuth(secret []byte, cookieName, otherCookieName, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractAccessToken(r, cookieName)
			if tokenStr == "" {
				if hasValidSession(r, otherCookieName, secret) {
					utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeForbidden, "Insufficient permissions", nil)
					return
				}
				utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing session token", nil)
				return
			}

			claims, err := ValidateToken(tokenStr, secret)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil, err)
					return
				}
				utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil, err)
				return
			}

			if claims.Role != role {
				utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractAccessToken prefers the role's cookie and falls back to a bearer header.
func extractAccessToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func hasValidSession(r *http.Request, cookieName string, secret []byte) bool {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return false
	}
	_, err = ValidateToken(c.Value, secret)
	return err == nil
}

// UserIDFromContext returns the authenticated subject set by the session middleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	s, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok || s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
