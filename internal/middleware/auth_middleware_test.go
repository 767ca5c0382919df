package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

var testSecret = []byte("middleware-test-secret")

func TestMain(m *testing.M) {
	utils.Logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func signToken(t *testing.T, secret []byte, role, subject string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := SessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.TokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return s
}

func echoSubject() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(id.String()))
	})
}

func TestTenantAuthMiddleware(t *testing.T) {
	handler := TenantAuthMiddleware(testSecret)(echoSubject())
	tenantID := uuid.New()

	cases := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing token",
			setup:      func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantCode:   utils.ErrCodeUnauthorized,
		},
		{
			name: "valid cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: constants.TenantSessionCookieName, Value: signToken(t, testSecret, constants.RoleTenant, tenantID.String(), time.Minute)})
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "valid bearer header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, constants.RoleTenant, tenantID.String(), time.Minute))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "expired token",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: constants.TenantSessionCookieName, Value: signToken(t, testSecret, constants.RoleTenant, tenantID.String(), -time.Minute)})
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   utils.ErrCodeTokenExpired,
		},
		{
			name: "wrong secret",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: constants.TenantSessionCookieName, Value: signToken(t, []byte("other"), constants.RoleTenant, tenantID.String(), time.Minute)})
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   utils.ErrCodeUnauthorized,
		},
		{
			name: "admin token on tenant route",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, constants.RoleAdmin, uuid.NewString(), time.Minute))
			},
			wantStatus: http.StatusForbidden,
			wantCode:   utils.ErrCodeForbidden,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/me", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, tenantID.String(), rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), tc.wantCode)
			}
		})
	}
}

func TestAdminAuthMiddleware_TenantCookieIsForbidden(t *testing.T) {
	handler := AdminAuthMiddleware(testSecret)(echoSubject())

	serve := func(cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/tenants", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	tenantCookie := &http.Cookie{Name: constants.TenantSessionCookieName, Value: signToken(t, testSecret, constants.RoleTenant, uuid.NewString(), time.Minute)}
	rec := serve(tenantCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), utils.ErrCodeForbidden)

	// A forged tenant cookie is just a missing session.
	forged := &http.Cookie{Name: constants.TenantSessionCookieName, Value: signToken(t, []byte("other"), constants.RoleTenant, uuid.NewString(), time.Minute)}
	rec = serve(forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), utils.ErrCodeUnauthorized)

	adminID := uuid.New()
	adminCookie := &http.Cookie{Name: constants.AdminSessionCookieName, Value: signToken(t, testSecret, constants.RoleAdmin, adminID.String(), time.Minute)}
	rec = serve(tenantCookie, adminCookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, adminID.String(), rec.Body.String())
}

func TestTenantAuthMiddleware_AdminCookieIsForbidden(t *testing.T) {
	handler := TenantAuthMiddleware(testSecret)(echoSubject())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/me", nil)
	req.AddCookie(&http.Cookie{Name: constants.AdminSessionCookieName, Value: signToken(t, testSecret, constants.RoleAdmin, uuid.NewString(), time.Minute)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), utils.ErrCodeForbidden)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := SessionClaims{
		Role: constants.RoleTenant,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.TokenIssuer,
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(tok, testSecret)
	assert.Error(t, err)
}
