package utils

import (
	"net/http"
	"time"
)

// SessionCookieNames pairs the access and refresh cookie for one role.
type SessionCookieNames struct {
	Access  string
	Refresh string
}

// SetSessionCookies writes the httpOnly access/refresh pair plus the
// security headers every token-bearing response carries. The refresh cookie
// is scoped to refreshPath so only the refresh endpoint ever receives it.
func SetSessionCookies(
	w http.ResponseWriter,
	names SessionCookieNames,
	accessToken, refreshToken string,
	accessTTL, refreshTTL time.Duration,
	refreshPath string,
	secure bool,
) {
	if accessToken == "" || refreshToken == "" {
		return
	}
	Logger.Debugf("[cookies] setting %s/%s refreshPath=%s secure=%t", names.Access, names.Refresh, refreshPath, secure)

	http.SetCookie(w, &http.Cookie{
		Name:     names.Access,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(accessTTL.Seconds()),
		Expires:  time.Now().Add(accessTTL).UTC(),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     names.Refresh,
		Value:    refreshToken,
		Path:     refreshPath,
		MaxAge:   int(refreshTTL.Seconds()),
		Expires:  time.Now().Add(refreshTTL).UTC(),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})

	addSecurityHeaders(w)
}

// ClearSessionCookies expires both cookies (sign-out).
func ClearSessionCookies(w http.ResponseWriter, names SessionCookieNames, refreshPath string, secure bool) {
	expired := time.Unix(0, 0).UTC()

	http.SetCookie(w, &http.Cookie{
		Name:     names.Access,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  expired,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     names.Refresh,
		Value:    "",
		Path:     refreshPath,
		MaxAge:   -1,
		Expires:  expired,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})

	addSecurityHeaders(w)
}

func addSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}
