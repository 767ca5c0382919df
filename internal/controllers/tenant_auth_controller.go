package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/config"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

// The refresh cookie only travels to the role's auth endpoints.
const tenantAuthCookiePath = "/api/v1/auth/tenant"

var tenantCookieNames = utils.SessionCookieNames{
	Access:  constants.TenantSessionCookieName,
	Refresh: constants.TenantRefreshCookieName,
}

type TenantAuthController struct {
	cfg      *config.Config
	service  *services.TenantAuthService
	validate *validator.Validate
}

func NewTenantAuthController(cfg *config.Config, service *services.TenantAuthService) *TenantAuthController {
	return &TenantAuthController{cfg: cfg, service: service, validate: NewValidator()}
}

// POST /api/v1/auth/tenant/signup
func (c *TenantAuthController) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.TenantSignupRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	tenant, err := c.service.Signup(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.TenantAuthResponse{Tenant: tenant})
}

// POST /api/v1/auth/tenant/signin
func (c *TenantAuthController) SigninHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.SignInRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	tenant, session, err := c.service.Signin(r.Context(), req, clientIP(r))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.SetSessionCookies(w, tenantCookieNames, session.AccessToken, session.RefreshToken,
		c.cfg.AccessTokenTTL, c.cfg.RefreshTokenTTL, tenantAuthCookiePath, c.cfg.LDFlag_SecureCookies)
	utils.RespondWithJSON(w, http.StatusOK, dtos.TenantAuthResponse{Tenant: tenant})
}

// POST /api/v1/auth/tenant/refresh
func (c *TenantAuthController) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(constants.TenantRefreshCookieName)
	if err != nil || cookie.Value == "" {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing refresh cookie", nil, err)
		return
	}

	session, err := c.service.Refresh(r.Context(), cookie.Value, clientIP(r))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.SetSessionCookies(w, tenantCookieNames, session.AccessToken, session.RefreshToken,
		c.cfg.AccessTokenTTL, c.cfg.RefreshTokenTTL, tenantAuthCookiePath, c.cfg.LDFlag_SecureCookies)
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Session refreshed"})
}

// POST /api/v1/auth/tenant/signout
func (c *TenantAuthController) SignoutHandler(w http.ResponseWriter, r *http.Request) {
	var refresh string
	if ck, err := r.Cookie(constants.TenantRefreshCookieName); err == nil {
		refresh = ck.Value
	}

	if err := c.service.Signout(r.Context(), refresh); err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.ClearSessionCookies(w, tenantCookieNames, tenantAuthCookiePath, c.cfg.LDFlag_SecureCookies)
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Signed out successfully"})
}
