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

const adminAuthCookiePath = "/api/v1/auth/admin"

var adminCookieNames = utils.SessionCookieNames{
	Access:  constants.AdminSessionCookieName,
	Refresh: constants.AdminRefreshCookieName,
}

type AdminAuthController struct {
	cfg      *config.Config
	service  *services.AdminAuthService
	validate *validator.Validate
}

func NewAdminAuthController(cfg *config.Config, service *services.AdminAuthService) *AdminAuthController {
	return &AdminAuthController{cfg: cfg, service: service, validate: NewValidator()}
}

// POST /api/v1/auth/admin/signup
func (c *AdminAuthController) SignupHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "AdminSignupHandler")

	adminID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.AdminSignupRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	admin, err := c.service.Signup(r.Context(), adminID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("newAdminID", admin.ID).Info("Admin created")
	utils.RespondWithJSON(w, http.StatusCreated, dtos.AdminAuthResponse{Admin: admin})
}

// POST /api/v1/auth/admin/signin
func (c *AdminAuthController) SigninHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.SignInRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	admin, session, err := c.service.Signin(r.Context(), req, clientIP(r))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.SetSessionCookies(w, adminCookieNames, session.AccessToken, session.RefreshToken,
		c.cfg.AccessTokenTTL, c.cfg.RefreshTokenTTL, adminAuthCookiePath, c.cfg.LDFlag_SecureCookies)
	utils.RespondWithJSON(w, http.StatusOK, dtos.AdminAuthResponse{Admin: admin})
}

// POST /api/v1/auth/admin/refresh
func (c *AdminAuthController) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(constants.AdminRefreshCookieName)
	if err != nil || cookie.Value == "" {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing refresh cookie", nil, err)
		return
	}

	session, err := c.service.Refresh(r.Context(), cookie.Value, clientIP(r))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.SetSessionCookies(w, adminCookieNames, session.AccessToken, session.RefreshToken,
		c.cfg.AccessTokenTTL, c.cfg.RefreshTokenTTL, adminAuthCookiePath, c.cfg.LDFlag_SecureCookies)
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Session refreshed"})
}

// POST /api/v1/auth/admin/signout
func (c *AdminAuthController) SignoutHandler(w http.ResponseWriter, r *http.Request) {
	var refresh string
	if ck, err := r.Cookie(constants.AdminRefreshCookieName); err == nil {
		refresh = ck.Value
	}

	if err := c.service.Signout(r.Context(), refresh); err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.ClearSessionCookies(w, adminCookieNames, adminAuthCookiePath, c.cfg.LDFlag_SecureCookies)
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Signed out successfully"})
}
