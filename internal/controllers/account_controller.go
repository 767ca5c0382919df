package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

// AccountController serves email verification and password reset.
type AccountController struct {
	verification *services.EmailVerificationService
	resets       *services.PasswordResetService
	validate     *validator.Validate
}

func NewAccountController(verification *services.EmailVerificationService, resets *services.PasswordResetService) *AccountController {
	return &AccountController{verification: verification, resets: resets, validate: NewValidator()}
}

// POST /api/v1/email-verification/request
func (c *AccountController) RequestVerificationHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if err := c.verification.RequestCode(r.Context(), tenantID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Verification code sent"})
}

// POST /api/v1/email-verification/verify
func (c *AccountController) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.VerifyEmailRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}
	if err := c.verification.Verify(r.Context(), tenantID, req.Code); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Email verified"})
}

// POST /api/v1/password-reset/request
func (c *AccountController) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.PasswordResetRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}
	c.resets.RequestCode(r.Context(), req)
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{
		Message: "If the account exists, a reset code has been sent",
	})
}

// POST /api/v1/password-reset/verify
func (c *AccountController) VerifyPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.PasswordResetVerifyRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}
	valid, err := c.resets.VerifyCode(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.CodeValidityResponse{Valid: valid})
}

// POST /api/v1/password-reset/reset
func (c *AccountController) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.PasswordResetConfirmRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}
	if err := c.resets.ResetPassword(r.Context(), req); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Password updated"})
}
