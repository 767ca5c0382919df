package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type VisitorController struct {
	service  *services.VisitorService
	validate *validator.Validate
}

func NewVisitorController(service *services.VisitorService) *VisitorController {
	return &VisitorController{service: service, validate: NewValidator()}
}

// POST /api/v1/visitors/sign-in
func (c *VisitorController) SignInHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.VisitorSignInRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}
	visitor, err := c.service.SignIn(r.Context(), tenantID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, visitor)
}

// POST /api/v1/visitors/{id}/sign-out
func (c *VisitorController) SignOutHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	visitorID, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.VisitorSignOutRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}
	visitor, err := c.service.SignOut(r.Context(), tenantID, visitorID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, visitor)
}

// GET /api/v1/visitors/me
func (c *VisitorController) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	list, err := c.service.ListForTenant(r.Context(), tenantID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/visitors?active=
func (c *VisitorController) ListHandler(w http.ResponseWriter, r *http.Request) {
	var active *bool
	if raw := r.URL.Query().Get("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Query parameter 'active' must be true or false", nil, err)
			return
		}
		active = &v
	}
	list, err := c.service.List(r.Context(), active)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}
