package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type TenantController struct {
	service  *services.TenantService
	validate *validator.Validate
}

func NewTenantController(service *services.TenantService) *TenantController {
	return &TenantController{service: service, validate: NewValidator()}
}

// GET /api/v1/tenants/me
func (c *TenantController) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	tenant, err := c.service.Get(r.Context(), tenantID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tenant)
}

// PATCH /api/v1/tenants/me
func (c *TenantController) UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.UpdateTenantRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}
	tenant, err := c.service.UpdateProfile(r.Context(), tenantID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tenant)
}

// GET /api/v1/tenants
func (c *TenantController) ListHandler(w http.ResponseWriter, r *http.Request) {
	list, err := c.service.List(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/tenants/{id}
func (c *TenantController) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	tenant, err := c.service.Get(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tenant)
}

// DELETE /api/v1/tenants/{id}
func (c *TenantController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "DeleteTenantHandler")

	adminID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if err := c.service.Delete(r.Context(), adminID, id); err != nil {
		logger.WithError(err).Warn("Tenant delete refused")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("tenantID", id).Info("Tenant deleted")
	w.WriteHeader(http.StatusNoContent)
}
