package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type NotificationController struct {
	service  *services.NotificationService
	validate *validator.Validate
}

func NewNotificationController(service *services.NotificationService) *NotificationController {
	return &NotificationController{service: service, validate: NewValidator()}
}

// GET /api/v1/notifications
func (c *NotificationController) ListHandler(w http.ResponseWriter, r *http.Request) {
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

// PATCH /api/v1/notifications/{id}/read
func (c *NotificationController) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	n, err := c.service.MarkRead(r.Context(), tenantID, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, n)
}

// POST /api/v1/notifications/read-all
func (c *NotificationController) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	count, err := c.service.MarkAllRead(r.Context(), tenantID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.CountResponse{Count: count})
}

// POST /api/v1/notifications (admin broadcast or direct send)
func (c *NotificationController) SendHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "SendNotificationHandler")

	var req dtos.SendNotificationRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}
	count, err := c.service.Send(r.Context(), req.TenantID, req.Message)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("recipients", count).Info("Notification sent")
	utils.RespondWithJSON(w, http.StatusCreated, dtos.CountResponse{Count: count})
}
