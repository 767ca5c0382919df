package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type AdvertisementController struct {
	service  *services.AdvertisementService
	validate *validator.Validate
}

func NewAdvertisementController(service *services.AdvertisementService) *AdvertisementController {
	return &AdvertisementController{service: service, validate: NewValidator()}
}

// POST /api/v1/advertisements (multipart)
func (c *AdvertisementController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if err := parseMultipart(w, r); err != nil {
		utils.HandleAppError(w, err)
		return
	}

	req := dtos.CreateAdvertisementRequest{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Contact:     strings.TrimSpace(r.FormValue("contact")),
	}
	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Field 'price' must be an integer amount", nil, err)
			return
		}
		req.Price = &price
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidation(w, err)
		return
	}

	image, closeFn, err := formImage(r, "image", false)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	defer closeFn()

	ad, err := c.service.Create(r.Context(), tenantID, req, image)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, ad)
}

// GET /api/v1/advertisements
func (c *AdvertisementController) ListApprovedHandler(w http.ResponseWriter, r *http.Request) {
	list, err := c.service.ListApproved(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/advertisements/me
func (c *AdvertisementController) ListMineHandler(w http.ResponseWriter, r *http.Request) {
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

// GET /api/v1/advertisements/pending
func (c *AdvertisementController) ListPendingHandler(w http.ResponseWriter, r *http.Request) {
	list, err := c.service.ListPending(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// POST /api/v1/advertisements/{id}/approve
func (c *AdvertisementController) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	c.review(w, r, c.service.Approve)
}

// POST /api/v1/advertisements/{id}/reject
func (c *AdvertisementController) RejectHandler(w http.ResponseWriter, r *http.Request) {
	c.review(w, r, c.service.Reject)
}

func (c *AdvertisementController) review(
	w http.ResponseWriter,
	r *http.Request,
	decide func(ctx context.Context, adminID, id uuid.UUID) (*models.Advertisement, error),
) {
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
	ad, err := decide(r.Context(), adminID, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ad)
}

// DELETE /api/v1/advertisements/{id}
func (c *AdvertisementController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
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
	if err := c.service.Delete(r.Context(), tenantID, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
