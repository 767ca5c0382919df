package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

// BookingController covers bookings, checkout and payment lookups.
type BookingController struct {
	bookings *services.BookingService
	checkout *services.CheckoutService
	payments *services.PaymentService
	validate *validator.Validate
}

func NewBookingController(
	bookings *services.BookingService,
	checkout *services.CheckoutService,
	payments *services.PaymentService,
) *BookingController {
	return &BookingController{bookings: bookings, checkout: checkout, payments: payments, validate: NewValidator()}
}

// POST /api/v1/bookings
func (c *BookingController) CreateBookingHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreateBookingRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	booking, err := c.bookings.Create(r.Context(), tenantID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, booking)
}

// GET /api/v1/bookings/me
func (c *BookingController) ListMyBookingsHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	list, err := c.bookings.ListForTenant(r.Context(), tenantID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/bookings
func (c *BookingController) ListBookingsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := c.bookings.ListAll(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// POST /api/v1/checkout
func (c *BookingController) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CheckoutRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	resp, err := c.checkout.CreateCheckout(r.Context(), tenantID, req.BookingID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/payments/me
func (c *BookingController) ListMyPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	list, err := c.payments.ListForTenant(r.Context(), tenantID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/payments?status=
func (c *BookingController) ListPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	var status *models.PaymentStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := models.PaymentStatus(s)
		status = &st
	}
	list, err := c.payments.List(r.Context(), status)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/payments/{id}
func (c *BookingController) GetMyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	c.getPayment(w, r, &tenantID)
}

// GET /api/v1/admin/payments/{id}
func (c *BookingController) GetPaymentHandler(w http.ResponseWriter, r *http.Request) {
	c.getPayment(w, r, nil)
}

func (c *BookingController) getPayment(w http.ResponseWriter, r *http.Request, ownerID *uuid.UUID) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	p, err := c.payments.Get(r.Context(), id, ownerID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}
