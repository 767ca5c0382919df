package controllers

import (
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

const maxWebhookBody = 65536

type WebhookController struct {
	service       *services.WebhookService
	webhookSecret string
}

func NewWebhookController(service *services.WebhookService, webhookSecret string) *WebhookController {
	return &WebhookController{service: service, webhookSecret: webhookSecret}
}

// POST /api/v1/webhook
func (c *WebhookController) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	sigHeader := r.Header.Get("Stripe-Signature")
	if sigHeader == "" {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Missing Stripe-Signature header", nil)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Failed to read webhook body", nil, err)
		return
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Webhook signature verification failed", nil, err)
		return
	}

	if err := c.service.HandleStripeEvent(r.Context(), event); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}
