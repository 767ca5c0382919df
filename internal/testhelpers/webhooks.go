package testhelpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

// SignStripePayload constructs the "Stripe-Signature" header value.
func SignStripePayload(secret string, payload []byte) string {
	timestamp := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(fmt.Sprintf("%d.", timestamp)))
	_, _ = mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

// MockStripeWebhookPayload creates a JSON byte slice for a Stripe webhook event.
func MockStripeWebhookPayload(t *testing.T, eventType string, data map[string]any) []byte {
	t.Helper()
	return MockStripeWebhookPayloadWithID(t, "evt_test_"+utils.RandomToken(10), eventType, data)
}

// MockStripeWebhookPayloadWithID is MockStripeWebhookPayload with a fixed
// event id, for replay tests.
func MockStripeWebhookPayloadWithID(t *testing.T, eventID, eventType string, data map[string]any) []byte {
	t.Helper()

	payload := map[string]any{
		"id":          eventID,
		"object":      "event",
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"type":        eventType,
		"data": map[string]any{
			"object": data,
		},
	}

	jsonBytes, err := json.Marshal(payload)
	require.NoError(t, err, "Failed to marshal mock Stripe webhook payload")
	return jsonBytes
}

// CheckoutSessionObject builds the data.object of a checkout.session event
// carrying the metadata the webhook expects.
func CheckoutSessionObject(paymentID, tenantID string, roomNumber int, paymentStatus string) map[string]any {
	return map[string]any{
		"id":             "cs_test_" + utils.RandomToken(12),
		"object":         "checkout.session",
		"payment_status": paymentStatus,
		"metadata": map[string]string{
			"paymentId":  paymentID,
			"tenantId":   tenantID,
			"roomNumber": fmt.Sprint(roomNumber),
		},
	}
}
